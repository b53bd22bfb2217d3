package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var returnJSON bool

var returnCmd = &cobra.Command{
	Use:   "return",
	Short: "Restore the workspace that was live before the last travel",
	Long: `Remove the installed snapshot copy and move the displaced workspace back
into place. The snapshot itself is left as it was.`,
	Args: cobra.NoArgs,
	RunE: runReturn,
}

func init() {
	rootCmd.AddCommand(returnCmd)

	returnCmd.Flags().BoolVar(&returnJSON, "json", false, "Output as JSON")
}

func runReturn(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	if err := ws.Return(); err != nil {
		return err
	}

	if returnJSON {
		return printJSON(map[string]interface{}{"ok": true})
	}

	fmt.Fprintln(out, "✓ Returned to the present")
	return nil
}
