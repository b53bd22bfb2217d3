package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/models"
	"github.com/pders01/timewarp/internal/travel"
)

var recoverJSON bool

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Finish an interrupted travel or return",
	Long: `Inspect the write-ahead intent left by a travel or return that did not
complete, and repair the workspace:

  travel  - rolled back; the pre-travel workspace is moved back into place
  return  - rolled forward; the remaining backup entries are moved back

Nothing happens when no intent is pending.`,
	Args: cobra.NoArgs,
	RunE: runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)

	recoverCmd.Flags().BoolVar(&recoverJSON, "json", false, "Output as JSON")
}

func runRecover(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	rec, err := ws.Recover()
	if err != nil {
		return err
	}

	if recoverJSON {
		return printJSON(map[string]interface{}{"ok": true, "recovery": rec})
	}

	switch rec.Action {
	case travel.ActionNone:
		fmt.Fprintln(out, "Nothing to recover")
	case travel.ActionRolledBack:
		fmt.Fprintf(out, "✓ Rolled back interrupted travel to %s (phase %s)\n",
			models.Deref(rec.Intent.SnapshotID), rec.Intent.Phase)
	case travel.ActionRolledForward:
		fmt.Fprintf(out, "✓ Completed interrupted return (phase %s)\n", rec.Intent.Phase)
	}
	return nil
}
