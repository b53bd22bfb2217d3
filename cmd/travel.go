package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var travelJSON bool

var travelCmd = &cobra.Command{
	Use:   "travel <snapshot_id>",
	Short: "Swap the live workspace for a snapshot",
	Long: `Move the live workspace aside and install a copy of the snapshot in its
place. The displaced tree is kept untouched until you run 'timewarp return'.

Travel is refused while the workspace is already in the past, or while an
interrupted travel or return is waiting for 'timewarp recover'.

Example:
  timewarp travel s_20251114_093000_k3x9qa`,
	Args: cobra.ExactArgs(1),
	RunE: runTravel,
}

func init() {
	rootCmd.AddCommand(travelCmd)

	travelCmd.Flags().BoolVar(&travelJSON, "json", false, "Output as JSON")
}

func runTravel(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	snapshotID := args[0]
	if err := ws.Travel(snapshotID); err != nil {
		return err
	}

	if travelJSON {
		return printJSON(map[string]interface{}{"ok": true, "snapshot_id": snapshotID})
	}

	fmt.Fprintf(out, "✓ Traveled to snapshot: %s\n", snapshotID)
	fmt.Fprintln(out, "  Run 'timewarp return' to restore your workspace")
	return nil
}
