package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/models"
)

var (
	statusJSON bool
	statusToon bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workspace state",
	Long: `Display the state record (mode, session snapshot, current snapshot and
backup), whether an interrupted operation is waiting for recovery, and who
holds the workspace lease.

Examples:
  timewarp status
  timewarp status --json
  timewarp status --toon`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().BoolVar(&statusToon, "toon", false, "Output as Toon")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	status, err := ws.Status()
	if err != nil {
		return err
	}

	if statusJSON {
		return printJSON(status)
	}
	if statusToon {
		return printToon(status)
	}

	st := status.State
	fmt.Fprintf(out, "Workspace: %s\n", st.WorkspaceRoot)
	fmt.Fprintf(out, "Mode:      %s\n", st.Mode)
	fmt.Fprintf(out, "Session:   %s\n", orNone(st.SessionID))
	fmt.Fprintf(out, "Session snapshot: %s\n", orNone(st.SessionSnapshotID))
	if st.Mode == models.ModePast {
		fmt.Fprintf(out, "Current snapshot: %s\n", orNone(st.CurrentSnapshotID))
		fmt.Fprintf(out, "Backup:    %s\n", orNone(st.BackupPath))
		fmt.Fprintf(out, "Since:     %s\n", orNone(st.EnteredAt))
	}

	if status.Intent != nil {
		fmt.Fprintf(out, "\nInterrupted %s (phase %s) started %s\n",
			status.Intent.Op, status.Intent.Phase, status.Intent.StartedAt)
		fmt.Fprintln(out, "  Run 'timewarp recover' to repair the workspace")
	}
	if status.LockHolder != "" {
		fmt.Fprintf(out, "\nLast lease token: %s\n", status.LockHolder)
	}

	return nil
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "(none)"
	}
	return *s
}
