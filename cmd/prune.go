package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/snapshot"
)

var (
	pruneDryRun bool
	pruneForce  bool
	pruneJSON   bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove snapshots nothing depends on",
	Long: `Remove every snapshot that is neither the session snapshot nor pinned by
an issue. The same collection runs after each session start.

Nothing is removed while the workspace is in the past.

Example:
  timewarp prune              # Show what would be pruned
  timewarp prune --force      # Actually prune snapshots`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", true, "Show what would be pruned without deleting")
	pruneCmd.Flags().BoolVar(&pruneForce, "force", false, "Actually delete snapshots (overrides dry-run)")
	pruneCmd.Flags().BoolVar(&pruneJSON, "json", false, "Output the plan as JSON")
}

func runPrune(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	apply := pruneForce || !pruneDryRun
	plan, err := ws.Prune(apply)
	if err != nil {
		return err
	}

	if pruneJSON {
		return printJSON(plan)
	}

	if plan.Skipped {
		fmt.Fprintf(out, "Nothing pruned: %s\n", plan.Reason)
		return nil
	}

	if len(plan.Keep) > 0 {
		fmt.Fprintf(out, "Snapshots to preserve (%d):\n\n", len(plan.Keep))
		for _, k := range plan.Keep {
			fmt.Fprintf(out, "  %s\n", k.SnapshotID)
			fmt.Fprintf(out, "    Age:    %s\n", snapshotAge(k.SnapshotID))
			fmt.Fprintf(out, "    Reason: %s\n", keepReason(k))
			fmt.Fprintln(out)
		}
	}

	if len(plan.Delete) == 0 {
		fmt.Fprintln(out, "No snapshots to prune")
		return nil
	}

	verb := "to prune"
	if apply {
		verb = "pruned"
	}
	fmt.Fprintf(out, "Snapshots %s (%d):\n\n", verb, len(plan.Delete))
	for _, id := range plan.Delete {
		fmt.Fprintf(out, "  %s\n", id)
		fmt.Fprintf(out, "    Age:    %s\n", snapshotAge(id))
		fmt.Fprintln(out)
	}

	if !apply {
		fmt.Fprintln(out, "This is a dry run. Use --force to actually prune snapshots.")
		return nil
	}

	for _, id := range plan.Failed {
		fmt.Fprintf(out, "  Failed to delete %s\n", id)
	}
	fmt.Fprintf(out, "✓ Pruned %d snapshot(s)\n", len(plan.Delete)-len(plan.Failed))
	return nil
}

func keepReason(k snapshot.Kept) string {
	if k.Reason == snapshot.ReasonKeep {
		return "session snapshot"
	}
	if len(k.Issues) == 0 {
		return k.Reason
	}
	return fmt.Sprintf("%s %s", k.Reason, strings.Join(k.Issues, ", "))
}

// snapshotAge reads the creation time embedded in an id of the form
// s_YYYYMMDD_HHMMSS_xxxxxx.
func snapshotAge(id string) string {
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return "unknown"
	}
	created, err := time.Parse("20060102150405", parts[1]+parts[2])
	if err != nil {
		return "unknown"
	}
	return formatDuration(time.Since(created))
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days == 0 {
		return "< 1 day"
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
