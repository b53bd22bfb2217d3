package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/models"
)

var (
	listSince  string
	listPinned bool
	listJSON   bool
	listToon   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"snapshots"},
	Short:   "List stored snapshots",
	Long: `List stored snapshots, newest first, with optional filtering.

Each snapshot is flagged when it is the session snapshot, when it is the one
currently installed in the workspace, and when issues pin it.

Examples:
  timewarp list
  timewarp list --pinned
  timewarp list --since 2025-10-01
  timewarp list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listSince, "since", "", "Show snapshots since date (YYYY-MM-DD)")
	listCmd.Flags().BoolVar(&listPinned, "pinned", false, "Show only snapshots pinned by an issue")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output as Toon")
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	all, err := ws.Snapshots()
	if err != nil {
		return err
	}

	var since time.Time
	if listSince != "" {
		since, err = time.Parse("2006-01-02", listSince)
		if err != nil {
			return fmt.Errorf("invalid --since date format (use YYYY-MM-DD): %w", err)
		}
	}

	snapshots := make([]models.SnapshotInfo, 0, len(all))
	for _, s := range all {
		if listPinned && len(s.PinnedBy) == 0 {
			continue
		}
		if !since.IsZero() {
			created, err := time.Parse(models.TimestampLayout, s.CreatedAt)
			if err != nil || created.Before(since) {
				continue
			}
		}
		snapshots = append(snapshots, s)
	}

	if listJSON {
		return printJSON(snapshots)
	}
	if listToon {
		return printToon(snapshots)
	}

	if len(all) == 0 {
		fmt.Fprintln(out, "No snapshots found")
		return nil
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(out, "No snapshots match the filter criteria")
		return nil
	}

	fmt.Fprintf(out, "Found %d snapshot(s):\n\n", len(snapshots))
	for _, s := range snapshots {
		fmt.Fprintf(out, "  %s%s\n", s.SnapshotID, snapshotFlags(s))
		if s.Invalid {
			fmt.Fprintln(out, "    (metadata unreadable)")
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintf(out, "    Created: %s\n", s.CreatedAt)
		if s.SessionID != "" {
			fmt.Fprintf(out, "    Session: %s\n", s.SessionID)
		}
		if s.TaskHint != "" {
			hint := s.TaskHint
			if len(hint) > 60 {
				hint = hint[:60] + "..."
			}
			fmt.Fprintf(out, "    Hint:    %s\n", hint)
		}
		if len(s.PinnedBy) > 0 {
			fmt.Fprintf(out, "    Issues:  %s\n", strings.Join(s.PinnedBy, ", "))
		}
		fmt.Fprintln(out)
	}

	return nil
}

func snapshotFlags(s models.SnapshotInfo) string {
	var flags []string
	if s.Session {
		flags = append(flags, "session")
	}
	if s.Current {
		flags = append(flags, "current")
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ", ") + "]"
}
