package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/timewarp"
)

var (
	startSessionID string
	startHint      string
	startExclude   []string
	startJSON      bool
)

var sessionStartCmd = &cobra.Command{
	Use:   "session-start",
	Short: "Snapshot the workspace for a new session",
	Long: `Copy the live workspace into a new snapshot and make it the session
snapshot. Issues filed during the session are pinned to it.

Snapshots that are neither the new session snapshot nor referenced by an
issue are garbage collected afterwards. An interrupted travel or return is
recovered first.

Examples:
  timewarp session-start
  timewarp session-start --session-id abc123 --hint "fix flaky login test"
  timewarp session-start --exclude "dist/" --exclude "*.tmp"`,
	Args: cobra.NoArgs,
	RunE: runSessionStart,
}

func init() {
	rootCmd.AddCommand(sessionStartCmd)

	sessionStartCmd.Flags().StringVar(&startSessionID, "session-id", "", "Host session id (default: $TIMEWARP_SESSION_ID)")
	sessionStartCmd.Flags().StringVar(&startHint, "hint", "", "Initial task hint stored with the snapshot")
	sessionStartCmd.Flags().StringSliceVar(&startExclude, "exclude", nil, "Exclude globs (default: snapshot.exclude_globs)")
	sessionStartCmd.Flags().BoolVar(&startJSON, "json", false, "Output as JSON")
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	sessionID := startSessionID
	if sessionID == "" {
		sessionID = os.Getenv("TIMEWARP_SESSION_ID")
	}

	var exclude []string
	if len(startExclude) > 0 {
		exclude = startExclude
	}

	id, err := ws.SessionStart(timewarp.SessionStartInput{
		SessionID:    sessionID,
		TaskHint:     startHint,
		ExcludeGlobs: exclude,
	})
	if err != nil {
		return err
	}

	if startJSON {
		return printJSON(map[string]interface{}{"ok": true, "snapshot_id": id})
	}

	fmt.Fprintf(out, "✓ Session snapshot created: %s\n", id)
	return nil
}
