package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/timewarp"
	"github.com/pders01/timewarp/internal/transcript"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "File and inspect issues pinned to session snapshots",
	Long: `Issues record a problem found during a session. Each one is pinned to the
session snapshot that was active when it was filed, so that snapshot is never
garbage collected, and carries a redacted chat transcript plus an
experiment notes document.`,
}

var (
	reportTaskContext     string
	reportSymptom         string
	reportSuccessCriteria string
	reportSuspectedCause  string
	reportChatSummary     string
	reportMessages        string
	reportSessionID       string
	reportJSON            bool
)

var issueReportCmd = &cobra.Command{
	Use:   "report",
	Short: "File an issue against the session snapshot",
	Long: `Create an issue pinned to the current session snapshot, export the chat
transcript from the host's messages payload, and write experiment.md.

The messages payload is JSON: either the messages array itself or an object
whose "messages" field holds it. Without one, the transcript records that the
chat export was unavailable.

Examples:
  timewarp issue report --task-context "login flow" --symptom "500 on submit" \
    --success-criteria "login succeeds" --messages session.json
  cat session.json | timewarp issue report ... --messages -`,
	Args: cobra.NoArgs,
	RunE: runIssueReport,
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueReportCmd)

	issueReportCmd.Flags().StringVar(&reportTaskContext, "task-context", "", "What you were working on (required)")
	issueReportCmd.Flags().StringVar(&reportSymptom, "symptom", "", "What went wrong (required)")
	issueReportCmd.Flags().StringVar(&reportSuccessCriteria, "success-criteria", "", "How to tell it is fixed (required)")
	issueReportCmd.Flags().StringVar(&reportSuspectedCause, "suspected-cause", "", "Optional suspected cause")
	issueReportCmd.Flags().StringVar(&reportChatSummary, "chat-summary", "", "Optional chat summary")
	issueReportCmd.Flags().StringVar(&reportMessages, "messages", "", "Host messages JSON file, or - for stdin")
	issueReportCmd.Flags().StringVar(&reportSessionID, "session-id", "", "Host session id (default: $TIMEWARP_SESSION_ID)")
	issueReportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output as JSON")
}

func runIssueReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}

	var opts []timewarp.Option
	if reportChatSummary == "" {
		opts = summaryOptions(ctx)
	}
	ws, err := openWorkspace(opts...)
	if err != nil {
		return err
	}

	payload, err := readMessages(reportMessages)
	if err != nil {
		return err
	}
	chat := transcript.NewRenderer().FromHost(payload)

	sessionID := reportSessionID
	if sessionID == "" {
		sessionID = os.Getenv("TIMEWARP_SESSION_ID")
	}

	id, err := ws.ReportIssue(ctx, timewarp.ReportInput{
		SessionID:       sessionID,
		TaskContext:     reportTaskContext,
		Symptom:         reportSymptom,
		SuccessCriteria: reportSuccessCriteria,
		SuspectedCause:  reportSuspectedCause,
		ChatSummary:     reportChatSummary,
		ChatText:        &chat,
	})
	if err != nil {
		return err
	}

	if reportJSON {
		return printJSON(map[string]interface{}{"ok": true, "issue_id": id})
	}

	fmt.Fprintf(out, "✓ Issue created: %s\n", id)
	fmt.Fprintf(out, "  Details: timewarp issue get %s\n", id)
	return nil
}

// readMessages loads the host payload from a file, from stdin for "-", or
// returns nil when no source was given.
func readMessages(source string) ([]byte, error) {
	switch source {
	case "":
		return nil, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read messages from stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read messages file: %w", err)
		}
		return data, nil
	}
}
