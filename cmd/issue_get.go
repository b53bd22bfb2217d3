package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	twerrors "github.com/pders01/timewarp/internal/errors"
	"github.com/pders01/timewarp/internal/models"
)

var issueGetToon bool

var issueGetCmd = &cobra.Command{
	Use:   "get <issue_id>",
	Short: "Show the full record of one issue",
	Long: `Print one issue and the absolute paths of its documents:

  {"ok": true, "issue": {...}}

Failures are reported in the same document with a stable code:

  {"ok": false, "error": {"code": "ISSUE_NOT_FOUND", "message": ..., "issue_id": ...}}

Codes: INVALID_ISSUE_ID, ISSUE_NOT_FOUND, ISSUE_READ_FAILED, ISSUE_INVALID,
ISSUE_GET_FAILED.

Example:
  timewarp issue get i_20251114_093000_k3x9qa`,
	Args: cobra.ExactArgs(1),
	RunE: runIssueGet,
}

func init() {
	issueCmd.AddCommand(issueGetCmd)

	issueGetCmd.Flags().BoolVar(&issueGetToon, "toon", false, "Output as Toon")
}

type issueGetResult struct {
	OK    bool               `json:"ok"`
	Issue models.IssueDetail `json:"issue"`
}

func runIssueGet(cmd *cobra.Command, args []string) error {
	issueID := args[0]

	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	detail, err := ws.GetIssue(issueID)
	if err != nil {
		failure, ok := twerrors.As(err)
		if !ok {
			failure = twerrors.Wrap(err, twerrors.ErrCodeIssueGetFailed, "failed to get issue detail").
				WithDetail("issue_id", models.StringPtr(strings.TrimSpace(issueID))).
				WithDetail("detail", err.Error())
		}
		if perr := printJSON(failureEnvelope(failure)); perr != nil {
			return perr
		}
		return errReported
	}

	result := issueGetResult{OK: true, Issue: detail}
	if issueGetToon {
		return printToon(result)
	}
	return printJSON(result)
}
