package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/config"
	twerrors "github.com/pders01/timewarp/internal/errors"
	"github.com/pders01/timewarp/internal/models"
)

var (
	issueListStatus string
	issueListToon   bool
)

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues with summary fields",
	Long: `List issues newest first as a JSON document:

  {"ok": true, "filter": {"status": "open"}, "count": 1, "issues": [...]}

The status filter defaults to issues.default_status_filter ("open"); use
"all" or "*" for every status. Issues whose issue.json cannot be read are
listed with status "invalid".

Examples:
  timewarp issue list
  timewarp issue list --status all
  timewarp issue list --status closed --toon`,
	Args: cobra.NoArgs,
	RunE: runIssueList,
}

func init() {
	issueCmd.AddCommand(issueListCmd)

	issueListCmd.Flags().StringVar(&issueListStatus, "status", "", "Status filter: open|all|<status> (default: issues.default_status_filter)")
	issueListCmd.Flags().BoolVar(&issueListToon, "toon", false, "Output as Toon")
}

type issueListFilter struct {
	Status string `json:"status"`
}

type issueListResult struct {
	OK     bool                  `json:"ok"`
	Filter issueListFilter       `json:"filter"`
	Count  int                   `json:"count"`
	Issues []models.IssueSummary `json:"issues"`
}

func runIssueList(cmd *cobra.Command, args []string) error {
	status := issueListStatus
	if status == "" {
		status = config.GetDefaultStatusFilter()
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	list, err := ws.ListIssues(status)
	if err != nil {
		failure := twerrors.Wrap(err, twerrors.ErrCodeIssueListFailed, "failed to list issues").
			WithDetail("detail", err.Error())
		if perr := printJSON(failureEnvelope(failure)); perr != nil {
			return perr
		}
		return errReported
	}

	issues := list.Issues
	if issues == nil {
		issues = []models.IssueSummary{}
	}
	result := issueListResult{
		OK:     true,
		Filter: issueListFilter{Status: list.Filter},
		Count:  len(issues),
		Issues: issues,
	}

	if issueListToon {
		return printToon(result)
	}
	return printJSON(result)
}
