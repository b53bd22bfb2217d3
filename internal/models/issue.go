package models

const (
	DefaultIssueStatus    = "open"
	DefaultChatFile       = "chat.md"
	DefaultExperimentFile = "experiment.md"

	StatusInvalid = "invalid"
	StatusUnknown = "unknown"
)

// Issue represents the issue.json structure
type Issue struct {
	IssueID         string  `json:"issue_id"`
	CreatedAt       string  `json:"created_at"`
	Status          string  `json:"status"`
	SnapshotID      string  `json:"snapshot_id"`
	TaskContext     string  `json:"task_context"`
	Symptom         string  `json:"symptom"`
	SuccessCriteria string  `json:"success_criteria"`
	SuspectedCause  *string `json:"suspected_cause"`
	ChatFile        string  `json:"chat_file"`
	ChatSummary     *string `json:"chat_summary"`
	ExperimentFile  string  `json:"experiment_file"`
}

// IssueSummary is a listing row for an issue.
type IssueSummary struct {
	IssueID   string  `json:"issue_id"`
	Status    string  `json:"status"`
	CreatedAt *string `json:"created_at"`
}

// IssuePaths are the resolved absolute paths of an issue's documents.
type IssuePaths struct {
	IssueDir       string `json:"issue_dir"`
	IssueFile      string `json:"issue_file"`
	ChatFile       string `json:"chat_file"`
	ExperimentFile string `json:"experiment_file"`
}

// IssueDetail is an issue record as returned by a lookup.
type IssueDetail struct {
	IssueID         string     `json:"issue_id"`
	Status          string     `json:"status"`
	CreatedAt       *string    `json:"created_at"`
	SnapshotID      *string    `json:"snapshot_id"`
	TaskContext     *string    `json:"task_context"`
	Symptom         *string    `json:"symptom"`
	SuccessCriteria *string    `json:"success_criteria"`
	SuspectedCause  *string    `json:"suspected_cause"`
	ChatSummary     *string    `json:"chat_summary"`
	Paths           IssuePaths `json:"paths"`
}
