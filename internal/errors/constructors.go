package errors

import "fmt"

// InvalidState reports a travel or return attempted from the wrong mode.
func InvalidState(op, mode string) *Error {
	return New(ErrCodeInvalidState, fmt.Sprintf("cannot %s: state.mode is %s", op, mode)).
		WithDetail("operation", op).
		WithDetail("mode", mode)
}

// SnapshotNotFound reports a snapshot id with no stored tree.
func SnapshotNotFound(snapshotID string) *Error {
	return New(ErrCodeSnapshotNotFound, fmt.Sprintf("snapshot not found: %s", snapshotID)).
		WithDetail("snapshot_id", snapshotID)
}

// MissingBackup reports a return whose backup tree is absent.
func MissingBackup(backupPath string) *Error {
	e := New(ErrCodeMissingBackup, "cannot return: backup workspace missing")
	if backupPath != "" {
		e = e.WithDetail("backup_path", backupPath)
	}
	return e
}

// RecoveryPending reports an interrupted travel or return that must be
// recovered before the state machine can move again.
func RecoveryPending(op string) *Error {
	return New(ErrCodeRecoveryPending,
		fmt.Sprintf("an interrupted %s must be recovered first (run: timewarp recover)", op)).
		WithDetail("pending_operation", op)
}

// MissingSessionSnapshot reports an issue filed before any session start.
func MissingSessionSnapshot() *Error {
	return New(ErrCodeMissingSessionSnapshot,
		"cannot report issue: missing state.session_snapshot_id (run session-start first)")
}

// MissingRequiredField reports an absent required issue field.
func MissingRequiredField(field string) *Error {
	return New(ErrCodeMissingRequiredField, fmt.Sprintf("%s required", field)).
		WithDetail("field", field)
}

// InvalidIssueID reports an issue id that is not a bare directory name.
func InvalidIssueID(issueID string) *Error {
	var id interface{}
	if issueID != "" {
		id = issueID
	}
	return New(ErrCodeInvalidIssueID, "issue_id must be a non-empty issue directory name").
		WithDetail("issue_id", id)
}

// IssueNotFound reports a missing issue record.
func IssueNotFound(issueID string) *Error {
	return New(ErrCodeIssueNotFound, fmt.Sprintf("issue not found: %s", issueID)).
		WithDetail("issue_id", issueID)
}

// IssueReadFailed reports an issue record that exists but cannot be read.
func IssueReadFailed(issueID string, err error) *Error {
	return Wrap(err, ErrCodeIssueReadFailed, "failed to read issue.json").
		WithDetail("issue_id", issueID).
		WithDetail("detail", err.Error())
}

// IssueInvalid reports an issue record that is not a JSON object.
func IssueInvalid(issueID, reason string) *Error {
	return New(ErrCodeIssueInvalid, "issue.json is not a JSON object").
		WithDetail("issue_id", issueID).
		WithDetail("detail", reason)
}

// WorkspaceLocked reports a lease held by another operation.
func WorkspaceLocked(lockPath string) *Error {
	return New(ErrCodeWorkspaceLocked, "another timewarp operation is in progress for this workspace").
		WithDetail("lock_path", lockPath)
}
