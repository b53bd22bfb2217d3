// Package paths describes the on-disk layout of a workspace's control
// directory.
package paths

import (
	"path/filepath"
)

// ControlDir is the name of the per-workspace control directory. It is never
// snapshotted, moved, or cleared.
const ControlDir = ".timewarp"

const (
	stateFile     = "state.json"
	intentFile    = "intent.json"
	lockFile      = "lock"
	snapshotsDir  = "snapshots"
	issuesDir     = "issues"
	backupsDir    = "present_backup"
	workspaceDir  = "workspace"
	snapshotMeta  = "snapshot.json"
	issueMetaFile = "issue.json"
)

// Paths resolves every well-known location under a workspace root.
type Paths struct {
	Root          string
	Control       string
	State         string
	Intent        string
	Lock          string
	Snapshots     string
	Issues        string
	PresentBackup string
}

// For returns the layout for root. root is made absolute; if that fails the
// cleaned path is used as is.
func For(root string) Paths {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	} else {
		root = filepath.Clean(root)
	}
	control := filepath.Join(root, ControlDir)
	return Paths{
		Root:          root,
		Control:       control,
		State:         filepath.Join(control, stateFile),
		Intent:        filepath.Join(control, intentFile),
		Lock:          filepath.Join(control, lockFile),
		Snapshots:     filepath.Join(control, snapshotsDir),
		Issues:        filepath.Join(control, issuesDir),
		PresentBackup: filepath.Join(control, backupsDir),
	}
}

// SnapshotDir returns the directory holding a snapshot's metadata and tree.
func (p Paths) SnapshotDir(snapshotID string) string {
	return filepath.Join(p.Snapshots, snapshotID)
}

// SnapshotMeta returns the path of a snapshot's snapshot.json.
func (p Paths) SnapshotMeta(snapshotID string) string {
	return filepath.Join(p.SnapshotDir(snapshotID), snapshotMeta)
}

// SnapshotTree returns the copied workspace tree of a snapshot.
func (p Paths) SnapshotTree(snapshotID string) string {
	return filepath.Join(p.SnapshotDir(snapshotID), workspaceDir)
}

// BackupDir returns the directory for a backup id.
func (p Paths) BackupDir(backupID string) string {
	return filepath.Join(p.PresentBackup, backupID)
}

// BackupTree returns the workspace subtree inside a backup directory.
func BackupTree(backupDir string) string {
	return filepath.Join(backupDir, workspaceDir)
}

// IssueDir returns the directory of an issue.
func (p Paths) IssueDir(issueID string) string {
	return filepath.Join(p.Issues, issueID)
}

// IssueMeta returns the path of an issue's issue.json.
func (p Paths) IssueMeta(issueID string) string {
	return filepath.Join(p.IssueDir(issueID), issueMetaFile)
}
