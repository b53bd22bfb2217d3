package models

import "runtime"

// EnvFingerprint records the environment a snapshot was taken on.
type EnvFingerprint struct {
	Platform string  `json:"platform"`
	Arch     string  `json:"arch"`
	Git      *GitRef `json:"git,omitempty"`
}

// GitRef is the commit a workspace was on when it was snapshotted.
type GitRef struct {
	Commit string `json:"commit"`
	Branch string `json:"branch,omitempty"`
	Dirty  bool   `json:"dirty"`
}

// CurrentEnv returns the fingerprint of the running process.
func CurrentEnv() EnvFingerprint {
	return EnvFingerprint{
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
	}
}

// SnapshotMetadata represents the snapshot.json structure for a snapshot
type SnapshotMetadata struct {
	SnapshotID      string         `json:"snapshot_id"`
	CreatedAt       string         `json:"created_at"`
	SessionID       *string        `json:"session_id"`
	WorkspaceRoot   string         `json:"workspace_root"`
	ExcludeGlobs    []string       `json:"exclude_globs"`
	EnvFingerprint  EnvFingerprint `json:"env_fingerprint"`
	InitialTaskHint *string        `json:"initial_task_hint"`
}

// SnapshotInfo is a listing row for a stored snapshot.
type SnapshotInfo struct {
	SnapshotID string   `json:"snapshot_id"`
	CreatedAt  string   `json:"created_at,omitempty"`
	SessionID  string   `json:"session_id,omitempty"`
	TaskHint   string   `json:"initial_task_hint,omitempty"`
	Session    bool     `json:"session"`
	Current    bool     `json:"current"`
	PinnedBy   []string `json:"pinned_by,omitempty"`
	Invalid    bool     `json:"invalid,omitempty"`
}
