package models

// Mode is the travel state machine position.
type Mode string

const (
	ModePresent Mode = "present"
	ModePast    Mode = "past"
)

// Valid reports whether m is one of the two known modes.
func (m Mode) Valid() bool {
	return m == ModePresent || m == ModePast
}

// State is the per-workspace control record persisted as state.json.
//
// Mode past implies BackupPath and CurrentSnapshotID are set; mode present
// implies both are nil.
type State struct {
	WorkspaceRoot     string  `json:"workspace_root"`
	SessionID         *string `json:"session_id"`
	SessionSnapshotID *string `json:"session_snapshot_id"`
	Mode              Mode    `json:"mode"`
	CurrentSnapshotID *string `json:"current_snapshot_id"`
	BackupPath        *string `json:"backup_path"`
	EnteredAt         *string `json:"entered_at"`
	GuardToken        *string `json:"guard_token"`
}

// DefaultState returns the record used when no state file exists.
func DefaultState(root string) State {
	return State{
		WorkspaceRoot: root,
		Mode:          ModePresent,
	}
}

// StringPtr returns nil for an empty string, a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
