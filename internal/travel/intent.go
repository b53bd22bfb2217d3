package travel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// Operations and phases recorded in an intent.
const (
	OpTravel = "travel"
	OpReturn = "return"

	PhaseBackup  = "backup"
	PhaseInstall = "install"
	PhaseClear   = "clear"
	PhaseRestore = "restore"
)

// Intent is the write-ahead record of a travel or return in flight. It is
// written before the live tree is touched and removed once state.json
// reflects the outcome.
type Intent struct {
	Op         string  `json:"op"`
	Phase      string  `json:"phase"`
	SnapshotID *string `json:"snapshot_id"`
	BackupPath string  `json:"backup_path"`
	StartedAt  string  `json:"started_at"`
}

func (e *Engine) writeIntent(in *Intent, phase string) error {
	in.Phase = phase
	if err := e.writer.WriteJSON(e.paths.Intent, in); err != nil {
		return fmt.Errorf("write intent: %w", err)
	}
	return nil
}

// PendingIntent returns the intent left by an interrupted operation, or nil
// when there is none.
func (e *Engine) PendingIntent() (*Intent, error) {
	data, err := afero.ReadFile(e.writer.Fs(), e.paths.Intent)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read intent: %w", err)
	}
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse intent: %w", err)
	}
	return &in, nil
}

func (e *Engine) clearIntent() error {
	if err := e.writer.Fs().Remove(e.paths.Intent); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove intent: %w", err)
	}
	return nil
}
