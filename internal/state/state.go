// Package state loads and persists a workspace's state.json.
package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/pders01/timewarp/internal/fsutil"
	"github.com/pders01/timewarp/internal/logging"
	"github.com/pders01/timewarp/internal/models"
	"github.com/pders01/timewarp/internal/paths"
)

// Store reads and writes the control record of one workspace.
type Store struct {
	paths  paths.Paths
	writer *fsutil.Writer
	guard  string
	log    *logrus.Entry
}

// NewStore returns a Store for the workspace described by p.
func NewStore(p paths.Paths, w *fsutil.Writer) *Store {
	if w == nil {
		w = fsutil.NewWriter(nil)
	}
	return &Store{
		paths:  p,
		writer: w,
		log:    logging.NewLogger("state"),
	}
}

// WithGuard returns a Store that stamps token into guard_token on every
// save.
func (s *Store) WithGuard(token string) *Store {
	c := *s
	c.guard = token
	return &c
}

// Load returns the persisted state. A missing, unreadable or corrupt file
// yields the defaults; fields absent from the file keep their default value.
// An unknown mode is returned as stored.
func (s *Store) Load() models.State {
	st := models.DefaultState(s.paths.Root)

	data, err := afero.ReadFile(s.writer.Fs(), s.paths.State)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("state.json unreadable, using defaults")
		}
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.WithError(err).Warn("state.json corrupt, using defaults")
		return models.DefaultState(s.paths.Root)
	}
	if st.WorkspaceRoot == "" {
		st.WorkspaceRoot = s.paths.Root
	}
	if st.Mode == "" {
		st.Mode = models.ModePresent
	}
	return st
}

// Save ensures the control directory exists and atomically replaces
// state.json with st. A guarded store overwrites st.GuardToken.
func (s *Store) Save(st models.State) error {
	if s.guard != "" {
		st.GuardToken = models.StringPtr(s.guard)
	}
	if err := s.writer.Fs().MkdirAll(s.paths.Control, 0o755); err != nil {
		return fmt.Errorf("create control dir: %w", err)
	}
	if err := s.writer.WriteJSON(s.paths.State, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"mode":                st.Mode,
		"session_snapshot_id": models.Deref(st.SessionSnapshotID),
	}).Debug("state saved")
	return nil
}
