// Package snapshot creates workspace snapshots and reclaims the ones nothing
// depends on any more.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/pders01/timewarp/internal/config"
	"github.com/pders01/timewarp/internal/exclude"
	"github.com/pders01/timewarp/internal/fsutil"
	"github.com/pders01/timewarp/internal/git"
	"github.com/pders01/timewarp/internal/logging"
	"github.com/pders01/timewarp/internal/models"
	"github.com/pders01/timewarp/internal/paths"
	"github.com/pders01/timewarp/internal/state"
)

// Pinner reports which snapshots are referenced by issues, keyed by snapshot
// id with the referencing issue ids as values.
type Pinner interface {
	Pins() map[string][]string
}

// CreateOptions are the inputs of a session-start snapshot.
type CreateOptions struct {
	SessionID    string
	TaskHint     string
	ExcludeGlobs []string
}

// Manager owns the snapshots directory of one workspace.
type Manager struct {
	paths  paths.Paths
	writer *fsutil.Writer
	states *state.Store
	pins   Pinner
	log    *logrus.Entry
	now    func() time.Time
}

// NewManager returns a Manager. pins may be nil, in which case no snapshot
// is considered pinned.
func NewManager(p paths.Paths, w *fsutil.Writer, states *state.Store, pins Pinner) *Manager {
	if w == nil {
		w = fsutil.NewWriter(nil)
	}
	return &Manager{
		paths:  p,
		writer: w,
		states: states,
		pins:   pins,
		log:    logging.NewLogger("snapshot"),
		now:    time.Now,
	}
}

// EnsureLayout creates the control directory and its subdirectories.
func (m *Manager) EnsureLayout() error {
	for _, dir := range []string{m.paths.Control, m.paths.Snapshots, m.paths.Issues, m.paths.PresentBackup} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Create snapshots the live tree, records it as the session snapshot in
// state, and runs garbage collection keeping the new snapshot. It returns
// the new snapshot id. A GC failure is logged and does not fail the call.
func (m *Manager) Create(opts CreateOptions) (string, error) {
	if err := m.EnsureLayout(); err != nil {
		return "", err
	}

	globs := opts.ExcludeGlobs
	if globs == nil {
		globs = config.GetExcludeGlobs()
	}

	now := m.now()
	id := models.NewID(models.PrefixSnapshot, now)
	tree := m.paths.SnapshotTree(id)
	if err := os.MkdirAll(tree, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	meta := models.SnapshotMetadata{
		SnapshotID:      id,
		CreatedAt:       models.Timestamp(now),
		SessionID:       models.StringPtr(opts.SessionID),
		WorkspaceRoot:   m.paths.Root,
		ExcludeGlobs:    globs,
		EnvFingerprint:  m.fingerprint(),
		InitialTaskHint: models.StringPtr(opts.TaskHint),
	}
	if err := m.writer.WriteJSON(m.paths.SnapshotMeta(id), meta); err != nil {
		m.discard(id)
		return "", err
	}
	if err := fsutil.CopyTree(m.paths.Root, tree, exclude.New(globs)); err != nil {
		m.discard(id)
		return "", fmt.Errorf("copy workspace into snapshot %s: %w", id, err)
	}

	st := m.states.Load()
	st.WorkspaceRoot = m.paths.Root
	st.SessionID = models.StringPtr(opts.SessionID)
	st.SessionSnapshotID = models.StringPtr(id)
	if !st.Mode.Valid() {
		m.log.WithField("mode", st.Mode).Warn("resetting invalid mode to present")
		st.Mode = models.ModePresent
	}
	if err := m.states.Save(st); err != nil {
		return "", err
	}

	m.log.WithFields(logrus.Fields{
		"snapshot_id": id,
		"session_id":  opts.SessionID,
	}).Info("snapshot created")

	if _, err := m.Cleanup(id); err != nil {
		m.log.WithError(err).Warn("snapshot cleanup failed")
	}
	return id, nil
}

// discard removes a snapshot whose creation failed part way.
func (m *Manager) discard(id string) {
	if err := os.RemoveAll(m.paths.SnapshotDir(id)); err != nil {
		m.log.WithError(err).WithField("snapshot_id", id).Warn("failed to remove partial snapshot")
	}
}

// Exists reports whether id has a stored workspace tree.
func (m *Manager) Exists(id string) bool {
	return id != "" && fsutil.DirExists(m.paths.SnapshotTree(id))
}

// IDs returns the names of every snapshot directory, sorted ascending.
func (m *Manager) IDs() ([]string, error) {
	entries, err := os.ReadDir(m.paths.Snapshots)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshots dir: %w", err)
	}
	var ids []string
	for _, ent := range entries {
		if ent.IsDir() {
			ids = append(ids, ent.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ReadMetadata reads the snapshot.json of id.
func (m *Manager) ReadMetadata(id string) (models.SnapshotMetadata, error) {
	var meta models.SnapshotMetadata
	data, err := afero.ReadFile(m.writer.Fs(), m.paths.SnapshotMeta(id))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse %s: %w", m.paths.SnapshotMeta(id), err)
	}
	return meta, nil
}

// List describes every stored snapshot, newest first.
func (m *Manager) List() ([]models.SnapshotInfo, error) {
	ids, err := m.IDs()
	if err != nil {
		return nil, err
	}
	st := m.states.Load()
	pins := m.pinned()

	infos := make([]models.SnapshotInfo, 0, len(ids))
	for _, id := range ids {
		info := models.SnapshotInfo{
			SnapshotID: id,
			Session:    id == models.Deref(st.SessionSnapshotID),
			Current:    id == models.Deref(st.CurrentSnapshotID),
			PinnedBy:   pins[id],
		}
		meta, err := m.ReadMetadata(id)
		if err != nil {
			info.Invalid = true
		} else {
			info.CreatedAt = meta.CreatedAt
			info.SessionID = models.Deref(meta.SessionID)
			info.TaskHint = models.Deref(meta.InitialTaskHint)
		}
		infos = append(infos, info)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].CreatedAt != infos[j].CreatedAt {
			return infos[i].CreatedAt > infos[j].CreatedAt
		}
		return infos[i].SnapshotID > infos[j].SnapshotID
	})
	return infos, nil
}

func (m *Manager) pinned() map[string][]string {
	if m.pins == nil {
		return map[string][]string{}
	}
	pins := m.pins.Pins()
	if pins == nil {
		return map[string][]string{}
	}
	return pins
}

// fingerprint describes the host and, when the workspace is a git working
// tree, the commit it is on.
func (m *Manager) fingerprint() models.EnvFingerprint {
	env := models.CurrentEnv()
	if info := git.Describe(m.paths.Root); info != nil {
		env.Git = &models.GitRef{Commit: info.Commit, Branch: info.Branch, Dirty: info.Dirty}
	}
	return env
}
