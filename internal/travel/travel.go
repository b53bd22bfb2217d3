// Package travel swaps the live workspace tree for a snapshot and back.
package travel

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pders01/timewarp/internal/errors"
	"github.com/pders01/timewarp/internal/fsutil"
	"github.com/pders01/timewarp/internal/logging"
	"github.com/pders01/timewarp/internal/models"
	"github.com/pders01/timewarp/internal/paths"
	"github.com/pders01/timewarp/internal/state"
)

// Snapshots is the view of the snapshot store the engine needs.
type Snapshots interface {
	Exists(id string) bool
}

// Engine runs the present/past state machine of one workspace.
type Engine struct {
	paths     paths.Paths
	writer    *fsutil.Writer
	states    *state.Store
	snapshots Snapshots
	log       *logrus.Entry
	now       func() time.Time
}

// NewEngine returns an Engine over the given stores.
func NewEngine(p paths.Paths, w *fsutil.Writer, states *state.Store, snapshots Snapshots) *Engine {
	if w == nil {
		w = fsutil.NewWriter(nil)
	}
	return &Engine{
		paths:     p,
		writer:    w,
		states:    states,
		snapshots: snapshots,
		log:       logging.NewLogger("travel"),
		now:       time.Now,
	}
}

// Travel moves the live tree into a fresh backup and installs a copy of the
// snapshot in its place. Preconditions are checked before anything on disk
// changes. If a step fails and the live tree can be put back, it is, and the
// original error is returned; otherwise the intent is left for Recover.
func (e *Engine) Travel(snapshotID string) error {
	st := e.states.Load()
	if st.Mode != models.ModePresent {
		return errors.InvalidState("travel", string(st.Mode))
	}
	if err := e.refuseIfPending(); err != nil {
		return err
	}
	if snapshotID == "" {
		return errors.MissingRequiredField("snapshot_id")
	}
	if strings.ContainsAny(snapshotID, `/\`) || snapshotID == "." || snapshotID == ".." || !e.snapshots.Exists(snapshotID) {
		return errors.SnapshotNotFound(snapshotID)
	}

	now := e.now()
	backupDir := e.paths.BackupDir(models.NewID(models.PrefixBackup, now))
	backupTree := paths.BackupTree(backupDir)
	if err := os.MkdirAll(backupTree, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	in := &Intent{
		Op:         OpTravel,
		SnapshotID: models.StringPtr(snapshotID),
		BackupPath: backupDir,
		StartedAt:  models.Timestamp(now),
	}
	log := e.log.WithFields(logrus.Fields{"snapshot_id": snapshotID, "backup_path": backupDir})

	if err := e.writeIntent(in, PhaseBackup); err != nil {
		_ = os.RemoveAll(backupDir)
		return err
	}
	if err := fsutil.MoveContents(e.paths.Root, backupTree); err != nil {
		return e.abortTravel(in, fmt.Errorf("move live tree to backup: %w", err))
	}
	if err := e.writeIntent(in, PhaseInstall); err != nil {
		return e.abortTravel(in, err)
	}
	if err := fsutil.RestoreFromDir(e.paths.SnapshotTree(snapshotID), e.paths.Root); err != nil {
		return e.abortTravel(in, fmt.Errorf("install snapshot: %w", err))
	}

	st.Mode = models.ModePast
	st.CurrentSnapshotID = models.StringPtr(snapshotID)
	st.BackupPath = models.StringPtr(backupDir)
	st.EnteredAt = models.StringPtr(models.Timestamp(now))
	if err := e.states.Save(st); err != nil {
		return e.abortTravel(in, err)
	}
	if err := e.clearIntent(); err != nil {
		log.WithError(err).Warn("travel completed but intent could not be removed")
	}

	log.Info("travelled to snapshot")
	return nil
}

// abortTravel puts the backed-up tree back after a failed travel. The cause
// is returned either way; the intent survives only if the rollback failed.
func (e *Engine) abortTravel(in *Intent, cause error) error {
	log := e.log.WithError(cause).WithField("phase", in.Phase)
	if err := e.rollBackTravel(in); err != nil {
		log.WithField("rollback_error", err.Error()).Error("travel failed and rollback failed; run recover")
		return cause
	}
	log.Warn("travel failed, live tree restored")
	return cause
}

// Return discards the installed snapshot copy and moves the backed-up tree
// back into the workspace root.
func (e *Engine) Return() error {
	st := e.states.Load()
	if st.Mode != models.ModePast {
		return errors.InvalidState("return", string(st.Mode))
	}
	if err := e.refuseIfPending(); err != nil {
		return err
	}
	if st.BackupPath == nil || *st.BackupPath == "" {
		return errors.MissingBackup("")
	}
	backupDir := *st.BackupPath
	if !fsutil.DirExists(paths.BackupTree(backupDir)) {
		return errors.MissingBackup(backupDir)
	}

	in := &Intent{
		Op:         OpReturn,
		SnapshotID: st.CurrentSnapshotID,
		BackupPath: backupDir,
		StartedAt:  models.Timestamp(e.now()),
	}
	if err := e.writeIntent(in, PhaseClear); err != nil {
		return err
	}
	if err := fsutil.ClearWorkspace(e.paths.Root); err != nil {
		return fmt.Errorf("clear workspace: %w", err)
	}
	if err := e.writeIntent(in, PhaseRestore); err != nil {
		return err
	}
	if err := fsutil.MoveContents(paths.BackupTree(backupDir), e.paths.Root); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	if err := e.states.Save(presentState(st)); err != nil {
		return err
	}
	if err := e.clearIntent(); err != nil {
		e.log.WithError(err).Warn("return completed but intent could not be removed")
	}
	e.discardBackup(backupDir)

	e.log.WithField("backup_path", backupDir).Info("returned to present")
	return nil
}

func (e *Engine) refuseIfPending() error {
	in, err := e.PendingIntent()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRecoveryPending, "unreadable intent record").
			WithDetail("intent_path", e.paths.Intent)
	}
	if in != nil {
		return errors.RecoveryPending(in.Op)
	}
	return nil
}

// discardBackup removes a backup whose tree has been moved back. A backup
// that still holds entries is kept.
func (e *Engine) discardBackup(backupDir string) {
	if tree := paths.BackupTree(backupDir); fsutil.DirExists(tree) && !fsutil.IsEmptyDir(tree) {
		e.log.WithField("backup_path", backupDir).Warn("backup not drained, keeping it")
		return
	}
	if err := os.RemoveAll(backupDir); err != nil {
		e.log.WithError(err).WithField("backup_path", backupDir).Warn("failed to remove drained backup")
	}
}

func presentState(st models.State) models.State {
	st.Mode = models.ModePresent
	st.CurrentSnapshotID = nil
	st.BackupPath = nil
	st.EnteredAt = nil
	return st
}
