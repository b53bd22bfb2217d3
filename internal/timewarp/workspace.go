// Package timewarp exposes the operations a host runs against a workspace:
// session start, travel, return, recovery and the issue store. Mutating
// operations run under the workspace lease.
package timewarp

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pders01/timewarp/internal/fsutil"
	"github.com/pders01/timewarp/internal/issue"
	"github.com/pders01/timewarp/internal/lock"
	"github.com/pders01/timewarp/internal/logging"
	"github.com/pders01/timewarp/internal/models"
	"github.com/pders01/timewarp/internal/paths"
	"github.com/pders01/timewarp/internal/snapshot"
	"github.com/pders01/timewarp/internal/state"
	"github.com/pders01/timewarp/internal/travel"
)

// Summarizer produces a short summary of a chat transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Workspace is a handle on one workspace root.
type Workspace struct {
	paths      paths.Paths
	writer     *fsutil.Writer
	locking    bool
	summarizer Summarizer
	log        *logrus.Entry
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLocking enables or disables the workspace lease. It is on by default.
func WithLocking(enabled bool) Option {
	return func(w *Workspace) { w.locking = enabled }
}

// WithSummarizer sets the generator used for issues filed without a chat
// summary.
func WithSummarizer(s Summarizer) Option {
	return func(w *Workspace) { w.summarizer = s }
}

// Open returns a Workspace for root. Nothing on disk is touched.
func Open(root string, opts ...Option) *Workspace {
	w := &Workspace{
		paths:   paths.For(root),
		writer:  fsutil.NewWriter(nil),
		locking: true,
		log:     logging.NewLogger("workspace"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Paths returns the workspace layout.
func (w *Workspace) Paths() paths.Paths {
	return w.paths
}

type components struct {
	states    *state.Store
	issues    *issue.Store
	snapshots *snapshot.Manager
	engine    *travel.Engine
}

// components wires the stores for one operation. States saved through them
// carry guard as their guard_token.
func (w *Workspace) components(guard string) components {
	states := state.NewStore(w.paths, w.writer)
	if guard != "" {
		states = states.WithGuard(guard)
	}
	issues := issue.NewStore(w.paths, w.writer, states)
	snaps := snapshot.NewManager(w.paths, w.writer, states, issues)
	return components{
		states:    states,
		issues:    issues,
		snapshots: snaps,
		engine:    travel.NewEngine(w.paths, w.writer, states, snaps),
	}
}

// exclusive runs fn while holding the workspace lease.
func (w *Workspace) exclusive(op string, fn func(c components) error) error {
	if !w.locking {
		return fn(w.components(""))
	}
	lease, err := lock.Acquire(w.paths.Lock)
	if err != nil {
		return err
	}
	defer func() {
		if err := lease.Release(); err != nil {
			w.log.WithError(err).WithField("op", op).Warn("failed to release lease")
		}
	}()
	w.log.WithFields(logrus.Fields{
		"op":          op,
		"lock_path":   lease.Path(),
		"guard_token": lease.Token(),
	}).Debug("lease acquired")
	return fn(w.components(lease.Token()))
}

// SessionStartInput holds the inputs of SessionStart.
type SessionStartInput struct {
	SessionID    string
	TaskHint     string
	ExcludeGlobs []string
}

// SessionStart snapshots the live tree and makes it the session snapshot.
// An interrupted travel or return is recovered first; a recovery failure is
// logged and does not stop the snapshot.
func (w *Workspace) SessionStart(in SessionStartInput) (string, error) {
	var id string
	err := w.exclusive("session-start", func(c components) error {
		if rec, err := c.engine.Recover(); err != nil {
			w.log.WithError(err).Warn("automatic recovery failed")
		} else if rec.Action != travel.ActionNone {
			w.log.WithField("action", rec.Action).Warn("recovered interrupted operation")
		}

		var err error
		id, err = c.snapshots.Create(snapshot.CreateOptions{
			SessionID:    in.SessionID,
			TaskHint:     in.TaskHint,
			ExcludeGlobs: in.ExcludeGlobs,
		})
		return err
	})
	return id, err
}

// Travel swaps the live tree for the given snapshot.
func (w *Workspace) Travel(snapshotID string) error {
	return w.exclusive("travel", func(c components) error {
		return c.engine.Travel(snapshotID)
	})
}

// Return restores the tree that was live before the last travel.
func (w *Workspace) Return() error {
	return w.exclusive("return", func(c components) error {
		return c.engine.Return()
	})
}

// Recover finishes an interrupted travel or return.
func (w *Workspace) Recover() (travel.Recovery, error) {
	var rec travel.Recovery
	err := w.exclusive("recover", func(c components) error {
		var err error
		rec, err = c.engine.Recover()
		return err
	})
	return rec, err
}

// ReportInput holds the inputs of ReportIssue.
type ReportInput struct {
	SessionID       string
	TaskContext     string
	Symptom         string
	SuccessCriteria string
	SuspectedCause  string
	ChatSummary     string
	ChatText        *string
}

// ReportIssue files an issue against the session snapshot. A non-empty
// SessionID that differs from the recorded one replaces it first. When no
// chat summary is given and a summarizer is configured, one is generated;
// a failure there only logs.
func (w *Workspace) ReportIssue(ctx context.Context, in ReportInput) (string, error) {
	var id string
	err := w.exclusive("issue-report", func(c components) error {
		st := c.states.Load()
		if in.SessionID != "" && models.Deref(st.SessionID) != in.SessionID {
			st.SessionID = models.StringPtr(in.SessionID)
			if err := c.states.Save(st); err != nil {
				return err
			}
		}

		summary := in.ChatSummary
		if summary == "" && w.summarizer != nil && in.ChatText != nil {
			generated, err := w.summarizer.Summarize(ctx, issue.ChatDocument(*in.ChatText))
			if err != nil {
				w.log.WithError(err).Warn("chat summary generation failed")
			} else {
				summary = generated
			}
		}

		var err error
		id, err = c.issues.Create(issue.CreateInput{
			TaskContext:     in.TaskContext,
			Symptom:         in.Symptom,
			SuccessCriteria: in.SuccessCriteria,
			SuspectedCause:  in.SuspectedCause,
			ChatSummary:     summary,
			ChatText:        in.ChatText,
		})
		return err
	})
	return id, err
}

// IssueList is the result of ListIssues.
type IssueList struct {
	Filter string                `json:"status"`
	Issues []models.IssueSummary `json:"issues"`
}

// ListIssues lists issues matching a status filter ("" for open, "all" or
// "*" for every status).
func (w *Workspace) ListIssues(statusFilter string) (IssueList, error) {
	filter := issue.NormalizeStatus(statusFilter)
	all, err := w.components("").issues.List()
	if err != nil {
		return IssueList{Filter: filter}, err
	}
	return IssueList{Filter: filter, Issues: issue.FilterByStatus(all, filter)}, nil
}

// GetIssue returns one issue with the paths of its documents.
func (w *Workspace) GetIssue(issueID string) (models.IssueDetail, error) {
	return w.components("").issues.Get(issueID)
}

// ArchiveIssue writes a tar.gz of an issue and its pinned snapshot to out.
func (w *Workspace) ArchiveIssue(issueID string, out io.Writer) (issue.ArchiveResult, error) {
	return w.components("").issues.Archive(issueID, out)
}

// Snapshots lists stored snapshots, newest first.
func (w *Workspace) Snapshots() ([]models.SnapshotInfo, error) {
	return w.components("").snapshots.List()
}

// Prune plans a garbage collection that keeps the session snapshot. With
// force, the plan is carried out under the lease.
func (w *Workspace) Prune(force bool) (snapshot.Plan, error) {
	if !force {
		c := w.components("")
		return c.snapshots.PlanGC(models.Deref(c.states.Load().SessionSnapshotID))
	}
	var plan snapshot.Plan
	err := w.exclusive("prune", func(c components) error {
		var err error
		plan, err = c.snapshots.Cleanup(models.Deref(c.states.Load().SessionSnapshotID))
		return err
	})
	return plan, err
}

// Status is a read-only view of the control directory.
type Status struct {
	State      models.State   `json:"state"`
	Intent     *travel.Intent `json:"intent"`
	LockHolder string         `json:"lock_holder,omitempty"`
}

// Status reports the state record and any pending intent.
func (w *Workspace) Status() (Status, error) {
	c := w.components("")
	in, err := c.engine.PendingIntent()
	if err != nil {
		return Status{}, err
	}
	return Status{
		State:      c.states.Load(),
		Intent:     in,
		LockHolder: lock.Holder(w.paths.Lock),
	}, nil
}
