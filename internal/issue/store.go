// Package issue stores problem reports pinned to the session snapshot that
// was live when they were filed.
package issue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/pders01/timewarp/internal/errors"
	"github.com/pders01/timewarp/internal/fsutil"
	"github.com/pders01/timewarp/internal/logging"
	"github.com/pders01/timewarp/internal/models"
	"github.com/pders01/timewarp/internal/paths"
	"github.com/pders01/timewarp/internal/redact"
	"github.com/pders01/timewarp/internal/state"
)

// Store reads and writes the issues directory of one workspace.
type Store struct {
	paths  paths.Paths
	writer *fsutil.Writer
	states *state.Store
	log    *logrus.Entry
	now    func() time.Time
}

// NewStore returns a Store. All reads and writes go through w's filesystem.
func NewStore(p paths.Paths, w *fsutil.Writer, states *state.Store) *Store {
	if w == nil {
		w = fsutil.NewWriter(nil)
	}
	return &Store{
		paths:  p,
		writer: w,
		states: states,
		log:    logging.NewLogger("issue"),
		now:    time.Now,
	}
}

// CreateInput holds the fields of a new issue. ChatText is required; a nil
// pointer means it was not supplied, while an empty string is accepted.
type CreateInput struct {
	TaskContext     string
	Symptom         string
	SuccessCriteria string
	SuspectedCause  string
	ChatSummary     string
	ChatText        *string
}

// Create files an issue against the state's session snapshot. issue.json,
// chat.md and experiment.md are written all-or-nothing.
func (s *Store) Create(in CreateInput) (string, error) {
	st := s.states.Load()
	snapshotID := models.Deref(st.SessionSnapshotID)
	if snapshotID == "" {
		return "", errors.MissingSessionSnapshot()
	}
	switch {
	case in.TaskContext == "":
		return "", errors.MissingRequiredField("task_context")
	case in.Symptom == "":
		return "", errors.MissingRequiredField("symptom")
	case in.SuccessCriteria == "":
		return "", errors.MissingRequiredField("success_criteria")
	case in.ChatText == nil:
		return "", errors.MissingRequiredField("chat_text")
	}

	now := s.now()
	id := models.NewID(models.PrefixIssue, now)
	dir := s.paths.IssueDir(id)
	if err := s.writer.Fs().MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create issue dir: %w", err)
	}

	record := models.Issue{
		IssueID:         id,
		CreatedAt:       models.Timestamp(now),
		Status:          models.DefaultIssueStatus,
		SnapshotID:      snapshotID,
		TaskContext:     in.TaskContext,
		Symptom:         in.Symptom,
		SuccessCriteria: in.SuccessCriteria,
		SuspectedCause:  models.StringPtr(in.SuspectedCause),
		ChatFile:        models.DefaultChatFile,
		ChatSummary:     models.StringPtr(in.ChatSummary),
		ExperimentFile:  models.DefaultExperimentFile,
	}

	batch := s.writer.Batch(dir)
	if err := batch.AddJSON("issue.json", record); err != nil {
		removeEmpty(s.writer.Fs(), dir)
		return "", err
	}
	batch.Add(models.DefaultChatFile, []byte(ChatDocument(*in.ChatText)))
	batch.Add(models.DefaultExperimentFile, []byte(ExperimentDocument(id, snapshotID, in.SuccessCriteria)))
	if err := batch.Commit(); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"issue_id":    id,
		"snapshot_id": snapshotID,
	}).Info("issue created")
	return id, nil
}

// ChatDocument is the stored form of a transcript: redacted and trimmed,
// with one trailing newline.
func ChatDocument(chat string) string {
	return strings.TrimSpace(redact.Redact(chat)) + "\n"
}

// ExperimentDocument is the notes template seeded for a new issue.
func ExperimentDocument(issueID, snapshotID, successCriteria string) string {
	var b strings.Builder
	b.WriteString("# Experiment\n\n")
	fmt.Fprintf(&b, "## Issue\n- id: %s\n- snapshot_id: %s\n\n", issueID, snapshotID)
	fmt.Fprintf(&b, "## Success Criteria\n%s\n\n", strings.TrimSpace(successCriteria))
	b.WriteString("## Repro\n<optional: minimal repro steps>\n\n")
	b.WriteString("## Changes\n<what changed during experiments>\n\n")
	b.WriteString("## Validation\n<how to validate success/failure>\n\n")
	b.WriteString("## Result\n<success/failure + evidence>\n")
	return b.String()
}

// List summarizes every issue, newest first. Records that cannot be read or
// parsed are listed with status "invalid".
func (s *Store) List() ([]models.IssueSummary, error) {
	entries, err := afero.ReadDir(s.writer.Fs(), s.paths.Issues)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.IssueSummary{}, nil
		}
		return nil, fmt.Errorf("read issues dir: %w", err)
	}

	issues := make([]models.IssueSummary, 0, len(entries))
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		rec, err := s.readRecord(ent.Name())
		if err != nil {
			issues = append(issues, models.IssueSummary{IssueID: ent.Name(), Status: models.StatusInvalid})
			continue
		}
		issues = append(issues, models.IssueSummary{
			IssueID:   stringOr(rec["issue_id"], ent.Name()),
			Status:    stringOr(rec["status"], models.StatusUnknown),
			CreatedAt: optString(rec["created_at"]),
		})
	}

	sortNewestFirst(issues)
	return issues, nil
}

func sortNewestFirst(issues []models.IssueSummary) {
	sort.SliceStable(issues, func(i, j int) bool {
		ti, oki := parseCreatedAt(issues[i].CreatedAt)
		tj, okj := parseCreatedAt(issues[j].CreatedAt)
		switch {
		case oki && okj && !ti.Equal(tj):
			return ti.After(tj)
		case oki != okj:
			return oki
		}
		return issues[i].IssueID > issues[j].IssueID
	})
}

func parseCreatedAt(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FilterAll is the normalized filter that matches every status.
const FilterAll = "all"

// NormalizeStatus maps a user-supplied status filter to its canonical form:
// empty means "open", "*" and "all" mean every status, anything else is
// compared case-insensitively.
func NormalizeStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return models.DefaultIssueStatus
	case "*", FilterAll:
		return FilterAll
	}
	return s
}

// FilterByStatus keeps the issues matching a normalized filter.
func FilterByStatus(issues []models.IssueSummary, filter string) []models.IssueSummary {
	if filter == FilterAll {
		return issues
	}
	out := make([]models.IssueSummary, 0, len(issues))
	for _, is := range issues {
		status := is.Status
		if status == "" {
			status = models.StatusUnknown
		}
		if strings.ToLower(status) == filter {
			out = append(out, is)
		}
	}
	return out
}

// ValidateID trims id and checks that it is a bare directory name.
func ValidateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return id, errors.InvalidIssueID(id)
	}
	return id, nil
}

// Get returns the full record of an issue with the resolved paths of its
// documents. The id is validated before the filesystem is touched.
func (s *Store) Get(issueID string) (models.IssueDetail, error) {
	id, err := ValidateID(issueID)
	if err != nil {
		return models.IssueDetail{}, err
	}

	dir := s.paths.IssueDir(id)
	file := s.paths.IssueMeta(id)
	data, err := afero.ReadFile(s.writer.Fs(), file)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IssueDetail{}, errors.IssueNotFound(id)
		}
		return models.IssueDetail{}, errors.IssueReadFailed(id, err)
	}
	var rec map[string]interface{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.IssueDetail{}, errors.IssueInvalid(id, err.Error())
	}
	if rec == nil {
		return models.IssueDetail{}, errors.IssueInvalid(id, "null record")
	}

	return models.IssueDetail{
		IssueID:         stringOr(rec["issue_id"], id),
		Status:          stringOr(rec["status"], models.StatusUnknown),
		CreatedAt:       optString(rec["created_at"]),
		SnapshotID:      optString(rec["snapshot_id"]),
		TaskContext:     optString(rec["task_context"]),
		Symptom:         optString(rec["symptom"]),
		SuccessCriteria: optString(rec["success_criteria"]),
		SuspectedCause:  optString(rec["suspected_cause"]),
		ChatSummary:     optString(rec["chat_summary"]),
		Paths: models.IssuePaths{
			IssueDir:       dir,
			IssueFile:      file,
			ChatFile:       joinName(dir, rec["chat_file"], models.DefaultChatFile),
			ExperimentFile: joinName(dir, rec["experiment_file"], models.DefaultExperimentFile),
		},
	}, nil
}

// Pins maps each snapshot id referenced by an issue to the referencing issue
// ids. Unreadable records pin nothing.
func (s *Store) Pins() map[string][]string {
	pins := make(map[string][]string)
	entries, err := afero.ReadDir(s.writer.Fs(), s.paths.Issues)
	if err != nil {
		return pins
	}
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		rec, err := s.readRecord(ent.Name())
		if err != nil {
			continue
		}
		if sid, ok := rec["snapshot_id"].(string); ok && sid != "" {
			pins[sid] = append(pins[sid], stringOr(rec["issue_id"], ent.Name()))
		}
	}
	return pins
}

func (s *Store) readRecord(id string) (map[string]interface{}, error) {
	data, err := afero.ReadFile(s.writer.Fs(), s.paths.IssueMeta(id))
	if err != nil {
		return nil, err
	}
	var rec map[string]interface{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("issue %s: null record", id)
	}
	return rec, nil
}

func stringOr(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func optString(v interface{}) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

// joinName resolves a document name recorded in issue.json. Names that are
// not plain file names fall back to def.
func joinName(dir string, v interface{}, def string) string {
	name := stringOr(v, def)
	if name != filepath.Base(name) || name == ".." || name == "." {
		name = def
	}
	return filepath.Join(dir, name)
}

func removeEmpty(fs afero.Fs, dir string) {
	if entries, err := afero.ReadDir(fs, dir); err == nil && len(entries) == 0 {
		_ = fs.Remove(dir)
	}
}
