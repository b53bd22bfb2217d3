package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	twerrors "github.com/pders01/timewarp/internal/errors"
	"github.com/pders01/timewarp/internal/models"
	"github.com/pders01/timewarp/internal/travel"
)

func resetTravelFlags() {
	travelJSON = false
	returnJSON = false
	recoverJSON = false
	statusJSON = false
	statusToon = false
}

func TestTravelAndReturn(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()
	resetTravelFlags()

	id := createTestSnapshot(t, ws, "")
	ws.CreateFile("main.go", "package main // edited\n")
	ws.CreateFile("new.txt", "added after the snapshot\n")
	buf := captureOutput(t)

	if err := runTravel(nil, []string{id}); err != nil {
		t.Fatalf("travel command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Traveled to snapshot: "+id) {
		t.Errorf("unexpected output: %q", buf.String())
	}

	if got := ws.ReadFile("main.go"); got != "package main\n" {
		t.Errorf("expected snapshot content, got %q", got)
	}
	if ws.Exists("new.txt") {
		t.Error("new.txt should not exist in the past")
	}
	st := readState(t, ws.Path)
	if st.Mode != models.ModePast || models.Deref(st.CurrentSnapshotID) != id {
		t.Errorf("unexpected state after travel: %+v", st)
	}

	if err := runReturn(nil, []string{}); err != nil {
		t.Fatalf("return command failed: %v", err)
	}

	if got := ws.ReadFile("main.go"); got != "package main // edited\n" {
		t.Errorf("expected edited content restored, got %q", got)
	}
	if got := ws.ReadFile("new.txt"); got != "added after the snapshot\n" {
		t.Errorf("expected new.txt restored, got %q", got)
	}
	if st := readState(t, ws.Path); st.Mode != models.ModePresent || st.BackupPath != nil {
		t.Errorf("unexpected state after return: %+v", st)
	}
}

func TestTravelErrors(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()
	captureOutput(t)
	resetTravelFlags()

	err := runTravel(nil, []string{"s_missing"})
	if !twerrors.Is(err, twerrors.ErrCodeSnapshotNotFound) {
		t.Errorf("expected SNAPSHOT_NOT_FOUND, got %v", err)
	}

	err = runReturn(nil, []string{})
	if !twerrors.Is(err, twerrors.ErrCodeInvalidState) {
		t.Errorf("expected INVALID_STATE, got %v", err)
	}

	id := createTestSnapshot(t, ws, "")
	if err := runTravel(nil, []string{id}); err != nil {
		t.Fatalf("travel command failed: %v", err)
	}
	err = runTravel(nil, []string{id})
	if !twerrors.Is(err, twerrors.ErrCodeInvalidState) {
		t.Errorf("expected INVALID_STATE on second travel, got %v", err)
	}
}

// writeIntent leaves the intent record an interrupted travel would.
func writeIntent(t *testing.T, root string, in travel.Intent) {
	t.Helper()

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal intent: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".timewarp", "intent.json"), data, 0o644); err != nil {
		t.Fatalf("failed to write intent: %v", err)
	}
}

func TestRecoverInterruptedTravel(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()
	resetTravelFlags()

	id := createTestSnapshot(t, ws, "")

	// Simulate a crash right after the live tree was moved aside
	backup := filepath.Join(ws.Path, ".timewarp", "present_backup", "b_20250101_000000_zzzzzz")
	if err := os.MkdirAll(filepath.Join(backup, "workspace"), 0o755); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := os.Rename(filepath.Join(ws.Path, "main.go"), filepath.Join(backup, "workspace", "main.go")); err != nil {
		t.Fatalf("failed to move main.go: %v", err)
	}
	writeIntent(t, ws.Path, travel.Intent{
		Op:         travel.OpTravel,
		Phase:      travel.PhaseBackup,
		SnapshotID: &id,
		BackupPath: backup,
		StartedAt:  models.Timestamp(time.Now()),
	})

	buf := captureOutput(t)

	// Travel is refused until recovery ran
	err := runTravel(nil, []string{id})
	if !twerrors.Is(err, twerrors.ErrCodeRecoveryPending) {
		t.Errorf("expected RECOVERY_PENDING, got %v", err)
	}

	if err := runStatus(nil, []string{}); err != nil {
		t.Fatalf("status command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Interrupted travel (phase backup)") {
		t.Errorf("expected pending intent in status, got:\n%s", buf.String())
	}

	buf.Reset()
	if err := runRecover(nil, []string{}); err != nil {
		t.Fatalf("recover command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Rolled back interrupted travel to "+id) {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if got := ws.ReadFile("main.go"); got != "package main\n" {
		t.Errorf("expected main.go moved back, got %q", got)
	}
	if ws.Exists(".timewarp/intent.json") {
		t.Error("intent should be cleared after recovery")
	}

	buf.Reset()
	if err := runRecover(nil, []string{}); err != nil {
		t.Fatalf("recover command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Nothing to recover") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestStatusJSON(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()
	resetTravelFlags()

	id := createTestSnapshot(t, ws, "")
	buf := captureOutput(t)

	statusJSON = true
	defer resetTravelFlags()

	if err := runStatus(nil, []string{}); err != nil {
		t.Fatalf("status command failed: %v", err)
	}

	var status struct {
		State  models.State   `json:"state"`
		Intent *travel.Intent `json:"intent"`
	}
	if err := json.Unmarshal(buf.Bytes(), &status); err != nil {
		t.Fatalf("failed to parse status: %v\n%s", err, buf.String())
	}
	if status.State.Mode != models.ModePresent || models.Deref(status.State.SessionSnapshotID) != id {
		t.Errorf("unexpected state: %+v", status.State)
	}
	if status.Intent != nil {
		t.Errorf("expected no intent, got %+v", status.Intent)
	}
}

func TestStatusToon(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()
	resetTravelFlags()

	createTestSnapshot(t, ws, "")
	buf := captureOutput(t)

	statusToon = true
	defer resetTravelFlags()

	if err := runStatus(nil, []string{}); err != nil {
		t.Fatalf("status command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "present") {
		t.Errorf("expected mode in Toon output, got:\n%s", buf.String())
	}
}
