package cmd

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	twerrors "github.com/pders01/timewarp/internal/errors"
)

func archiveNames(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to read gzip: %v", err)
	}
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read tar: %v", err)
		}
		names = append(names, hdr.Name)
	}
	return names
}

func TestArchiveIssue(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()

	snapshotID := createTestSnapshot(t, ws, "")
	issueID := reportTestIssue(t, testMessages)

	archiveFile := filepath.Join(t.TempDir(), "issue.tar.gz")
	archiveOutput = archiveFile
	defer func() { archiveOutput = "" }()

	buf := captureOutput(t)
	if err := runArchive(nil, []string{issueID}); err != nil {
		t.Fatalf("archive command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "✓ Archive created") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	names := strings.Join(archiveNames(t, archiveFile), "\n")
	for _, want := range []string{
		"issues/" + issueID + "/issue.json",
		"issues/" + issueID + "/chat.md",
		"snapshots/" + snapshotID + "/snapshot.json",
		"snapshots/" + snapshotID + "/workspace/main.go",
	} {
		if !strings.Contains(names, want) {
			t.Errorf("archive missing %s, got:\n%s", want, names)
		}
	}
}

func TestArchiveUnknownIssue(t *testing.T) {
	ws := setupWorkspace(t)
	defer ws.Cleanup()
	captureOutput(t)

	archiveFile := filepath.Join(t.TempDir(), "missing.tar.gz")
	archiveOutput = archiveFile
	defer func() { archiveOutput = "" }()

	err := runArchive(nil, []string{"i_nope"})
	if !twerrors.Is(err, twerrors.ErrCodeIssueNotFound) {
		t.Errorf("expected ISSUE_NOT_FOUND, got %v", err)
	}
	if _, err := os.Stat(archiveFile); !os.IsNotExist(err) {
		t.Error("partial archive should be removed")
	}
}

func TestArchiveInvalidID(t *testing.T) {
	captureOutput(t)

	err := runArchive(nil, []string{"../etc"})
	if !twerrors.Is(err, twerrors.ErrCodeInvalidIssueID) {
		t.Errorf("expected INVALID_ISSUE_ID, got %v", err)
	}
}
