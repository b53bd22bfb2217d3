package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// ErrInjected is returned by FailingFs for the operations it is told to fail.
var ErrInjected = errors.New("injected failure")

// TempWorkspace is a throwaway workspace root for tests
type TempWorkspace struct {
	Path string
	T    *testing.T
}

// NewTempWorkspace creates a new empty workspace directory
func NewTempWorkspace(t *testing.T) *TempWorkspace {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "timewarp-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	// macOS hands out /var paths that resolve to /private/var
	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}

	return &TempWorkspace{
		Path: tmpDir,
		T:    t,
	}
}

// Cleanup removes the temporary workspace
func (w *TempWorkspace) Cleanup() {
	w.T.Helper()
	if err := os.RemoveAll(w.Path); err != nil {
		w.T.Errorf("failed to cleanup temp workspace: %v", err)
	}
}

// CreateFile creates a file in the workspace
func (w *TempWorkspace) CreateFile(name, content string) {
	w.T.Helper()
	w.CreateFileMode(name, content, 0o644)
}

// CreateFileMode creates a file with explicit permission bits
func (w *TempWorkspace) CreateFileMode(name, content string, mode os.FileMode) {
	w.T.Helper()
	path := filepath.Join(w.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		w.T.Fatalf("failed to create file: %v", err)
	}
	if err := os.Chmod(path, mode); err != nil {
		w.T.Fatalf("failed to chmod file: %v", err)
	}
}

// Symlink creates a symbolic link name pointing at target
func (w *TempWorkspace) Symlink(target, name string) {
	w.T.Helper()
	path := filepath.Join(w.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.Symlink(target, path); err != nil {
		w.T.Fatalf("failed to create symlink: %v", err)
	}
}

// ReadFile returns the content of a workspace file
func (w *TempWorkspace) ReadFile(name string) string {
	w.T.Helper()
	data, err := os.ReadFile(filepath.Join(w.Path, name))
	if err != nil {
		w.T.Fatalf("failed to read file: %v", err)
	}
	return string(data)
}

// Exists checks if a path exists without following symlinks
func (w *TempWorkspace) Exists(name string) bool {
	_, err := os.Lstat(filepath.Join(w.Path, name))
	return err == nil
}

// Entry describes one path of a tree listing
type Entry struct {
	Mode    fs.FileMode
	Content string
	Link    string
}

// Tree lists every path under the workspace except the control directory
func (w *TempWorkspace) Tree() map[string]Entry {
	w.T.Helper()
	return ListTree(w.T, w.Path)
}

// ListTree lists every path under root except the control directory,
// keyed by slash-separated relative path.
func ListTree(t *testing.T, root string) map[string]Entry {
	t.Helper()

	out := make(map[string]Entry)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == ".timewarp" || strings.HasPrefix(rel, ".timewarp/") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		e := Entry{Mode: info.Mode()}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			e.Link, err = os.Readlink(path)
		case info.Mode().IsRegular():
			var data []byte
			data, err = os.ReadFile(path)
			e.Content = string(data)
		}
		if err != nil {
			return err
		}
		out[rel] = e
		return nil
	})
	if err != nil {
		t.Fatalf("failed to list tree: %v", err)
	}
	return out
}

// FailingFs wraps an afero.Fs and fails writes or renames whose target path
// ends with the configured suffix.
type FailingFs struct {
	afero.Fs
	FailWriteSuffix  string
	FailRenameSuffix string
}

// OpenFile fails for write-mode opens of matching paths
func (f *FailingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	writing := flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0
	if writing && f.FailWriteSuffix != "" && strings.HasSuffix(name, f.FailWriteSuffix) {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrInjected}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

// Create fails for matching paths
func (f *FailingFs) Create(name string) (afero.File, error) {
	if f.FailWriteSuffix != "" && strings.HasSuffix(name, f.FailWriteSuffix) {
		return nil, &os.PathError{Op: "create", Path: name, Err: ErrInjected}
	}
	return f.Fs.Create(name)
}

// Rename fails when the destination matches
func (f *FailingFs) Rename(oldname, newname string) error {
	if f.FailRenameSuffix != "" && strings.HasSuffix(newname, f.FailRenameSuffix) {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ErrInjected}
	}
	return f.Fs.Rename(oldname, newname)
}
