// Package fsutil holds the filesystem primitives timewarp builds on: atomic
// record writes and tree copy, move, restore and clear operations.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pders01/timewarp/internal/exclude"
	"github.com/pders01/timewarp/internal/paths"
)

// CopyTree recursively copies srcRoot into dstRoot, skipping entries the
// filter excludes. Symlinks are recreated rather than followed, regular
// files keep their permission bits, and directories keep theirs with the
// owner bits forced to rwx so the copy can be filled and later removed. The
// first error aborts the copy and any partial destination is left in place.
func CopyTree(srcRoot, dstRoot string, filter *exclude.Filter) error {
	if err := os.MkdirAll(dstRoot, 0o755); err != nil {
		return err
	}
	var dirs []dirMode
	err := filepath.WalkDir(srcRoot, func(src string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcRoot, src)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if filter.Match(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dst := filepath.Join(dstRoot, rel)
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			return CopySymlink(src, dst)
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			dirs = append(dirs, dirMode{path: dst, perm: info.Mode().Perm() | 0o700})
			return os.MkdirAll(dst, 0o755)
		case d.Type().IsRegular():
			return CopyFile(src, dst)
		default:
			// sockets, devices and pipes are not part of a workspace snapshot
			return nil
		}
	})
	if err != nil {
		return err
	}
	for _, dm := range dirs {
		if err := os.Chmod(dm.path, dm.perm); err != nil {
			return err
		}
	}
	return nil
}

type dirMode struct {
	path string
	perm fs.FileMode
}

// CopySymlink recreates the link at src as dst. An existing entry at dst is
// removed first rather than followed.
func CopySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	_ = os.Remove(dst)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

// CopyFile byte-copies a regular file and gives dst the mode of src.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if existing, err := os.Lstat(dst); err == nil && !existing.IsDir() {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode())
}

// MoveContents renames every top-level entry of src, except the control
// directory, into dst. On one filesystem each entry moves in O(1).
func MoveContents(src, dst string) error {
	return moveContents(src, dst, false)
}

// MoveContentsReplacing is MoveContents, but an entry already present at the
// destination is removed before the rename.
func MoveContentsReplacing(src, dst string) error {
	return moveContents(src, dst, true)
}

func moveContents(src, dst string, replace bool) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		if ent.Name() == paths.ControlDir {
			continue
		}
		target := filepath.Join(dst, ent.Name())
		if replace {
			if err := os.RemoveAll(target); err != nil {
				return err
			}
		}
		if err := os.Rename(filepath.Join(src, ent.Name()), target); err != nil {
			return err
		}
	}
	return nil
}

// RestoreFromDir copies each top-level entry of srcDir into root, leaving
// srcDir intact.
func RestoreFromDir(srcDir, root string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		src := filepath.Join(srcDir, ent.Name())
		dst := filepath.Join(root, ent.Name())
		switch {
		case ent.Type()&fs.ModeSymlink != 0:
			err = CopySymlink(src, dst)
		case ent.IsDir():
			err = CopyTree(src, dst, nil)
		case ent.Type().IsRegular():
			err = CopyFile(src, dst)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ClearWorkspace removes every top-level entry of root except the control
// directory.
func ClearWorkspace(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		if ent.Name() == paths.ControlDir {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, ent.Name())); err != nil {
			return err
		}
	}
	return nil
}

// IsEmptyDir reports whether dir exists and has no entries.
func IsEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) == 0
}

// DirExists reports whether path is an existing directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
