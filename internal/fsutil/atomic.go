package fsutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const tmpSuffix = ".tmp"

// Writer performs write-then-rename file updates so that readers never see
// a partially written file.
type Writer struct {
	fs afero.Fs
}

// NewWriter returns a Writer over fs. A nil fs means the OS filesystem.
func NewWriter(fs afero.Fs) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs}
}

// Fs returns the underlying filesystem.
func (w *Writer) Fs() afero.Fs {
	return w.fs
}

// WriteFile writes data to a sibling temp file and renames it over path.
func (w *Writer) WriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + tmpSuffix
	if err := afero.WriteFile(w.fs, tmp, data, perm); err != nil {
		_ = w.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := w.fs.Rename(tmp, path); err != nil {
		_ = w.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON followed by a newline.
func (w *Writer) WriteJSON(path string, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return w.WriteFile(path, data, 0o644)
}

// MarshalJSON renders v the way every record in the control directory is
// stored: two-space indentation and a trailing newline.
func MarshalJSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(data, '\n'), nil
}

// Batch is an all-or-nothing group of files written into one directory.
type Batch struct {
	w     *Writer
	dir   string
	files []pendingFile
}

type pendingFile struct {
	name string
	data []byte
}

// Batch starts a multi-file transaction rooted at dir.
func (w *Writer) Batch(dir string) *Batch {
	return &Batch{w: w, dir: dir}
}

// Add queues a file named name with the given content.
func (b *Batch) Add(name string, data []byte) {
	b.files = append(b.files, pendingFile{name: name, data: data})
}

// AddJSON queues v rendered with MarshalJSON.
func (b *Batch) AddJSON(name string, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	b.Add(name, data)
	return nil
}

// Commit writes every queued file to its temp path, then renames them all
// into place. If any step fails, every temp and already-renamed file is
// removed, the directory is removed when left empty, and the original error
// is returned.
func (b *Batch) Commit() error {
	var written, renamed []string

	rollback := func() {
		for _, p := range written {
			_ = b.w.fs.Remove(p)
		}
		for _, p := range renamed {
			_ = b.w.fs.Remove(p)
		}
		removeIfEmpty(b.w.fs, b.dir)
	}

	for _, f := range b.files {
		tmp := filepath.Join(b.dir, f.name) + tmpSuffix
		written = append(written, tmp)
		if err := afero.WriteFile(b.w.fs, tmp, f.data, 0o644); err != nil {
			rollback()
			return fmt.Errorf("write %s: %w", tmp, err)
		}
	}

	for _, f := range b.files {
		final := filepath.Join(b.dir, f.name)
		tmp := final + tmpSuffix
		if err := b.w.fs.Rename(tmp, final); err != nil {
			rollback()
			return fmt.Errorf("rename %s: %w", tmp, err)
		}
		renamed = append(renamed, final)
	}
	return nil
}

func removeIfEmpty(fs afero.Fs, dir string) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil || len(entries) > 0 {
		return
	}
	_ = fs.Remove(dir)
}
