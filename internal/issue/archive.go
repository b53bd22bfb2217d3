package issue

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/pders01/timewarp/internal/models"
)

// ArchiveResult describes what Archive bundled.
type ArchiveResult struct {
	IssueID         string `json:"issue_id"`
	SnapshotID      string `json:"snapshot_id,omitempty"`
	SnapshotMissing bool   `json:"snapshot_missing,omitempty"`
	Entries         int    `json:"entries"`
}

// Archive writes a tar.gz bundle of the issue directory and the snapshot it
// is pinned to. Entries are stored under issues/<id>/ and snapshots/<id>/.
func (s *Store) Archive(issueID string, w io.Writer) (ArchiveResult, error) {
	detail, err := s.Get(issueID)
	if err != nil {
		return ArchiveResult{}, err
	}
	id := filepath.Base(detail.Paths.IssueDir)
	res := ArchiveResult{IssueID: id}

	gzWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzWriter)

	n, err := s.addTree(tarWriter, detail.Paths.IssueDir, path.Join("issues", id))
	if err != nil {
		return res, fmt.Errorf("archive issue %s: %w", id, err)
	}
	res.Entries += n

	if sid := models.Deref(detail.SnapshotID); sid != "" {
		res.SnapshotID = sid
		snapDir := s.paths.SnapshotDir(sid)
		if ok, _ := afero.DirExists(s.writer.Fs(), snapDir); ok && filepath.Base(snapDir) == sid {
			n, err := s.addTree(tarWriter, snapDir, path.Join("snapshots", sid))
			if err != nil {
				return res, fmt.Errorf("archive snapshot %s: %w", sid, err)
			}
			res.Entries += n
		} else {
			res.SnapshotMissing = true
			s.log.WithField("snapshot_id", sid).Warn("pinned snapshot missing, archiving issue only")
		}
	}

	if err := tarWriter.Close(); err != nil {
		return res, err
	}
	if err := gzWriter.Close(); err != nil {
		return res, err
	}
	return res, nil
}

// addTree streams every entry under root into tw with the given name prefix.
// Symlinks are stored as links.
func (s *Store) addTree(tw *tar.Writer, root, prefix string) (int, error) {
	fs := s.writer.Fs()
	count := 0
	err := afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			lr, ok := fs.(afero.LinkReader)
			if !ok {
				return fmt.Errorf("cannot read symlink %s on this filesystem", p)
			}
			if link, err = lr.ReadlinkIfPossible(p); err != nil {
				return err
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = path.Join(prefix, filepath.ToSlash(rel))
		if info.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		count++

		if !info.Mode().IsRegular() {
			return nil
		}
		file, err := fs.Open(p)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
	return count, err
}
