// Package lock provides the per-workspace lease that serializes every
// mutating timewarp operation.
package lock

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/pders01/timewarp/internal/errors"
)

// Lease is an acquired advisory lock on a workspace's lock file.
//
// A Lease is not safe for concurrent use. Each process takes at most one
// lease per workspace; nested acquisition from the same process fails with
// WORKSPACE_LOCKED because flock(2) locks are per open file description.
type Lease struct {
	path  string
	file  *os.File
	token string
}

// Acquire takes an exclusive non-blocking lock on path, creating the file
// and its directory if needed. The lock file is stamped with a fresh token,
// the pid and the acquisition time.
func Acquire(path string) (*Lease, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeIOFailure, "failed to create lock directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeIOFailure, "failed to open lock file")
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if stderrors.Is(err, unix.EWOULDBLOCK) {
			return nil, errors.WorkspaceLocked(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeIOFailure, "flock failed")
	}

	l := &Lease{path: path, file: file, token: uuid.NewString()}

	// the stamp is informational; a failed write does not void the lock
	_ = file.Truncate(0)
	_, _ = file.Seek(0, 0)
	_, _ = fmt.Fprintf(file, "token=%s\npid=%d\ntime=%s\n", l.token, os.Getpid(), time.Now().UTC().Format(time.RFC3339))

	return l, nil
}

// Token identifies this lease. It is recorded in state.json while a travel
// holds the workspace in the past.
func (l *Lease) Token() string {
	if l == nil {
		return ""
	}
	return l.token
}

// Path returns the lock file path.
func (l *Lease) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. It is safe to call on a nil or released lease.
// The lock file itself is kept so that every process locks the same inode.
func (l *Lease) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	return err
}

// Holder returns the token recorded by the last lease taken on path, or ""
// when none was recorded.
func Holder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if v, ok := strings.CutPrefix(line, "token="); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
