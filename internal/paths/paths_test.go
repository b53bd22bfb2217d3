package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	root := t.TempDir()
	p := For(root)

	assert.Equal(t, root, p.Root)
	assert.Equal(t, filepath.Join(root, ".timewarp", "state.json"), p.State)
	assert.Equal(t, filepath.Join(root, ".timewarp", "snapshots", "s_1", "workspace"), p.SnapshotTree("s_1"))
	assert.Equal(t, filepath.Join(root, ".timewarp", "issues", "i_1", "issue.json"), p.IssueMeta("i_1"))
	assert.Equal(t, filepath.Join(root, ".timewarp", "present_backup", "b_1", "workspace"), BackupTree(p.BackupDir("b_1")))
}

func TestForMakesRootAbsolute(t *testing.T) {
	p := For(".")
	assert.True(t, filepath.IsAbs(p.Root))
}
