package fsutil

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/timewarp/internal/testutil"
)

func TestWriteJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs)
	require.NoError(t, fs.MkdirAll("/ctl", 0o755))

	require.NoError(t, w.WriteJSON("/ctl/state.json", map[string]string{"mode": "present"}))

	data, err := afero.ReadFile(fs, "/ctl/state.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"mode\": \"present\"\n}\n", string(data))

	exists, err := afero.Exists(fs, "/ctl/state.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file must not survive a successful write")
}

func TestWriteFileFailureKeepsPreviousContent(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/state.json", []byte("old"), 0o644))

	w := NewWriter(&testutil.FailingFs{Fs: base, FailRenameSuffix: "state.json"})
	err := w.WriteFile("/state.json", []byte("new"), 0o644)
	require.Error(t, err)
	assert.True(t, errors.Is(err, testutil.ErrInjected))

	data, err := afero.ReadFile(base, "/state.json")
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	exists, _ := afero.Exists(base, "/state.json.tmp")
	assert.False(t, exists)
}

func TestBatchCommit(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/issues/i_1"
	require.NoError(t, fs.MkdirAll(dir, 0o755))

	b := NewWriter(fs).Batch(dir)
	require.NoError(t, b.AddJSON("issue.json", map[string]string{"issue_id": "i_1"}))
	b.Add("chat.md", []byte("chat\n"))
	b.Add("experiment.md", []byte("exp\n"))
	require.NoError(t, b.Commit())

	for _, name := range []string{"issue.json", "chat.md", "experiment.md"} {
		exists, err := afero.Exists(fs, filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, exists, name)

		tmpExists, _ := afero.Exists(fs, filepath.Join(dir, name+".tmp"))
		assert.False(t, tmpExists, name+".tmp")
	}
}

func TestBatchWriteFailureLeavesNothing(t *testing.T) {
	base := afero.NewMemMapFs()
	dir := "/issues/i_1"
	require.NoError(t, base.MkdirAll(dir, 0o755))

	fs := &testutil.FailingFs{Fs: base, FailWriteSuffix: "experiment.md.tmp"}
	b := NewWriter(fs).Batch(dir)
	b.Add("issue.json", []byte("{}\n"))
	b.Add("chat.md", []byte("chat\n"))
	b.Add("experiment.md", []byte("exp\n"))

	err := b.Commit()
	require.Error(t, err)
	assert.True(t, errors.Is(err, testutil.ErrInjected))

	exists, err := afero.DirExists(base, dir)
	require.NoError(t, err)
	assert.False(t, exists, "empty issue directory must be removed")
}

func TestBatchRenameFailureRollsBackRenamedFiles(t *testing.T) {
	base := afero.NewMemMapFs()
	dir := "/issues/i_2"
	require.NoError(t, base.MkdirAll(dir, 0o755))

	fs := &testutil.FailingFs{Fs: base, FailRenameSuffix: "chat.md"}
	b := NewWriter(fs).Batch(dir)
	b.Add("issue.json", []byte("{}\n"))
	b.Add("chat.md", []byte("chat\n"))

	require.Error(t, b.Commit())

	exists, _ := afero.Exists(base, filepath.Join(dir, "issue.json"))
	assert.False(t, exists, "issue.json must not dangle without its companions")
	dirExists, _ := afero.DirExists(base, dir)
	assert.False(t, dirExists)
}

func TestBatchKeepsNonEmptyDirectory(t *testing.T) {
	base := afero.NewMemMapFs()
	dir := "/issues/i_3"
	require.NoError(t, afero.WriteFile(base, filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	fs := &testutil.FailingFs{Fs: base, FailWriteSuffix: "issue.json.tmp"}
	b := NewWriter(fs).Batch(dir)
	b.Add("issue.json", []byte("{}\n"))

	require.Error(t, b.Commit())
	dirExists, _ := afero.DirExists(base, dir)
	assert.True(t, dirExists)
}
