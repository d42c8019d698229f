package generator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sys", "bindings.go")

	require.NoError(t, WriteFile(path, []byte("package sys\n")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package sys\n", string(got))

	require.NoError(t, WriteFile(path, []byte("package sys // v2\n")))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package sys // v2\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteFileUnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.go")
	require.NoError(t, os.WriteFile(path, []byte("package sys\n"), 0o600))
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	require.NoError(t, WriteFile(path, []byte("package sys\n")))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm(), "identical content is still replaced")
	assert.False(t, fi.ModTime().Equal(old))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package sys\n", string(got))
}

func TestWriteFileFailureLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	// A directory in the way makes the final rename fail.
	path := filepath.Join(dir, "bindings.go")
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0o644))

	err := WriteFile(path, []byte("package sys\n"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())
	kept, err := os.ReadFile(filepath.Join(path, "keep"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(kept))
}
