package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_ReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0644))

	content, err := NewOSFileSystem().ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(content))
}

func TestOSFileSystem_ReadFile_Nonexistent(t *testing.T) {
	_, err := NewOSFileSystem().ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOSFileSystem_Stat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	info, err := NewOSFileSystem().Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "report.csv", info.Name())
	assert.Equal(t, int64(3), info.Size())

	info, err = NewOSFileSystem().Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
