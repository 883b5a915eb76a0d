package fsys

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

func memTree(t *testing.T, files map[string]string) afero.Fs {
	fs := afero.NewMemMapFs()
	for path, contents := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0644))
	}
	return fs
}

func TestStat(t *testing.T) {
	fs := memTree(t, map[string]string{"/root/file.txt": "hello"})
	e := New(fs)

	assert.NoError(t, e.Stat("/root"))

	var invalid *InvalidPathError
	err := e.Stat("/missing")
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "/missing", invalid.Path)
	assert.Equal(t, "does not exist", invalid.Reason)

	err = e.Stat("/root/file.txt")
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "not a directory", invalid.Reason)
}

func TestListDirsAndFiles(t *testing.T) {
	fs := memTree(t, map[string]string{
		"/root/a.txt":       "12345",
		"/root/b.txt":       "1",
		"/root/sub/c.txt":   "abc",
		"/root/other/d.txt": "",
	})
	e := New(fs)

	dirs, err := e.ListDirs("/root")
	require.NoError(t, err)
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	assert.Equal(t, []model.Dir{
		{Name: "other", Path: filepath.Join("/root", "other")},
		{Name: "sub", Path: filepath.Join("/root", "sub")},
	}, dirs)

	files, err := e.ListFiles("/root")
	require.NoError(t, err)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	assert.Equal(t, []model.File{
		{Name: "a.txt", Size: 5, Path: filepath.Join("/root", "a.txt")},
		{Name: "b.txt", Size: 1, Path: filepath.Join("/root", "b.txt")},
	}, files)
}

func TestListMissingDir(t *testing.T) {
	e := New(afero.NewMemMapFs())

	_, err := e.ListFiles("/gone")
	var invalid *InvalidPathError
	assert.True(t, errors.As(err, &invalid))
}

func TestOSCountFiles(t *testing.T) {
	tmp := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "subdir", "deeper"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "file1.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "subdir", "file2.txt"), []byte("world!"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "subdir", "deeper", "file3.txt"), []byte("!"), 0644))

	e := NewOS(OSOptions{OneFileSystem: true, Workers: 2})
	count, err := e.CountFiles(context.Background(), tmp)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	dirs, err := e.ListDirs(tmp)
	require.NoError(t, err)
	assert.Equal(t, []model.Dir{{Name: "subdir", Path: filepath.Join(tmp, "subdir")}}, dirs)
}

func TestOSCountFilesCancelled(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "file1.txt"), []byte("hello"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count, err := NewOS(OSOptions{}).CountFiles(ctx, tmp)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, count)
}
