package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "none", "stats.json"))
	require.NoError(t, m.Load())
	assert.Equal(t, Stats{}, m.Snapshot())
}

func TestAddReplicatedAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "stats.json")
	m := NewManagerAt(path)
	require.NoError(t, m.Load())

	m.AddReplicated(3, 300, "ftp://bob@host/backup")
	m.AddReplicated(2, 20, "")
	require.NoError(t, m.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"replicated_files":5,"replicated_bytes":320,"last_remote":"ftp://bob@host/backup"}`, string(data))

	reloaded := NewManagerAt(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "ftp://bob@host/backup", reloaded.LastRemote())
	assert.Equal(t, int64(5), reloaded.Snapshot().ReplicatedFiles)
}

func TestCloseWithoutChangesWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	m := NewManagerAt(path)
	require.NoError(t, m.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	homedir.DisableCache = true
	defer func() {
		homedir.DisableCache = false
		homedir.Reset()
	}()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".folderdiff", "stats.json"), defaultPath())
}
