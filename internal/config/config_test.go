package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockFs(t *testing.T) {
	oldFs, oldExpand := fs, homedirExpand
	fs = afero.NewMemMapFs()
	homedirExpand = func(path string) (string, error) {
		if len(path) > 0 && path[0] == '~' {
			return "/home/user" + path[1:], nil
		}
		return path, nil
	}
	t.Cleanup(func() {
		fs, homedirExpand = oldFs, oldExpand
	})
}

func TestLoadMissingFile(t *testing.T) {
	mockFs(t)
	t.Setenv(PasswordEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.Remote.Configured())
}

func TestLoad(t *testing.T) {
	mockFs(t)
	t.Setenv(PasswordEnv, "")

	require.NoError(t, afero.WriteFile(fs, "/home/user/.folderdiff.yaml", []byte(`
scan:
  workers: 4
  compare: name
  oneFileSystem: true
remote:
  url: sftp://backup.local/srv/mirror
  user: alice
  password: hunter2
  workers: 3
`), 0644))

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)

	assert.Equal(t, Scan{Workers: 4, Compare: "name", OneFileSystem: true}, cfg.Scan)
	assert.Equal(t, 3, cfg.Remote.Workers)
	assert.True(t, cfg.Remote.Configured())

	ep, err := cfg.Remote.Endpoint()
	require.NoError(t, err)
	assert.Equal(t, "sftp", ep.Scheme)
	assert.Equal(t, "alice", ep.User)
	assert.Equal(t, "hunter2", ep.Password)
	assert.Equal(t, "/srv/mirror", ep.Path)
}

func TestLoadPasswordFromEnv(t *testing.T) {
	mockFs(t)
	t.Setenv(PasswordEnv, "from-env")

	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml",
		[]byte("remote:\n  url: ftp://host/\n  password: from-file\n  workers: 0\n"), 0644))

	cfg, err := Load("/cfg.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Remote.Password)
	assert.Equal(t, 1, cfg.Remote.Workers)
	assert.Equal(t, "name-size", cfg.Scan.Compare)

	raw, err := Read("/cfg.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from-file", raw.Remote.Password)
	assert.Equal(t, 1, raw.Remote.Workers)
}

func TestLoadInvalid(t *testing.T) {
	mockFs(t)
	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("scan: [1, 2"), 0644))

	_, err := Load("/bad.yaml")
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	mockFs(t)
	t.Setenv(PasswordEnv, "")

	cfg := Default()
	cfg.Remote.URL = "file:///mnt/mirror"
	require.NoError(t, Write("~/.folderdiff.yaml", cfg))

	loaded, err := Load("~/.folderdiff.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEndpointInvalidURL(t *testing.T) {
	_, err := Remote{URL: "gopher://x"}.Endpoint()
	assert.Error(t, err)
}
