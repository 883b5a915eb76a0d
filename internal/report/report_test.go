package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/folderdiff/internal/model"
	"github.com/lumipallolabs/folderdiff/internal/scanner"
)

func sampleReport(created time.Time) *Report {
	return &Report{
		Source:    "/data/photos",
		Target:    "/backup/photos",
		Direction: scanner.MissingInTarget,
		Created:   created,
		Entries: []model.MissingEntry{
			{SourcePath: "/data/photos/a.jpg", TargetPath: "/backup/photos/a.jpg", Size: 100},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)
	name := Name("/data/photos", "/backup/photos")

	path, err := s.Save(name, sampleReport(time.Now()))
	require.NoError(t, err)

	files, _ := filepath.Glob(filepath.Join(tmp, name+"_*.gob.gz"))
	require.Len(t, files, 1)
	assert.Equal(t, files[0], path)

	loaded, err := s.LoadLatest(name)
	require.NoError(t, err)
	assert.Equal(t, "/data/photos", loaded.Source)
	assert.Equal(t, scanner.MissingInTarget, loaded.Direction)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, int64(100), loaded.Entries[0].Size)
}

func TestLoadLatestPicksNewest(t *testing.T) {
	s := NewWithFs(afero.NewMemMapFs(), "/reports")
	name := Name("/a", "/b")

	older := sampleReport(time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local))
	newer := sampleReport(time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local))
	newer.Entries = nil

	_, err := s.Save(name, newer)
	require.NoError(t, err)
	_, err = s.Save(name, older)
	require.NoError(t, err)

	loaded, err := s.LoadLatest(name)
	require.NoError(t, err)
	assert.NotNil(t, loaded.Entries)
	assert.Empty(t, loaded.Entries)

	assert.True(t, loaded.Created.Equal(newer.Created), "got %v", loaded.Created)
}

func TestLoadLatestNoReport(t *testing.T) {
	s := NewWithFs(afero.NewMemMapFs(), "/reports")

	_, err := s.LoadLatest("nothing")
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	a := Name("/data/my_photos", "/backup")
	assert.Equal(t, a, Name("/data/my_photos/", "/backup/."))
	assert.NotEqual(t, a, Name("/backup", "/data/my_photos"))
	assert.NotContains(t, a, "_")
	assert.Regexp(t, `^my-photos-[0-9a-f]{16}$`, a)
}

func TestDefaultDirUnderHome(t *testing.T) {
	home := t.TempDir()
	homedir.DisableCache = true
	defer func() {
		homedir.DisableCache = false
		homedir.Reset()
	}()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".folderdiff", "reports"), DefaultDir())
}
