package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeUsage(t *testing.T) {
	v := Volume{TotalBytes: 1000, FreeBytes: 250}
	assert.Equal(t, int64(750), v.UsedBytes())
	assert.InDelta(t, 75.0, v.UsedPercent(), 0.001)
	assert.True(t, v.Fits(250))
	assert.False(t, v.Fits(251))

	assert.Zero(t, Volume{}.UsedPercent())
}

func TestVolumeOf(t *testing.T) {
	tmp := t.TempDir()

	v, err := VolumeOf(tmp)
	require.NoError(t, err)
	assert.Equal(t, tmp, v.Path)
	assert.Positive(t, v.TotalBytes)
	assert.LessOrEqual(t, v.FreeBytes, v.TotalBytes)
}

func TestVolumeOfMissingPath(t *testing.T) {
	tmp := t.TempDir()

	v, err := VolumeOf(filepath.Join(tmp, "not", "yet", "there"))
	require.NoError(t, err)
	assert.Equal(t, tmp, v.Path)
}
