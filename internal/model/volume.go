package model

import (
	"os"
	"path/filepath"
)

// Volume describes the space on the filesystem holding a path
type Volume struct {
	Path       string // the existing directory that was measured
	TotalBytes int64
	FreeBytes  int64
}

// UsedBytes returns bytes used on this volume
func (v Volume) UsedBytes() int64 {
	return v.TotalBytes - v.FreeBytes
}

// UsedPercent returns percentage of the volume used
func (v Volume) UsedPercent() float64 {
	if v.TotalBytes == 0 {
		return 0
	}
	return float64(v.UsedBytes()) / float64(v.TotalBytes) * 100
}

// Fits reports whether size more bytes can be written to the volume
func (v Volume) Fits(size int64) bool {
	return size <= v.FreeBytes
}

// VolumeOf measures the volume holding path. A path that does not exist
// yet is measured through its nearest existing ancestor.
func VolumeOf(path string) (Volume, error) {
	dir, err := existingAncestor(path)
	if err != nil {
		return Volume{}, err
	}
	total, free, err := diskSpace(dir)
	if err != nil {
		return Volume{}, err
	}
	return Volume{Path: dir, TotalBytes: total, FreeBytes: free}, nil
}

func existingAncestor(path string) (string, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &os.PathError{Op: "statfs", Path: path, Err: os.ErrNotExist}
		}
		dir = parent
	}
}
