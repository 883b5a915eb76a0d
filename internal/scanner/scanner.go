// Package scanner implements the concurrent tree differ.
//
// A Differ walks a master tree and a slave tree in lockstep on a bounded
// worker pool and reports every master file that has no qualifying
// counterpart at the mirrored location in the slave tree.
package scanner

import (
	"fmt"

	"github.com/lumipallolabs/folderdiff/internal/fsys"
)

// Progress reports scanning progress
type Progress struct {
	Processed int64
	Total     int64
}

// Percent returns processed/total in the range 0..1
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	pct := float64(p.Processed) / float64(p.Total)
	if pct > 1 {
		return 1
	}
	return pct
}

// Direction selects which tree is the master of a scan
type Direction int

const (
	// MissingInTarget uses the source tree as master
	MissingInTarget Direction = iota
	// MissingInSource uses the target tree as master
	MissingInSource
)

// String returns a human-readable direction name
func (d Direction) String() string {
	switch d {
	case MissingInTarget:
		return "missing-in-target"
	case MissingInSource:
		return "missing-in-source"
	default:
		return "unknown"
	}
}

// InvalidPathError is returned when a root is missing or not a directory
type InvalidPathError = fsys.InvalidPathError

// ScanError aborts a scan. No partial results accompany it.
type ScanError struct {
	Op   string // what was being done, e.g. "list files"
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan failed: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
