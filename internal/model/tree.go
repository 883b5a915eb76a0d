package model

import (
	"path/filepath"
	"sort"
	"strings"
)

// PathMapper maps paths below one root to the mirrored location below another
type PathMapper struct {
	from string
	to   string
}

// NewPathMapper creates a mapper from root `from` onto root `to`.
// Both roots are cleaned before use.
func NewPathMapper(from, to string) PathMapper {
	return PathMapper{
		from: filepath.Clean(from),
		to:   filepath.Clean(to),
	}
}

// Map substitutes the target root for the source root prefix of path.
// The boolean is false when path is not below the source root.
func (m PathMapper) Map(path string) (string, bool) {
	rel, err := filepath.Rel(m.from, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return m.to, true
	}
	return filepath.Join(m.to, rel), true
}

// Entry builds a MissingEntry for a file below the source root
func (m PathMapper) Entry(f File) (MissingEntry, bool) {
	target, ok := m.Map(f.Path)
	if !ok {
		return MissingEntry{}, false
	}
	return MissingEntry{
		SourcePath: f.Path,
		TargetPath: target,
		Size:       f.Size,
	}, true
}

// SortEntries sorts entries by source path ascending
func SortEntries(entries []MissingEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SourcePath < entries[j].SourcePath
	})
}

// TotalSize returns the summed size of all entries
func TotalSize(entries []MissingEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}
