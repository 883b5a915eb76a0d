package scanner

import (
	"fmt"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

// Comparator decides whether a slave file counts as present for a master file.
type Comparator interface {
	// Key buckets files for lookup. Files that can be Equal must share a key.
	Key(f model.File) string

	// Equal reports whether candidate satisfies master
	Equal(master, candidate model.File) bool
}

// NameAndSize requires the same name and the same size. A file with the
// same name but a different size is treated as out of sync.
type NameAndSize struct{}

// Key implements Comparator
func (NameAndSize) Key(f model.File) string { return f.Name }

// Equal implements Comparator
func (NameAndSize) Equal(master, candidate model.File) bool {
	return master.Name == candidate.Name && master.Size == candidate.Size
}

// NameOnly only requires the same name
type NameOnly struct{}

// Key implements Comparator
func (NameOnly) Key(f model.File) string { return f.Name }

// Equal implements Comparator
func (NameOnly) Equal(master, candidate model.File) bool {
	return master.Name == candidate.Name
}

// ParseComparator maps a configuration value to a Comparator
func ParseComparator(name string) (Comparator, error) {
	switch name {
	case "", "name-size":
		return NameAndSize{}, nil
	case "name":
		return NameOnly{}, nil
	default:
		return nil, fmt.Errorf("unknown comparison %q (want \"name-size\" or \"name\")", name)
	}
}

// fileIndex buckets slave files by comparator key
type fileIndex map[string][]model.File

func newFileIndex(files []model.File, cmp Comparator) fileIndex {
	idx := make(fileIndex, len(files))
	for _, f := range files {
		key := cmp.Key(f)
		idx[key] = append(idx[key], f)
	}
	return idx
}

// contains reports whether any candidate satisfies master
func (idx fileIndex) contains(master model.File, cmp Comparator) bool {
	for _, candidate := range idx[cmp.Key(master)] {
		if cmp.Equal(master, candidate) {
			return true
		}
	}
	return false
}
