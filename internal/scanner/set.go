package scanner

import (
	"sync"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

// DifferenceSet collects missing entries from concurrent workers.
// Entries are deduplicated by SourcePath.
type DifferenceSet struct {
	mu      sync.Mutex
	entries []model.MissingEntry
	seen    map[string]struct{}
}

// NewDifferenceSet creates an empty set
func NewDifferenceSet() *DifferenceSet {
	return &DifferenceSet{seen: make(map[string]struct{})}
}

// Add appends e unless an entry with the same SourcePath is already present.
// It returns false for duplicates.
func (s *DifferenceSet) Add(e model.MissingEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[e.SourcePath]; ok {
		return false
	}
	s.seen[e.SourcePath] = struct{}{}
	s.entries = append(s.entries, e)
	return true
}

// Len returns the number of collected entries
func (s *DifferenceSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Drain returns the collected entries and resets the set to empty.
// The returned slice is owned by the caller.
func (s *DifferenceSet) Drain() []model.MissingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.entries
	if out == nil {
		out = []model.MissingEntry{}
	}
	s.entries = nil
	s.seen = make(map[string]struct{})
	return out
}
