package report

import "github.com/lumipallolabs/folderdiff/internal/model"

// Changes is the difference between two reports of the same roots
type Changes struct {
	// Added entries are missing now but were not before
	Added []model.MissingEntry
	// Resolved entries were missing before and are not any more
	Resolved []model.MissingEntry
}

// Empty reports whether nothing changed
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Resolved) == 0
}

// Compare returns what changed from previous to current. A nil previous
// makes every current entry new.
func Compare(previous, current *Report) Changes {
	var changes Changes
	if current == nil {
		return changes
	}
	if previous == nil {
		changes.Added = append(changes.Added, current.Entries...)
		return changes
	}

	prevMap := make(map[string]model.MissingEntry, len(previous.Entries))
	for _, e := range previous.Entries {
		prevMap[e.SourcePath] = e
	}

	for _, e := range current.Entries {
		prev, ok := prevMap[e.SourcePath]
		if !ok || prev.Size != e.Size {
			changes.Added = append(changes.Added, e)
		}
		delete(prevMap, e.SourcePath)
	}
	for _, e := range prevMap {
		changes.Resolved = append(changes.Resolved, e)
	}

	model.SortEntries(changes.Added)
	model.SortEntries(changes.Resolved)
	return changes
}
