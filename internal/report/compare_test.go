package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

func TestCompare(t *testing.T) {
	prev := &Report{Entries: []model.MissingEntry{
		{SourcePath: "/s/old", Size: 100},
		{SourcePath: "/s/same", Size: 200},
		{SourcePath: "/s/grew", Size: 5},
	}}
	curr := &Report{Entries: []model.MissingEntry{
		{SourcePath: "/s/same", Size: 200},
		{SourcePath: "/s/new", Size: 300},
		{SourcePath: "/s/grew", Size: 50},
	}}

	changes := Compare(prev, curr)

	assert.Equal(t, []model.MissingEntry{
		{SourcePath: "/s/grew", Size: 50},
		{SourcePath: "/s/new", Size: 300},
	}, changes.Added)
	assert.Equal(t, []model.MissingEntry{{SourcePath: "/s/old", Size: 100}}, changes.Resolved)
	assert.False(t, changes.Empty())
}

func TestCompareNoPrevious(t *testing.T) {
	curr := &Report{Entries: []model.MissingEntry{{SourcePath: "/x"}}}
	changes := Compare(nil, curr)
	assert.Len(t, changes.Added, 1)
	assert.Empty(t, changes.Resolved)

	assert.True(t, Compare(curr, curr).Empty())
}
