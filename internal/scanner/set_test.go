package scanner

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

func TestDifferenceSetConcurrentAdd(t *testing.T) {
	set := NewDifferenceSet()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// every worker adds the same 100 paths
			for i := 0; i < 100; i++ {
				set.Add(model.MissingEntry{SourcePath: fmt.Sprintf("/src/%d", i)})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, set.Len())

	drained := set.Drain()
	assert.Len(t, drained, 100)
	assert.Zero(t, set.Len())
	assert.Empty(t, set.Drain())

	// the seen-set is reset too
	assert.True(t, set.Add(model.MissingEntry{SourcePath: "/src/1"}))
}

func TestDifferenceSetRejectsDuplicates(t *testing.T) {
	set := NewDifferenceSet()
	assert.True(t, set.Add(model.MissingEntry{SourcePath: "/a", TargetPath: "/b"}))
	assert.False(t, set.Add(model.MissingEntry{SourcePath: "/a", TargetPath: "/c"}))
	assert.Equal(t, []model.MissingEntry{{SourcePath: "/a", TargetPath: "/b"}}, set.Drain())
}

func TestProgressCounter(t *testing.T) {
	var mu sync.Mutex
	var calls []Progress
	p := NewProgressCounter(3, func(pr Progress) {
		mu.Lock()
		calls = append(calls, pr)
		mu.Unlock()
	})

	p.Inc()
	p.Inc()

	assert.Equal(t, Progress{Processed: 2, Total: 3}, p.Snapshot())
	assert.Equal(t, []Progress{{1, 3}, {2, 3}}, calls)
	assert.InDelta(t, 0.666, p.Snapshot().Percent(), 0.01)
	assert.Zero(t, Progress{}.Percent())
}

func TestParseComparator(t *testing.T) {
	c, err := ParseComparator("")
	assert.NoError(t, err)
	assert.Equal(t, NameAndSize{}, c)

	c, err = ParseComparator("name")
	assert.NoError(t, err)
	assert.Equal(t, NameOnly{}, c)

	_, err = ParseComparator("hash")
	assert.Error(t, err)
}

func TestFileIndexFirstCandidateWins(t *testing.T) {
	idx := newFileIndex([]model.File{
		{Name: "a", Size: 1},
		{Name: "a", Size: 2},
	}, NameAndSize{})

	assert.True(t, idx.contains(model.File{Name: "a", Size: 2}, NameAndSize{}))
	assert.False(t, idx.contains(model.File{Name: "a", Size: 3}, NameAndSize{}))
	assert.False(t, idx.contains(model.File{Name: "b", Size: 1}, NameAndSize{}))
}
