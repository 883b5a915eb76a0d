package scanner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunPoolVisitsEveryTask(t *testing.T) {
	var visited atomic.Int64

	// a binary tree of depth 10 expressed through pushes
	seed := []task{{kind: taskCount, master: ""}}
	err := runPool(context.Background(), 4, seed, func(_ context.Context, tk task, push func(task)) error {
		visited.Add(1)
		if len(tk.master) < 10 {
			push(task{kind: taskCount, master: tk.master + "l"})
			push(task{kind: taskCount, master: tk.master + "r"})
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1<<11-1), visited.Load())
}

func TestRunPoolStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	seed := []task{{master: "root"}}
	err := runPool(context.Background(), 2, seed, func(_ context.Context, tk task, push func(task)) error {
		if tk.master == "root" {
			for i := 0; i < 100; i++ {
				push(task{master: "child"})
			}
			return boom
		}
		return nil
	})

	assert.Equal(t, boom, err)
}

func TestRunPoolEmptySeed(t *testing.T) {
	err := runPool(context.Background(), 2, nil, func(context.Context, task, func(task)) error {
		t.Fatal("should not be called")
		return nil
	})
	assert.NoError(t, err)
}
