package scanner

import (
	"context"
	"sync"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

type taskKind int

const (
	taskCompare taskKind = iota // compare master dir against slave dir
	taskCollect                 // master dir has no counterpart, take everything
	taskFiles                   // batch of master files from one directory
	taskCount                   // count files below master
)

// task is one unit of work for the pool
type task struct {
	kind   taskKind
	master string
	slave  string
	files  []model.File
	index  fileIndex
}

// workQueue is an unbounded LIFO queue that knows when all work is done.
// pending counts queued plus running tasks, so it only reaches zero once no
// task can push more work.
type workQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []task
	pending int
	closed  bool
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *workQueue) push(t task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, t)
	q.pending++
	q.cond.Signal()
}

func (q *workQueue) pop() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return task{}, false
	}

	// LIFO keeps the walk depth-first, which bounds the queue length
	last := len(q.items) - 1
	t := q.items[last]
	q.items[last] = task{}
	q.items = q.items[:last]
	return t, true
}

// done marks a popped task as finished
func (q *workQueue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending--
	if q.pending == 0 {
		q.closed = true
		q.cond.Broadcast()
	}
}

// abort drops queued work and releases all workers
func (q *workQueue) abort() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}

// processFunc handles one task and may push follow-up tasks
type processFunc func(ctx context.Context, t task, push func(task)) error

// runPool processes seed and everything it pushes on `workers` goroutines.
// The first error aborts the run and is returned.
func runPool(ctx context.Context, workers int, seed []task, process processFunc) error {
	if len(seed) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	q := newWorkQueue()
	for _, t := range seed {
		q.push(t)
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			q.abort()
		})
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				t, ok := q.pop()
				if !ok {
					return
				}
				if err := ctx.Err(); err != nil {
					fail(err)
				} else if err := process(ctx, t, q.push); err != nil {
					fail(err)
				}
				q.done()
			}
		}()
	}

	wg.Wait()
	return firstErr
}
