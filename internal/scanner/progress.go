package scanner

import "sync/atomic"

// ProgressCounter pairs a precomputed total with a live processed count.
// The count only grows; it is shared by every scan of one Differ.
type ProgressCounter struct {
	total     int64
	processed atomic.Int64
	notify    func(Progress)
}

// NewProgressCounter creates a counter. notify may be nil; when set it is
// called from worker goroutines after every increment.
func NewProgressCounter(total int64, notify func(Progress)) *ProgressCounter {
	return &ProgressCounter{total: total, notify: notify}
}

// Inc records one processed file
func (p *ProgressCounter) Inc() {
	processed := p.processed.Add(1)
	if p.notify != nil {
		p.notify(Progress{Processed: processed, Total: p.total})
	}
}

// Snapshot returns the current progress
func (p *ProgressCounter) Snapshot() Progress {
	return Progress{
		Processed: p.processed.Load(),
		Total:     p.total,
	}
}
