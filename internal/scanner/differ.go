package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumipallolabs/folderdiff/internal/fsys"
	"github.com/lumipallolabs/folderdiff/internal/logging"
	"github.com/lumipallolabs/folderdiff/internal/model"
)

// fileBatchSize is the largest number of master files compared in one task.
// Bigger directories are split so their files spread over the pool.
const fileBatchSize = 512

// Option configures a Differ
type Option func(*Differ)

// WithFS sets the enumerator. The default is the OS filesystem.
func WithFS(e fsys.Enumerator) Option {
	return func(d *Differ) { d.enum = e }
}

// WithWorkers bounds the worker pool. Values below 1 use runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(d *Differ) { d.workers = n }
}

// WithComparator sets the file equality policy. The default is NameAndSize.
func WithComparator(c Comparator) Option {
	return func(d *Differ) { d.comparator = c }
}

// WithProgress registers a callback invoked after every processed file.
// It is called concurrently from worker goroutines.
func WithProgress(fn func(Progress)) Option {
	return func(d *Differ) { d.onProgress = fn }
}

// WithLogger overrides the scanner logger
func WithLogger(log *logrus.Entry) Option {
	return func(d *Differ) { d.log = log }
}

// Differ compares a source tree against a target tree
type Differ struct {
	source string
	target string

	enum       fsys.Enumerator
	workers    int
	comparator Comparator
	onProgress func(Progress)
	log        *logrus.Entry

	progress *ProgressCounter
	diffs    *DifferenceSet

	// One scan at a time; scans share diffs.
	scanMu sync.Mutex
}

// New creates a Differ over source and target. Both roots must be existing
// directories. The source tree is fully enumerated once to size progress.
func New(ctx context.Context, source, target string, opts ...Option) (*Differ, error) {
	d := &Differ{
		comparator: NameAndSize{},
		log:        logging.Scanner,
		diffs:      NewDifferenceSet(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = runtime.NumCPU()
	}
	if d.enum == nil {
		d.enum = fsys.NewOS(fsys.OSOptions{Workers: d.workers})
	}

	var err error
	if d.source, err = resolveRoot(d.enum, source); err != nil {
		return nil, err
	}
	if d.target, err = resolveRoot(d.enum, target); err != nil {
		return nil, err
	}

	start := time.Now()
	total, err := d.countFiles(ctx, d.source)
	if err != nil {
		return nil, err
	}
	d.log.WithFields(logrus.Fields{
		"root":  d.source,
		"files": total,
		"took":  time.Since(start),
	}).Debug("Counted source files")

	d.progress = NewProgressCounter(total, d.onProgress)
	return d, nil
}

func resolveRoot(e fsys.Enumerator, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &InvalidPathError{Path: root, Reason: "cannot be resolved", Err: err}
	}
	if err := e.Stat(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// Source returns the resolved source root
func (d *Differ) Source() string { return d.source }

// Target returns the resolved target root
func (d *Differ) Target() string { return d.target }

// Progress returns the current progress snapshot
func (d *Differ) Progress() Progress { return d.progress.Snapshot() }

// FindMissingInTarget returns every source file with no qualifying
// counterpart at its mirrored location in the target.
func (d *Differ) FindMissingInTarget(ctx context.Context) ([]model.MissingEntry, error) {
	return d.Find(ctx, MissingInTarget)
}

// FindMissingInSource returns every target file with no qualifying
// counterpart at its mirrored location in the source. SourcePath of each
// entry lies in the target tree and TargetPath in the source tree.
func (d *Differ) FindMissingInSource(ctx context.Context) ([]model.MissingEntry, error) {
	return d.Find(ctx, MissingInSource)
}

// Find runs one scan in the given direction and returns a drained snapshot
func (d *Differ) Find(ctx context.Context, dir Direction) ([]model.MissingEntry, error) {
	d.scanMu.Lock()
	defer d.scanMu.Unlock()

	master, slave := d.source, d.target
	if dir == MissingInSource {
		master, slave = d.target, d.source
	}
	mapper := model.NewPathMapper(master, slave)

	log := d.log.WithFields(logrus.Fields{
		"direction": dir.String(),
		"master":    master,
		"slave":     slave,
	})
	log.Debug("Starting scan")
	start := time.Now()

	seed := []task{{kind: taskCompare, master: master, slave: slave}}
	err := runPool(ctx, d.workers, seed, func(ctx context.Context, t task, push func(task)) error {
		switch t.kind {
		case taskCompare:
			return d.compareDirs(t, mapper, push)
		case taskCollect:
			return d.collectDir(t, mapper, push)
		case taskFiles:
			return d.compareFiles(t.files, t.index, mapper)
		}
		return nil
	})

	entries := d.diffs.Drain()
	if err != nil {
		var scanErr *ScanError
		if !errors.As(err, &scanErr) {
			err = &ScanError{Op: "scan", Path: master, Err: err}
		}
		log.WithError(err).Warn("Scan failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"missing": len(entries),
		"took":    time.Since(start),
	}).Debug("Scan complete")
	return entries, nil
}

// compareDirs handles one matched directory pair
func (d *Differ) compareDirs(t task, mapper model.PathMapper, push func(task)) error {
	masterDirs, err := d.enum.ListDirs(t.master)
	if err != nil {
		return &ScanError{Op: "list directories", Path: t.master, Err: err}
	}
	slaveDirs, err := d.enum.ListDirs(t.slave)
	if err != nil {
		return &ScanError{Op: "list directories", Path: t.slave, Err: err}
	}

	slaveByName := make(map[string]model.Dir, len(slaveDirs))
	for _, sd := range slaveDirs {
		if _, ok := slaveByName[sd.Name]; !ok {
			slaveByName[sd.Name] = sd
		}
	}

	for _, md := range masterDirs {
		if match, ok := slaveByName[md.Name]; ok {
			push(task{kind: taskCompare, master: md.Path, slave: match.Path})
		} else {
			push(task{kind: taskCollect, master: md.Path})
		}
	}

	masterFiles, err := d.enum.ListFiles(t.master)
	if err != nil {
		return &ScanError{Op: "list files", Path: t.master, Err: err}
	}
	if len(masterFiles) == 0 {
		return nil
	}
	slaveFiles, err := d.enum.ListFiles(t.slave)
	if err != nil {
		return &ScanError{Op: "list files", Path: t.slave, Err: err}
	}

	index := newFileIndex(slaveFiles, d.comparator)
	for len(masterFiles) > fileBatchSize {
		push(task{kind: taskFiles, files: masterFiles[:fileBatchSize], index: index})
		masterFiles = masterFiles[fileBatchSize:]
	}
	return d.compareFiles(masterFiles, index, mapper)
}

// compareFiles adds every master file without a match in index
func (d *Differ) compareFiles(files []model.File, index fileIndex, mapper model.PathMapper) error {
	for _, f := range files {
		if !index.contains(f, d.comparator) {
			if err := d.add(f, mapper); err != nil {
				return err
			}
		}
		d.progress.Inc()
	}
	return nil
}

// collectDir adds every file of a directory that has no counterpart at all.
// No candidates exist, so no size check applies.
func (d *Differ) collectDir(t task, mapper model.PathMapper, push func(task)) error {
	dirs, err := d.enum.ListDirs(t.master)
	if err != nil {
		return &ScanError{Op: "list directories", Path: t.master, Err: err}
	}
	for _, sub := range dirs {
		push(task{kind: taskCollect, master: sub.Path})
	}

	files, err := d.enum.ListFiles(t.master)
	if err != nil {
		return &ScanError{Op: "list files", Path: t.master, Err: err}
	}
	for _, f := range files {
		if err := d.add(f, mapper); err != nil {
			return err
		}
		d.progress.Inc()
	}
	return nil
}

func (d *Differ) add(f model.File, mapper model.PathMapper) error {
	entry, ok := mapper.Entry(f)
	if !ok {
		return &ScanError{Op: "map path", Path: f.Path, Err: errors.New("path is outside the scanned root")}
	}
	d.diffs.Add(entry)
	return nil
}

// countFiles computes the total number of files below root
func (d *Differ) countFiles(ctx context.Context, root string) (int64, error) {
	if counter, ok := d.enum.(fsys.Counter); ok {
		n, err := counter.CountFiles(ctx, root)
		if err != nil {
			return 0, &ScanError{Op: "count files", Path: root, Err: err}
		}
		return n, nil
	}

	var total atomic.Int64
	seed := []task{{kind: taskCount, master: root}}
	err := runPool(ctx, d.workers, seed, func(ctx context.Context, t task, push func(task)) error {
		dirs, err := d.enum.ListDirs(t.master)
		if err != nil {
			return &ScanError{Op: "list directories", Path: t.master, Err: err}
		}
		for _, sub := range dirs {
			push(task{kind: taskCount, master: sub.Path})
		}
		files, err := d.enum.ListFiles(t.master)
		if err != nil {
			return &ScanError{Op: "list files", Path: t.master, Err: err}
		}
		total.Add(int64(len(files)))
		return nil
	})
	if err != nil {
		var scanErr *ScanError
		if !errors.As(err, &scanErr) {
			err = &ScanError{Op: "count files", Path: root, Err: err}
		}
		return 0, err
	}
	return total.Load(), nil
}
