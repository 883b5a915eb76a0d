package remote

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/lumipallolabs/folderdiff/internal/logging"
	"github.com/lumipallolabs/folderdiff/internal/model"
)

// Dialer opens a new Sink. Each worker dials its own.
type Dialer func(ctx context.Context) (Sink, error)

// Options configures a Replicator
type Options struct {
	// Workers is the number of parallel connections. Defaults to 1.
	Workers int

	// SourceFS is where entry contents are read from. Defaults to the OS.
	SourceFS afero.Fs

	// TargetRoot is the local target root. Remote paths are the entry's
	// TargetPath relative to it, joined onto BasePath.
	TargetRoot string

	// BasePath is the remote directory mirroring TargetRoot
	BasePath string

	// OnProgress is called after each entry, from one goroutine at a time
	OnProgress func(Progress)

	Log *logrus.Entry
}

// Progress reports how far a replication has got
type Progress struct {
	Done    int
	Total   int
	Bytes   int64
	Current string
}

// Result summarises a finished replication
type Result struct {
	Uploaded int
	Bytes    int64
	Errors   []*TransferError
	Duration time.Duration
}

// Failed reports how many entries could not be replicated
func (r *Result) Failed() int {
	return len(r.Errors)
}

// TransferError records one entry that could not be replicated
type TransferError struct {
	Entry model.MissingEntry
	Op    string // "mkdir", "open" or "upload"
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entry.SourcePath, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Replicator copies missing entries to a remote tree
type Replicator struct {
	dial Dialer
	opts Options
	log  *logrus.Entry

	// remote directories known to exist, shared by all workers
	dirs sync.Map
}

// New creates a Replicator
func New(dial Dialer, opts Options) *Replicator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.SourceFS == nil {
		opts.SourceFS = afero.NewOsFs()
	}
	if opts.BasePath == "" {
		opts.BasePath = "/"
	}
	log := opts.Log
	if log == nil {
		log = logging.Remote
	}
	return &Replicator{dial: dial, opts: opts, log: log}
}

// RemotePath returns where entry is written on the remote side
func (r *Replicator) RemotePath(entry model.MissingEntry) string {
	rel := ""
	if r.opts.TargetRoot != "" {
		p, err := filepath.Rel(r.opts.TargetRoot, entry.TargetPath)
		if err == nil && p != ".." && !strings.HasPrefix(p, ".."+string(filepath.Separator)) {
			rel = p
		}
	}
	if rel == "" {
		rel = strings.TrimPrefix(entry.TargetPath, filepath.VolumeName(entry.TargetPath))
	}
	return path.Join(r.opts.BasePath, filepath.ToSlash(rel))
}

// Replicate uploads entries. Failures of individual entries are collected
// in the Result and do not stop the run. An error is returned only when a
// connection cannot be established or ctx is cancelled.
func (r *Replicator) Replicate(ctx context.Context, entries []model.MissingEntry) (*Result, error) {
	start := time.Now()
	result := &Result{}
	if len(entries) == 0 {
		return result, nil
	}

	workers := min(r.opts.Workers, len(entries))
	sinks := make([]Sink, 0, workers)
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				r.log.WithError(err).Warn("Close remote connection")
			}
		}
	}()
	for i := 0; i < workers; i++ {
		s, err := r.dial(ctx)
		if err != nil {
			return result, fmt.Errorf("open remote connection: %w", err)
		}
		sinks = append(sinks, s)
	}

	r.log.WithFields(logrus.Fields{
		"entries": len(entries),
		"workers": workers,
		"base":    r.opts.BasePath,
	}).Info("Replication started")

	jobs := make(chan model.MissingEntry)
	var (
		mu       sync.Mutex
		done     int
		uploaded atomic.Int64
		bytes    atomic.Int64
		wg       sync.WaitGroup
	)

	for _, sink := range sinks {
		wg.Add(1)
		go func(sink Sink) {
			defer wg.Done()
			for entry := range jobs {
				n, terr := r.replicate(sink, entry)

				mu.Lock()
				done++
				if terr != nil {
					result.Errors = append(result.Errors, terr)
					r.log.WithError(terr.Err).WithFields(logrus.Fields{
						"op":   terr.Op,
						"path": entry.SourcePath,
					}).Warn("Transfer failed")
				} else {
					uploaded.Add(1)
					bytes.Add(n)
				}
				if r.opts.OnProgress != nil {
					r.opts.OnProgress(Progress{
						Done:    done,
						Total:   len(entries),
						Bytes:   bytes.Load(),
						Current: entry.SourcePath,
					})
				}
				mu.Unlock()
			}
		}(sink)
	}

	var ctxErr error
feed:
	for _, entry := range entries {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case jobs <- entry:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	result.Uploaded = int(uploaded.Load())
	result.Bytes = bytes.Load()
	result.Duration = time.Since(start)

	r.log.WithFields(logrus.Fields{
		"uploaded": result.Uploaded,
		"failed":   result.Failed(),
		"bytes":    result.Bytes,
		"elapsed":  result.Duration,
	}).Info("Replication finished")

	return result, ctxErr
}

func (r *Replicator) replicate(sink Sink, entry model.MissingEntry) (int64, *TransferError) {
	remotePath := r.RemotePath(entry)

	if err := r.ensureDir(sink, path.Dir(remotePath)); err != nil {
		return 0, &TransferError{Entry: entry, Op: "mkdir", Err: err}
	}

	f, err := r.opts.SourceFS.Open(entry.SourcePath)
	if err != nil {
		return 0, &TransferError{Entry: entry, Op: "open", Err: err}
	}
	defer f.Close()

	cr := &countingReader{r: f}
	if err := sink.Upload(remotePath, cr); err != nil {
		return cr.n, &TransferError{Entry: entry, Op: "upload", Err: err}
	}
	return cr.n, nil
}

// ensureDir creates every missing directory from the outermost ancestor
// down to dir
func (r *Replicator) ensureDir(sink Sink, dir string) error {
	for _, d := range Ancestors(dir) {
		if _, ok := r.dirs.Load(d); ok {
			continue
		}

		exists, err := sink.Exists(d)
		if err != nil {
			return err
		}
		if !exists {
			if err := sink.MakeDir(d); err != nil {
				// another worker may have created it meanwhile
				if exists, _ := sink.Exists(d); !exists {
					return err
				}
			}
			r.log.WithField("dir", d).Debug("Created remote directory")
		}
		r.dirs.Store(d, struct{}{})
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
