package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/lumipallolabs/folderdiff/internal/fsys"
	"github.com/lumipallolabs/folderdiff/internal/logging"
	"github.com/lumipallolabs/folderdiff/internal/model"
	"github.com/lumipallolabs/folderdiff/internal/remote"
	"github.com/lumipallolabs/folderdiff/internal/report"
	"github.com/lumipallolabs/folderdiff/internal/scanner"
	"github.com/lumipallolabs/folderdiff/internal/stats"
)

var (
	// ErrBusy is returned when a scan or upload is already running
	ErrBusy = errors.New("a scan or upload is already running")

	// ErrNoRemote is returned when uploading without a remote endpoint
	ErrNoRemote = errors.New("no remote configured")
)

// progressInterval is how often scan progress is published
const progressInterval = 100 * time.Millisecond

// Options configures a Controller
type Options struct {
	Source        string
	Target        string
	Direction     scanner.Direction
	Workers       int
	Comparator    scanner.Comparator
	OneFileSystem bool

	// FS overrides the OS enumerator
	FS fsys.Enumerator

	// Remote is where differences are uploaded. Nil disables uploads.
	Remote        *remote.Endpoint
	RemoteWorkers int

	// Dial overrides remote.Dial for the endpoint
	Dial remote.Dialer

	// SourceFS is where uploaded file contents are read from
	SourceFS afero.Fs

	// Reports saves every finished scan when set
	Reports *report.Store

	// Stats records replication totals when set
	Stats *stats.Manager
}

// Controller manages the core application logic without UI dependencies
type Controller struct {
	mu sync.RWMutex

	opts Options

	// State
	source     string
	target     string
	direction  scanner.Direction
	targetRoot string // root the entries' TargetPath lives under
	scan       ScanState
	upload     UploadState
	entries    []model.MissingEntry
	changes    *report.Changes
	reportPath string
	space      *model.Volume
	err        error
	busy       bool
}

// NewController creates a new application controller
func NewController(opts Options) *Controller {
	return &Controller{
		opts:      opts,
		source:    opts.Source,
		target:    opts.Target,
		direction: opts.Direction,
	}
}

// State returns a read-only snapshot of the current state
func (c *Controller) State() AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var remoteName string
	if c.opts.Remote != nil {
		remoteName = c.opts.Remote.String()
	}

	return AppState{
		Source:     c.source,
		Target:     c.target,
		Direction:  c.direction,
		Remote:     remoteName,
		Scan:       c.scan,
		Upload:     c.upload,
		Entries:    c.entries,
		Changes:    c.changes,
		ReportPath: c.reportPath,
		Space:      c.space,
		Error:      c.err,
	}
}

// Entries returns the result of the last scan
func (c *Controller) Entries() []model.MissingEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries
}

// HasRemote reports whether uploads are possible
func (c *Controller) HasRemote() bool {
	return c.opts.Remote != nil
}

// SetReport loads the entries of a saved report for uploading
func (c *Controller) SetReport(r *report.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source = r.Source
	c.target = r.Target
	c.direction = r.Direction
	c.targetRoot = mirrorRoot(r.Source, r.Target, r.Direction)
	c.entries = r.Entries
	c.scan = ScanState{Phase: PhaseComplete, StartTime: r.Created}
}

// mirrorRoot returns the root a direction's entries would be copied into
func mirrorRoot(source, target string, dir scanner.Direction) string {
	if dir == scanner.MissingInSource {
		return source
	}
	return target
}

// StartScan begins comparing the two trees
func (c *Controller) StartScan(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.scan = ScanState{Phase: PhaseCounting, StartTime: time.Now()}
	c.upload = UploadState{}
	c.entries = nil
	c.changes = nil
	c.reportPath = ""
	c.space = nil
	c.err = nil
	c.mu.Unlock()

	eventCh := make(chan Event, 100)
	go c.runScan(ctx, eventCh)
	return eventCh, nil
}

// runScan executes the scan in a goroutine
func (c *Controller) runScan(ctx context.Context, eventCh chan Event) {
	defer close(eventCh)
	defer c.release()

	log := logging.Debug.WithFields(logrus.Fields{
		"source":    c.opts.Source,
		"target":    c.opts.Target,
		"direction": c.opts.Direction,
	})
	log.Debug("Starting scan")

	eventCh <- ScanStartedEvent{Source: c.opts.Source, Target: c.opts.Target, Direction: c.opts.Direction}
	eventCh <- ScanPhaseChangedEvent{Phase: PhaseCounting}

	d, err := scanner.New(ctx, c.opts.Source, c.opts.Target, c.scannerOptions()...)
	if err != nil {
		eventCh <- ScanCompletedEvent{Err: err}
		c.fail(eventCh, err)
		return
	}

	c.mu.Lock()
	c.source, c.target = d.Source(), d.Target()
	c.targetRoot = mirrorRoot(d.Source(), d.Target(), c.opts.Direction)
	c.scan.Phase = PhaseComparing
	c.scan.Progress = d.Progress()
	c.mu.Unlock()
	eventCh <- ScanPhaseChangedEvent{Phase: PhaseComparing}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.publishProgress(d.Progress(), eventCh)
			case <-stop:
				return
			}
		}
	}()

	entries, err := d.Find(ctx, c.opts.Direction)
	close(stop)
	wg.Wait()
	c.publishProgress(d.Progress(), eventCh)

	if err != nil {
		eventCh <- ScanCompletedEvent{Err: err}
		c.fail(eventCh, err)
		return
	}

	c.mu.Lock()
	duration := time.Since(c.scan.StartTime)
	c.mu.Unlock()

	changes, reportPath := c.saveReport(d.Source(), d.Target(), entries)
	var space *model.Volume
	if c.opts.FS == nil {
		space = measureSpace(mirrorRoot(d.Source(), d.Target(), c.opts.Direction))
	}

	c.mu.Lock()
	c.scan.Phase = PhaseComplete
	c.scan.Duration = duration
	c.entries = entries
	c.changes = changes
	c.reportPath = reportPath
	c.space = space
	c.mu.Unlock()

	log.WithFields(logrus.Fields{
		"missing": len(entries),
		"took":    duration,
	}).Debug("Scan complete")

	eventCh <- ScanPhaseChangedEvent{Phase: PhaseComplete}
	eventCh <- ScanCompletedEvent{
		Entries:    entries,
		Duration:   duration,
		Changes:    changes,
		ReportPath: reportPath,
		Space:      space,
	}
}

// measureSpace reports the free space below root, nil when it can't be read
func measureSpace(root string) *model.Volume {
	v, err := model.VolumeOf(root)
	if err != nil {
		logging.Debug.WithError(err).WithField("root", root).Debug("Couldn't measure volume")
		return nil
	}
	return &v
}

func (c *Controller) scannerOptions() []scanner.Option {
	opts := []scanner.Option{
		scanner.WithWorkers(c.opts.Workers),
		scanner.WithLogger(logging.Scanner.WithField("one_file_system", c.opts.OneFileSystem)),
	}
	if c.opts.FS != nil {
		opts = append(opts, scanner.WithFS(c.opts.FS))
	} else {
		opts = append(opts, scanner.WithFS(fsys.NewOS(fsys.OSOptions{
			OneFileSystem: c.opts.OneFileSystem,
			Workers:       c.opts.Workers,
		})))
	}
	if c.opts.Comparator != nil {
		opts = append(opts, scanner.WithComparator(c.opts.Comparator))
	}
	return opts
}

// saveReport stores entries and compares them with the previous report of
// the same roots. Failures are logged and leave the scan result intact.
func (c *Controller) saveReport(source, target string, entries []model.MissingEntry) (*report.Changes, string) {
	if c.opts.Reports == nil {
		return nil, ""
	}

	// a reverse scan is a forward scan of the swapped pair
	name := report.Name(source, target)
	if c.opts.Direction == scanner.MissingInSource {
		name = report.Name(target, source)
	}

	previous, err := c.opts.Reports.LoadLatest(name)
	if err != nil {
		logging.Debug.WithError(err).Debug("No previous report")
		previous = nil
	}

	current := &report.Report{
		Source:    source,
		Target:    target,
		Direction: c.opts.Direction,
		Created:   time.Now(),
		Entries:   entries,
	}
	changes := report.Compare(previous, current)

	path, err := c.opts.Reports.Save(name, current)
	if err != nil {
		logging.Debug.WithError(err).Warn("Failed to save report")
		return &changes, ""
	}
	return &changes, path
}

func (c *Controller) publishProgress(p scanner.Progress, eventCh chan Event) {
	c.mu.Lock()
	c.scan.Progress = p
	c.mu.Unlock()

	select {
	case eventCh <- ScanProgressEvent{Progress: p}:
	default:
		// consumer is behind, drop
	}
}

func (c *Controller) fail(eventCh chan Event, err error) {
	logging.Debug.WithError(err).Warn("Operation failed")

	c.mu.Lock()
	if c.scan.Phase != PhaseComplete {
		c.scan.Phase = PhaseIdle
	}
	c.err = err
	c.mu.Unlock()

	eventCh <- ErrorEvent{Err: err}
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// StartUpload replicates the current entries to the remote endpoint
func (c *Controller) StartUpload(ctx context.Context) (<-chan Event, error) {
	if c.opts.Remote == nil {
		return nil, ErrNoRemote
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	entries := c.entries
	targetRoot := c.targetRoot
	c.upload = UploadState{Phase: Uploading, Total: len(entries)}
	c.err = nil
	c.mu.Unlock()

	eventCh := make(chan Event, 100)
	go c.runUpload(ctx, entries, targetRoot, eventCh)
	return eventCh, nil
}

func (c *Controller) runUpload(ctx context.Context, entries []model.MissingEntry, targetRoot string, eventCh chan Event) {
	defer close(eventCh)
	defer c.release()

	ep := *c.opts.Remote
	dial := c.opts.Dial
	if dial == nil {
		dial = func(ctx context.Context) (remote.Sink, error) {
			return remote.Dial(ctx, ep)
		}
	}

	eventCh <- UploadStartedEvent{Total: len(entries), Remote: ep.String()}

	r := remote.New(dial, remote.Options{
		Workers:    c.opts.RemoteWorkers,
		SourceFS:   c.opts.SourceFS,
		TargetRoot: targetRoot,
		BasePath:   ep.Path,
		OnProgress: func(p remote.Progress) {
			c.mu.Lock()
			c.upload.Done = p.Done
			c.upload.Bytes = p.Bytes
			c.mu.Unlock()

			select {
			case eventCh <- UploadProgressEvent{Progress: p}:
			default:
			}
		},
	})

	result, err := r.Replicate(ctx, entries)

	c.mu.Lock()
	c.upload.Phase = UploadDone
	if result != nil {
		c.upload.Failed = result.Failed()
		c.upload.Bytes = result.Bytes
	}
	c.mu.Unlock()

	if c.opts.Stats != nil && result != nil && result.Uploaded > 0 {
		c.opts.Stats.AddReplicated(result.Uploaded, result.Bytes, ep.String())
	}

	eventCh <- UploadCompletedEvent{Result: result, Err: err}
	if err != nil {
		c.fail(eventCh, err)
	}
}

// Stop cleans up resources
func (c *Controller) Stop() {
	if c.opts.Stats != nil {
		if err := c.opts.Stats.Close(); err != nil {
			logging.Debug.WithError(err).Warn("Failed to save stats")
		}
	}
}
