package core

import (
	"time"

	"github.com/lumipallolabs/folderdiff/internal/model"
	"github.com/lumipallolabs/folderdiff/internal/report"
	"github.com/lumipallolabs/folderdiff/internal/scanner"
)

// ScanPhase represents the current phase of scanning
type ScanPhase int

const (
	PhaseIdle ScanPhase = iota
	PhaseCounting
	PhaseComparing
	PhaseComplete
)

// String returns a human-readable phase name
func (p ScanPhase) String() string {
	switch p {
	case PhaseCounting:
		return "Counting files"
	case PhaseComparing:
		return "Comparing trees"
	case PhaseComplete:
		return "Complete"
	default:
		return ""
	}
}

// ScanState holds the current scan state
type ScanState struct {
	Phase     ScanPhase
	StartTime time.Time
	Progress  scanner.Progress
	Duration  time.Duration // set once the scan finished
}

// IsScanning returns true while counting or comparing
func (s ScanState) IsScanning() bool {
	return s.Phase == PhaseCounting || s.Phase == PhaseComparing
}

// Elapsed returns time since scan started, or the final duration
func (s ScanState) Elapsed() time.Duration {
	if s.Duration > 0 {
		return s.Duration
	}
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime).Truncate(time.Second)
}

// UploadPhase represents the state of replication
type UploadPhase int

const (
	UploadIdle UploadPhase = iota
	Uploading
	UploadDone
)

// UploadState holds replication progress
type UploadState struct {
	Phase  UploadPhase
	Done   int
	Total  int
	Bytes  int64
	Failed int
}

// AppState holds the complete application state (read-only view)
type AppState struct {
	Source     string
	Target     string
	Direction  scanner.Direction
	Remote     string // endpoint without password, empty when none
	Scan       ScanState
	Upload     UploadState
	Entries    []model.MissingEntry
	Changes    *report.Changes // nil unless reports are saved
	ReportPath string
	Space      *model.Volume
	Error      error
}
