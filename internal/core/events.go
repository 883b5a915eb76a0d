package core

import (
	"time"

	"github.com/lumipallolabs/folderdiff/internal/model"
	"github.com/lumipallolabs/folderdiff/internal/remote"
	"github.com/lumipallolabs/folderdiff/internal/report"
	"github.com/lumipallolabs/folderdiff/internal/scanner"
)

// Event represents a state change from the controller
type Event interface {
	isEvent()
}

// ScanStartedEvent is emitted when a scan begins
type ScanStartedEvent struct {
	Source    string
	Target    string
	Direction scanner.Direction
}

func (ScanStartedEvent) isEvent() {}

// ScanPhaseChangedEvent is emitted when scan phase changes
type ScanPhaseChangedEvent struct {
	Phase ScanPhase
}

func (ScanPhaseChangedEvent) isEvent() {}

// ScanProgressEvent is emitted periodically while comparing. Progress
// events are dropped when the consumer falls behind.
type ScanProgressEvent struct {
	Progress scanner.Progress
}

func (ScanProgressEvent) isEvent() {}

// ScanCompletedEvent is emitted when scan finishes
type ScanCompletedEvent struct {
	Entries    []model.MissingEntry
	Duration   time.Duration
	Changes    *report.Changes
	ReportPath string
	Space      *model.Volume // local volume the mirror root lives on, nil if unknown
	Err        error
}

func (ScanCompletedEvent) isEvent() {}

// UploadStartedEvent is emitted when replication begins
type UploadStartedEvent struct {
	Total  int
	Remote string
}

func (UploadStartedEvent) isEvent() {}

// UploadProgressEvent is emitted after each replicated entry
type UploadProgressEvent struct {
	Progress remote.Progress
}

func (UploadProgressEvent) isEvent() {}

// UploadCompletedEvent is emitted when replication finishes
type UploadCompletedEvent struct {
	Result *remote.Result
	Err    error
}

func (UploadCompletedEvent) isEvent() {}

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) isEvent() {}
