// Package progress renders per-file progress of batch commands and builds
// the CLI's loggers.
package progress

import (
	"context"
	"errors"
	"time"
)

// ErrNotStarted is returned by Attach and Wait before Start.
var ErrNotStarted = errors.New("display not started")

// EventKind classifies a progress Event.
type EventKind int

// Event kinds, in the order a file normally emits them.
const (
	EventStarted EventKind = iota
	EventMeasure
	EventWarning
	EventFailed
	EventDone
)

var _eventNames = [...]string{
	EventStarted: "started",
	EventMeasure: "measure",
	EventWarning: "warning",
	EventFailed:  "failed",
	EventDone:    "done",
}

func (k EventKind) String() string {
	if k < EventStarted || k > EventDone {
		return "unknown"
	}
	return _eventNames[k]
}

// Event is one status update for a file.
type Event struct {
	Kind     EventKind
	Measure  string        // measure number, for EventMeasure and EventWarning
	Message  string        // human-readable detail
	Err      error         // set for EventFailed
	Duration time.Duration // set for EventDone and EventFailed
}

// Display renders progress events for a batch of files.
type Display interface {
	// Start prepares the display. It must be called before Attach.
	Start(ctx context.Context) error
	// Attach registers a file and consumes its events until ch is closed.
	Attach(ctx context.Context, file string, ch <-chan Event) error
	// Seal signals that no more files will be attached.
	Seal()
	// Wait blocks until every attached file's events are consumed.
	Wait() error
}
