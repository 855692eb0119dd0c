// Package engine abstracts the external malware-scanning engine behind
// an asynchronous event-stream interface so that transports (clamd) and
// test doubles are interchangeable.
package engine

import (
	"context"

	"github.com/rntrp/reefspect/internal/models"
)

// Outcome is the three-way classification of one scanned artifact.
type Outcome int

const (
	OutcomeClean Outcome = iota
	OutcomeWhitelisted
	OutcomeFlagged
)

// Tag returns the wire representation of the outcome.
func (o Outcome) Tag() string {
	switch o {
	case OutcomeWhitelisted:
		return models.ResultWhitelisted
	case OutcomeFlagged:
		return models.ResultVirus
	default:
		return models.ResultClean
	}
}

// Verdict is the terminal classification of one submission. Signature
// is set if and only if the outcome is OutcomeFlagged.
type Verdict struct {
	Outcome   Outcome
	Signature string
}

// EventKind distinguishes terminal from non-terminal stream events.
type EventKind int

const (
	// EventProgress is any non-terminal notification; consumers skip it.
	EventProgress EventKind = iota
	// EventResult is the terminal event carrying a verdict or an error.
	EventResult
)

// Event is one element of a scan's event stream. For EventResult,
// exactly one of Verdict and Err is meaningful.
type Event struct {
	Kind    EventKind
	Path    string
	Verdict Verdict
	Err     error
}

// Target identifies a staged byte region to scan. Buffered signals that
// every byte is already durable on disk and safe to map.
type Target struct {
	Path     string
	Size     int64
	Buffered bool
}

// Engine is the process-wide scan engine handle. Implementations must
// be safe for concurrent use by multiple requests. Scan returns a live
// event stream which is closed once the submission is finished; the
// stream yields at most one EventResult per single-target submission.
type Engine interface {
	Scan(ctx context.Context, target Target) (<-chan Event, error)
	Metadata() models.EngineInfo
}
