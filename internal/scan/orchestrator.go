package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/rntrp/reefspect/internal/engine"
)

// ErrNoVerdict signals that the engine closed its event stream without
// ever producing a result event. This is a protocol violation, never a
// default verdict.
var ErrNoVerdict = errors.New("scan stream ended without a result")

// Orchestrator extracts exactly one terminal verdict per submission
// from the engine's event stream.
type Orchestrator struct {
	engine engine.Engine
}

func NewOrchestrator(eng engine.Engine) *Orchestrator {
	return &Orchestrator{engine: eng}
}

// ScanArtifact submits the staged region and consumes events until the
// first result event. Non-terminal events are discarded; events after
// the terminal one are never read. An engine-reported scan failure
// propagates as an error, not a verdict.
func (o *Orchestrator) ScanArtifact(ctx context.Context, target engine.Target) (engine.Verdict, error) {
	events, err := o.engine.Scan(ctx, target)
	if err != nil {
		return engine.Verdict{}, fmt.Errorf("submitting scan: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return engine.Verdict{}, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return engine.Verdict{}, ErrNoVerdict
			}
			if ev.Kind != engine.EventResult {
				continue
			}
			if ev.Err != nil {
				return engine.Verdict{}, fmt.Errorf("engine scan failed: %w", ev.Err)
			}
			return ev.Verdict, nil
		}
	}
}
