// mock_engine.go - Deterministic scan engine double for testing
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rntrp/reefspect/internal/engine"
	"github.com/rntrp/reefspect/internal/models"
)

// EICARSignature is the name the mock engine reports for matches of
// the standard antivirus test payload.
const EICARSignature = "Eicar-Test-Signature"

// MockEngine implements engine.Engine with deterministic verdicts: any
// target containing the EICAR test string is flagged, whitelisted
// payloads are reported as such, everything else is clean.
type MockEngine struct {
	Info           models.EngineInfo
	PreambleEvents int      // non-terminal events emitted before the result
	FailSubmit     bool     // Scan returns an error before any stream exists
	DropResult     bool     // close the stream without a result event
	ScanError      error    // delivered as the terminal event's error
	Whitelist      [][]byte // payloads reported as WHITELISTED

	mu             sync.Mutex
	scannedTargets []engine.Target
}

var _ engine.Engine = (*MockEngine)(nil)

// NewMockEngine creates a mock engine with fixed metadata.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		Info: models.EngineInfo{
			Version:         "ClamAV 1.4.3",
			DatabaseVersion: 27781,
			SignatureCount:  8723456,
			DatabaseDate:    time.Date(2026, time.August, 20, 8, 30, 0, 0, time.UTC),
		},
	}
}

func (m *MockEngine) Metadata() models.EngineInfo {
	return m.Info
}

func (m *MockEngine) Scan(_ context.Context, target engine.Target) (<-chan engine.Event, error) {
	if m.FailSubmit {
		return nil, errors.New("mock engine: submission refused")
	}
	data, err := os.ReadFile(target.Path)
	if err != nil {
		return nil, fmt.Errorf("mock engine: %w", err)
	}

	m.mu.Lock()
	m.scannedTargets = append(m.scannedTargets, target)
	m.mu.Unlock()

	events := make(chan engine.Event, m.PreambleEvents+1)
	for i := 0; i < m.PreambleEvents; i++ {
		events <- engine.Event{Kind: engine.EventProgress, Path: target.Path}
	}
	switch {
	case m.DropResult:
		// Stream closes without a terminal event.
	case m.ScanError != nil:
		events <- engine.Event{Kind: engine.EventResult, Path: target.Path, Err: m.ScanError}
	default:
		events <- engine.Event{Kind: engine.EventResult, Path: target.Path, Verdict: m.verdictFor(data)}
	}
	close(events)
	return events, nil
}

// ScannedTargets returns a copy of every target submitted so far.
func (m *MockEngine) ScannedTargets() []engine.Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	targets := make([]engine.Target, len(m.scannedTargets))
	copy(targets, m.scannedTargets)
	return targets
}

func (m *MockEngine) verdictFor(data []byte) engine.Verdict {
	for _, payload := range m.Whitelist {
		if bytes.Equal(data, payload) {
			return engine.Verdict{Outcome: engine.OutcomeWhitelisted}
		}
	}
	if bytes.Contains(data, []byte(EICARTestString)) {
		return engine.Verdict{Outcome: engine.OutcomeFlagged, Signature: EICARSignature}
	}
	return engine.Verdict{Outcome: engine.OutcomeClean}
}
