package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	clamd "github.com/dutchcoders/go-clamd"
	"github.com/rntrp/reefspect/internal/models"
)

// clamdTimeLayout matches the ctime-style date in the VERSION banner,
// e.g. "Wed Nov  1 09:31:13 2023".
const clamdTimeLayout = "Mon Jan _2 15:04:05 2006"

// ClamdEngine scans staged artifacts through a clamd daemon using its
// INSTREAM command. The daemon address may be a TCP URL
// ("tcp://127.0.0.1:3310") or a unix socket path.
type ClamdEngine struct {
	client *clamd.Clamd
	info   models.EngineInfo
}

var _ Engine = (*ClamdEngine)(nil)

// NewClamdEngine dials the daemon, verifies it responds and captures
// the engine metadata once. The clamd protocol does not report the
// signature total, so callers may supply it via signatureCount; zero
// leaves it unset.
func NewClamdEngine(address string, signatureCount uint32) (*ClamdEngine, error) {
	client := clamd.NewClamd(address)
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("pinging clamd at %s: %w", address, err)
	}
	banner, err := fetchVersion(client)
	if err != nil {
		return nil, fmt.Errorf("querying clamd version: %w", err)
	}
	info, err := parseVersionBanner(banner)
	if err != nil {
		return nil, err
	}
	info.SignatureCount = signatureCount
	return &ClamdEngine{client: client, info: info}, nil
}

// Metadata returns the engine identity captured at startup.
func (e *ClamdEngine) Metadata() models.EngineInfo {
	return e.info
}

// Scan streams the staged artifact to clamd and translates its reply
// channel into the Engine event stream. Cancelling ctx aborts the
// transfer and closes the stream without a result event.
func (e *ClamdEngine) Scan(ctx context.Context, target Target) (<-chan Event, error) {
	f, err := os.Open(target.Path)
	if err != nil {
		return nil, fmt.Errorf("opening staged artifact %s: %w", target.Path, err)
	}
	abort := make(chan bool)
	resp, err := e.client.ScanStream(f, abort)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("submitting %s to clamd: %w", target.Path, err)
	}

	events := make(chan Event, 1)
	go func() {
		defer close(events)
		defer close(abort)
		defer f.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-resp:
				if !ok {
					return
				}
				ev, terminal := translateResult(r, target.Path)
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
				if terminal {
					// Single-target scan: at most one result event.
					return
				}
			}
		}
	}()
	return events, nil
}

func translateResult(r *clamd.ScanResult, path string) (Event, bool) {
	if r == nil {
		return Event{Kind: EventProgress, Path: path}, false
	}
	switch r.Status {
	case clamd.RES_OK:
		return Event{
			Kind:    EventResult,
			Path:    path,
			Verdict: Verdict{Outcome: OutcomeClean},
		}, true
	case clamd.RES_FOUND:
		return Event{
			Kind:    EventResult,
			Path:    path,
			Verdict: Verdict{Outcome: OutcomeFlagged, Signature: r.Description},
		}, true
	case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
		return Event{
			Kind: EventResult,
			Path: path,
			Err:  fmt.Errorf("clamd scan failed: %s", r.Raw),
		}, true
	default:
		return Event{Kind: EventProgress, Path: path}, false
	}
}

func fetchVersion(client *clamd.Clamd) (string, error) {
	ch, err := client.Version()
	if err != nil {
		return "", err
	}
	for r := range ch {
		if r != nil && r.Raw != "" {
			return r.Raw, nil
		}
	}
	return "", errors.New("clamd returned no version banner")
}

// parseVersionBanner splits a banner such as
// "ClamAV 1.2.1/27087/Wed Nov  1 09:31:13 2023" into engine version,
// database version and database build date. A banner without the two
// database segments (no database loaded yet) yields only the version.
func parseVersionBanner(banner string) (models.EngineInfo, error) {
	parts := strings.SplitN(strings.TrimSpace(banner), "/", 3)
	info := models.EngineInfo{Version: parts[0]}
	if len(parts) < 3 {
		return info, nil
	}
	dbVersion, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return info, fmt.Errorf("parsing database version %q: %w", parts[1], err)
	}
	dbDate, err := time.Parse(clamdTimeLayout, strings.TrimSpace(parts[2]))
	if err != nil {
		return info, fmt.Errorf("parsing database date %q: %w", parts[2], err)
	}
	info.DatabaseVersion = uint32(dbVersion)
	info.DatabaseDate = dbDate.UTC()
	return info, nil
}
