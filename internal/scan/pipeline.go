// Package scan implements the streaming ingestion pipeline: staging,
// digesting, content sniffing and scan orchestration for multipart
// uploads.
package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/rntrp/reefspect/internal/engine"
	"github.com/rntrp/reefspect/internal/models"
	"github.com/rntrp/reefspect/internal/staging"
)

// RequestError marks failures caused by the client's request body
// (malformed multipart framing, truncated uploads) as opposed to
// internal staging or engine failures.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// Pipeline drives staging, digesting, sniffing and scanning for one
// request. It is stateless across requests and safe for concurrent use.
type Pipeline struct {
	staging *staging.Store
	orch    *Orchestrator
	engine  engine.Engine
	log     *slog.Logger
}

func NewPipeline(store *staging.Store, eng engine.Engine, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		staging: store,
		orch:    NewOrchestrator(eng),
		engine:  eng,
		log:     logger.WithGroup("pipeline"),
	}
}

// Run processes every multipart field strictly in arrival order: field
// N+1 is not read until field N's result exists. The first error of
// any kind aborts the remaining fields and the request as a whole; no
// partial report is ever returned. An empty field sequence yields a
// report with an empty result list and valid engine metadata.
func (p *Pipeline) Run(ctx context.Context, mr *multipart.Reader) (*models.ScanReport, error) {
	meta := p.engine.Metadata()
	var results []models.FileResult
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &RequestError{Err: fmt.Errorf("reading multipart field: %w", err)}
		}
		result, err := p.processField(ctx, part)
		part.Close()
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return models.NewScanReport(meta, results), nil
}

// processField stages and digests one field in a single pass, sniffs
// the staged prefix and obtains the scan verdict. The staged artifact
// is released on every exit path.
func (p *Pipeline) processField(ctx context.Context, part *multipart.Part) (_ *models.FileResult, err error) {
	artifact, err := p.staging.Create()
	if err != nil {
		return nil, fmt.Errorf("allocating staging file: %w", err)
	}
	defer func() {
		if rerr := artifact.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("releasing staged file: %w", rerr)
		}
	}()

	digests, err := DigestInto(artifact, part)
	if err != nil {
		return nil, err
	}

	contentType, err := p.sniffArtifact(artifact)
	if err != nil {
		return nil, err
	}

	verdict, err := p.orch.ScanArtifact(ctx, engine.Target{
		Path:     artifact.Path(),
		Size:     digests.Size,
		Buffered: true,
	})
	if err != nil {
		return nil, err
	}

	result := newFileResult(fieldName(part), digests, contentType, verdict)
	p.log.Debug("field scanned",
		"name", part.FileName(),
		"size", digests.Size,
		"result", result.Result)
	return result, nil
}

func (p *Pipeline) sniffArtifact(artifact *staging.Artifact) (string, error) {
	f, err := artifact.Open()
	if err != nil {
		return "", fmt.Errorf("opening staged file: %w", err)
	}
	defer f.Close()
	return DetectContentType(f)
}

// fieldName prefers the declared filename, falling back to the form
// field name; nil when neither is present.
func fieldName(part *multipart.Part) *string {
	if name := part.FileName(); name != "" {
		return &name
	}
	if name := part.FormName(); name != "" {
		return &name
	}
	return nil
}

func newFileResult(name *string, digests DigestSet, contentType string, verdict engine.Verdict) *models.FileResult {
	result := &models.FileResult{
		Name:        name,
		Size:        digests.Size,
		CRC32:       digests.CRC32,
		MD5:         digests.MD5,
		SHA256:      digests.SHA256,
		DateScanned: models.FormatScanTime(time.Now()),
		Result:      verdict.Outcome.Tag(),
	}
	if contentType != "" {
		result.ContentType = &contentType
	}
	if verdict.Outcome == engine.OutcomeFlagged {
		signature := verdict.Signature
		result.Signature = &signature
	}
	return result
}
