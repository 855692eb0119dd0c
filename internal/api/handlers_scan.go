// handlers_scan.go - Multipart scan submission handler
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rntrp/reefspect/internal/scan"
)

// ScanHandlerImpl implements the ScanHandler interface
type ScanHandlerImpl struct {
	pipeline *scan.Pipeline
	journal  Journal
	log      *slog.Logger
}

// NewScanHandler creates a new scan handler instance. journal may be
// nil when the audit journal is disabled.
func NewScanHandler(pipeline *scan.Pipeline, journal Journal, logger *slog.Logger) ScanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanHandlerImpl{
		pipeline: pipeline,
		journal:  journal,
		log:      logger.WithGroup("scan"),
	}
}

// HandleScan streams every multipart field through the scan pipeline
// and returns the combined report. The first failing field aborts the
// whole request: malformed input yields 400, staging or engine
// failures 500, and no result payload accompanies either.
func (h *ScanHandlerImpl) HandleScan(c echo.Context) error {
	mr, err := c.Request().MultipartReader()
	if err != nil {
		return NewBadRequestError("expected multipart/form-data body", err)
	}

	report, err := h.pipeline.Run(c.Request().Context(), mr)
	if err != nil {
		var reqErr *scan.RequestError
		if errors.As(err, &reqErr) {
			return NewBadRequestError("malformed upload", reqErr.Err)
		}
		return NewInternalError("scan failed", err)
	}

	// Journaling is best-effort: a journal failure never fails the
	// request that produced a valid report.
	if h.journal != nil && len(report.Results) > 0 {
		if err := h.journal.Record(c.Request().Context(), report.Results); err != nil {
			h.log.Warn("journaling scan results failed", "error", err)
		}
	}

	return c.JSON(http.StatusOK, report)
}
