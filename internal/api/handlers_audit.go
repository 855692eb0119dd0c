// handlers_audit.go - Scan journal query handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rntrp/reefspect/internal/audit"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// AuditHandlerImpl implements the AuditHandler interface
type AuditHandlerImpl struct {
	journal Journal
}

// NewAuditHandler creates a new audit handler instance
func NewAuditHandler(journal Journal) AuditHandler {
	return &AuditHandlerImpl{journal: journal}
}

// HandleRecentScans returns the most recent journal records as JSON
func (h *AuditHandlerImpl) HandleRecentScans(c echo.Context) error {
	records, err := h.recent(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// HandleRecentScansMsgpack returns the same records in MessagePack format
func (h *AuditHandlerImpl) HandleRecentScansMsgpack(c echo.Context) error {
	records, err := h.recent(c)
	if err != nil {
		return err
	}
	blob, err := msgpack.Marshal(records)
	if err != nil {
		return NewInternalError("failed to encode scan records", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", blob)
}

func (h *AuditHandlerImpl) recent(c echo.Context) ([]audit.Record, error) {
	limit := defaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, NewBadRequestError("limit must be a positive integer", err)
		}
		if n > maxRecentLimit {
			n = maxRecentLimit
		}
		limit = n
	}
	records, err := h.journal.Recent(c.Request().Context(), limit)
	if err != nil {
		return nil, NewInternalError("failed to list scan records", err)
	}
	return records, nil
}
