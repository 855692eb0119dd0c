// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rntrp/reefspect/internal/audit"
	"github.com/rntrp/reefspect/internal/models"
)

// ScanHandler handles multipart scan submissions
type ScanHandler interface {
	HandleScan(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// AuditHandler serves the journal of recent scan outcomes
type AuditHandler interface {
	HandleRecentScans(c echo.Context) error
	HandleRecentScansMsgpack(c echo.Context) error
}

// ShutdownHandler handles the config-gated remote shutdown endpoint
type ShutdownHandler interface {
	HandleShutdown(c echo.Context) error
}

// Journal is the audit surface the handlers need.
// This allows mocking in tests.
type Journal interface {
	Record(ctx context.Context, results []models.FileResult) error
	Recent(ctx context.Context, limit int) ([]audit.Record, error)
}
