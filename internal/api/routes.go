// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/rntrp/reefspect/internal/lifecycle"
	"github.com/rntrp/reefspect/internal/scan"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Pipeline       *scan.Pipeline
	Journal        Journal // nil disables the audit endpoints
	Token          *lifecycle.Token
	EnableShutdown bool
	Version        string
	Logger         *slog.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Scan     ScanHandler
	Audit    AuditHandler // nil when the journal is disabled
	Shutdown ShutdownHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	h := &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Scan:     NewScanHandler(deps.Pipeline, deps.Journal, deps.Logger),
		Shutdown: NewShutdownHandler(deps.EnableShutdown, deps.Token),
	}
	if deps.Journal != nil {
		h.Audit = NewAuditHandler(deps.Journal)
	}
	return h
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Remote shutdown (404 unless enabled in config)
	e.POST("/shutdown", handlers.Shutdown.HandleShutdown)

	apiGroup := e.Group("/api")
	apiGroup.POST("/scan", handlers.Scan.HandleScan)

	// Journal routes exist only when auditing is enabled
	if handlers.Audit != nil {
		apiGroup.GET("/scans/recent", handlers.Audit.HandleRecentScans)
		apiGroup.GET("/scans/recent/msgpack", handlers.Audit.HandleRecentScansMsgpack)
	}
}
