// handlers_shutdown.go - Config-gated remote shutdown handler
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rntrp/reefspect/internal/lifecycle"
)

// ShutdownHandlerImpl implements the ShutdownHandler interface
type ShutdownHandlerImpl struct {
	enabled bool
	token   *lifecycle.Token
}

// NewShutdownHandler creates a new shutdown handler instance
func NewShutdownHandler(enabled bool, token *lifecycle.Token) ShutdownHandler {
	return &ShutdownHandlerImpl{
		enabled: enabled,
		token:   token,
	}
}

// HandleShutdown fires the process shutdown token. The endpoint is
// hidden (404) unless enabled in config; repeated calls are accepted
// but only the first one signals.
func (h *ShutdownHandlerImpl) HandleShutdown(c echo.Context) error {
	if !h.enabled {
		return c.NoContent(http.StatusNotFound)
	}
	h.token.Signal()
	return c.NoContent(http.StatusAccepted)
}
