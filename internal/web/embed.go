// Package web serves the embedded upload page.
package web

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static/index.html
var indexHTML []byte

// RegisterStaticRoutes serves the embedded upload form at the site
// root. API routes should be registered before calling this.
func RegisterStaticRoutes(e *echo.Echo) {
	handler := func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, indexHTML)
	}
	e.GET("/", handler)
	e.GET("/index.htm", handler)
	e.GET("/index.html", handler)
}
