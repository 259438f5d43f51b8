// handlers_health.go - Service liveness endpoint
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version   string
	buildTime string
}

// NewHealthHandler creates a health handler carrying the build identity
// stamped into the binary.
func NewHealthHandler(version, buildTime string) HealthHandler {
	return &HealthHandlerImpl{
		version:   version,
		buildTime: buildTime,
	}
}

// HandleHealth reports process liveness and build identity. The analysis
// backend is not probed; a degraded backend surfaces through validation
// verdicts, not through health.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":     "ok",
		"service":    "model-validator",
		"version":    h.version,
		"build_time": h.buildTime,
	})
}
