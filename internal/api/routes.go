// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Pipeline  ModelValidator
	Completer PromptCompleter
	Version   string
	BuildTime string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Validate ValidateHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.BuildTime),
		Validate: NewValidateHandler(deps.Pipeline, deps.Completer),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.POST("/models/validate", handlers.Validate.HandleValidateModel)
	apiGroup.POST("/ai", handlers.Validate.HandleAIPrompt)
}
