// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/model-validator/backend/internal/models"
	"github.com/model-validator/backend/internal/validate"
)

// ValidateHandler handles model archive validation operations
type ValidateHandler interface {
	HandleValidateModel(c echo.Context) error
	HandleAIPrompt(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ModelValidator runs the archive validation pipeline.
// This allows mocking in tests.
type ModelValidator interface {
	Run(ctx context.Context, req validate.Request) (*models.ValidationVerdict, error)
}

// PromptCompleter sends a raw prompt to the analysis backend.
type PromptCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
