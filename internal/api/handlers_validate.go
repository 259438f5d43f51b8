// handlers_validate.go - Model archive validation handlers
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/model-validator/backend/internal/llm"
	"github.com/model-validator/backend/internal/models"
	"github.com/model-validator/backend/internal/validate"
	"github.com/vmihailenco/msgpack/v5"
)

const msgpackMIME = "application/msgpack"

// ValidateHandlerImpl implements the ValidateHandler interface
type ValidateHandlerImpl struct {
	pipeline  ModelValidator
	completer PromptCompleter
}

// NewValidateHandler creates a new validation handler instance
func NewValidateHandler(pipeline ModelValidator, completer PromptCompleter) ValidateHandler {
	return &ValidateHandlerImpl{
		pipeline:  pipeline,
		completer: completer,
	}
}

// HandleValidateModel accepts a multipart submission (ZIP archive plus
// description and setup instructions) and returns a validation verdict.
// A submission that fails validation is still a successful request: the
// verdict carries isValid=false and the reasons.
func (h *ValidateHandlerImpl) HandleValidateModel(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	description := c.FormValue("description")
	if description == "" {
		return NewValidationError("description")
	}

	setup := c.FormValue("setup_instructions")
	if setup == "" {
		return NewValidationError("setup_instructions")
	}

	// Name check happens before any bytes are touched; a non-ZIP upload is
	// a structured rejection, not an error status.
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".zip") {
		return respondVerdict(c, validate.Rejection("File must be a ZIP archive"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read uploaded file", err)
	}

	verdict, err := h.pipeline.Run(c.Request().Context(), validate.Request{
		FileName:          fileHeader.Filename,
		Data:              data,
		Description:       description,
		SetupInstructions: setup,
	})
	if err != nil {
		return NewInternalError("model validation failed", err)
	}

	return respondVerdict(c, verdict)
}

// HandleAIPrompt forwards a raw prompt to the analysis backend and returns
// its reply. Backend failures come back as an error field, not an error
// status.
func (h *ValidateHandlerImpl) HandleAIPrompt(c echo.Context) error {
	var req aiPromptRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if req.Prompt == "" {
		return NewValidationError("prompt")
	}

	reply, err := h.completer.Complete(c.Request().Context(), req.Prompt)
	if err != nil {
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) {
			return c.JSON(http.StatusOK, map[string]string{"error": statusErr.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"error": "Error in AI response: " + err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"response": reply})
}

// respondVerdict writes a verdict as JSON, or MessagePack when the client
// asks for it.
func respondVerdict(c echo.Context, verdict *models.ValidationVerdict) error {
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), msgpackMIME) {
		encoded, err := msgpack.Marshal(verdict)
		if err != nil {
			return NewInternalError("failed to encode verdict", err)
		}
		return c.Blob(http.StatusOK, msgpackMIME, encoded)
	}
	return c.JSON(http.StatusOK, verdict)
}

// Request/Response types

type aiPromptRequest struct {
	Prompt string `json:"prompt"`
}
