package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	header http.Header
	path   string
	body   []byte
}

func newTestBackend(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.header = r.Header.Clone()
		captured.path = r.URL.Path
		captured.body, _ = io.ReadAll(r.Body)

		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": reply}},
				},
			})
		}
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestCompleteSuccess(t *testing.T) {
	srv, captured := newTestBackend(t, http.StatusOK, "looks good MODEL_VALID")

	client := NewClient(Config{
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Model:    "test-model",
		SiteURL:  "http://localhost:3000",
		SiteName: "Model Validator API",
	}, nil)

	reply, err := client.Complete(context.Background(), "analyze this")
	require.NoError(t, err)
	assert.Equal(t, "looks good MODEL_VALID", reply)

	// Headers carry the credential, referer and title
	assert.Equal(t, "Bearer test-key", captured.header.Get("Authorization"))
	assert.Equal(t, "http://localhost:3000", captured.header.Get("HTTP-Referer"))
	assert.Equal(t, "Model Validator API", captured.header.Get("X-Title"))
	assert.Equal(t, "/chat/completions", captured.path)

	// Body carries the model and one user-role message
	var req chatRequest
	require.NoError(t, json.Unmarshal(captured.body, &req))
	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "analyze this", req.Messages[0].Content)
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	srv, _ := newTestBackend(t, http.StatusTooManyRequests, "")

	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)

	_, err := client.Complete(context.Background(), "x")
	require.Error(t, err)

	statusErr, ok := err.(*StatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.Equal(t, "API returned status code 429", statusErr.Error())
}

func TestCompleteTransportError(t *testing.T) {
	client := NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := client.Complete(context.Background(), "x")
	require.Error(t, err)
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := client.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestAnalyzeCodeNeverErrors(t *testing.T) {
	tests := []struct {
		name         string
		backend      func(t *testing.T) string // returns base URL
		wantContains string
	}{
		{
			name: "success passes reply through",
			backend: func(t *testing.T) string {
				srv, _ := newTestBackend(t, http.StatusOK, "fine MODEL_VALID")
				return srv.URL
			},
			wantContains: "fine MODEL_VALID",
		},
		{
			name: "status failure becomes descriptive string",
			backend: func(t *testing.T) string {
				srv, _ := newTestBackend(t, http.StatusBadGateway, "")
				return srv.URL
			},
			wantContains: "Error: API returned status code 502",
		},
		{
			name: "transport failure becomes descriptive string",
			backend: func(t *testing.T) string {
				return "http://127.0.0.1:1"
			},
			wantContains: "Error in AI analysis:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(Config{APIKey: "k", BaseURL: tt.backend(t)}, nil)
			got := client.AnalyzeCode(context.Background(), "code", RequestContext{})
			assert.Contains(t, got, tt.wantContains)
		})
	}
}

func TestBuildValidationPrompt(t *testing.T) {
	meta := RequestContext{
		Description:       "trains a digit classifier",
		SetupInstructions: "pip install deps; run train.py",
	}
	prompt := BuildValidationPrompt("import torch", meta)

	assert.Contains(t, prompt, "import torch")
	assert.Contains(t, prompt, meta.Description)
	assert.Contains(t, prompt, meta.SetupInstructions)
	assert.Contains(t, prompt, AcceptMarker)
	assert.Contains(t, prompt, RejectMarker)

	// Leniency and rubric instructions are part of the contract
	assert.Contains(t, prompt, "Be lenient")
	assert.Contains(t, prompt, "Documentation quality")
	assert.True(t, strings.Contains(prompt, "Code quality"))
}
