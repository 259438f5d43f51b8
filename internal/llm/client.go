// Package llm wraps the external chat-completions backend used for code
// analysis. A single bounded attempt is made per call; every failure mode is
// convertible to a displayable string so analysis errors never abort a
// validation request.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config for the chat-completions client.
type Config struct {
	APIKey   string
	BaseURL  string        // default https://openrouter.ai/api/v1
	Model    string        // backend model identifier
	SiteURL  string        // sent as HTTP-Referer
	SiteName string        // sent as X-Title
	Timeout  time.Duration // http client timeout
}

// Client calls the chat-completions endpoint. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// NewClient creates a backend client with config defaults applied.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek/deepseek-r1-0528-qwen3-8b:free"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// StatusError is returned by Complete when the backend responds with a
// non-success status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status code %d", e.Code)
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single user-role prompt and returns the first choice's
// content. It makes exactly one attempt; transport failures, non-success
// statuses and malformed bodies come back as errors for the caller to
// classify.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	req.Header.Set("X-Title", c.cfg.SiteName)

	c.log.Info("llm.request", "model", c.cfg.Model, "prompt_len", len(prompt))

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("llm.send_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	c.log.Info("llm.response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return parsed.Choices[0].Message.Content, nil
}

// AnalyzeCode runs the validation prompt over code and returns the backend's
// raw reply. Failures are folded into a descriptive string; the result is
// always displayable text and never an error.
func (c *Client) AnalyzeCode(ctx context.Context, code string, meta RequestContext) string {
	reply, err := c.Complete(ctx, BuildValidationPrompt(code, meta))
	if err != nil {
		if statusErr, ok := err.(*StatusError); ok {
			return "Error: " + statusErr.Error()
		}
		return "Error in AI analysis: " + err.Error()
	}
	return reply
}
