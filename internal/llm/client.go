// Package llm is a thin client for the Groq chat-completions API
// (OpenAI-compatible). Generators hand it a system/user prompt pair and get
// back the raw completion text; JSON extraction lives in fence.go.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devicerevive/secondlife/pkg/httpclient"
)

const defaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("llm: api key not configured")

// Client calls the chat-completions endpoint.
type Client struct {
	http    *httpclient.Client
	apiKey  string
	baseURL string
}

// Config configures the client.
type Config struct {
	APIKey  string
	BaseURL string // overridable for tests
	Timeout time.Duration
}

// NewClient creates an LLM client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	hc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, MaxRedirects: 3})
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	return &Client{http: hc, apiKey: cfg.APIKey, baseURL: cfg.BaseURL}, nil
}

// Configured reports whether an API key is available. Used by the server's
// pre-flight check.
func (c *Client) Configured() bool { return c.apiKey != "" }

// ContentPart is one element of a multimodal user message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps a data-URL image reference.
type ImageURL struct {
	URL string `json:"url"`
}

// ChatRequest describes one completion call. Exactly one of User or Parts
// carries the user message; Parts takes precedence when both are set.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Parts       []ContentPart
	Temperature float32
	MaxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat executes one chat completion and returns the trimmed reply text.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	var userContent any = req.User
	if len(req.Parts) > 0 {
		userContent = req.Parts
	}

	body, err := json.Marshal(chatPayload{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: userContent},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("llm: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", errors.New("llm: empty completion")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
