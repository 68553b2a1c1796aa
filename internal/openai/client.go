// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai is a minimal chat-completions client. It sends one
// synchronous request per prompt and returns the first choice verbatim.
package openai

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

	"github.com/google/uuid"

	"github.com/bartekus/intellidb/internal/config"
	"github.com/bartekus/intellidb/internal/faults"
	"github.com/bartekus/intellidb/internal/metrics"
)

const (
	component = "openai"

	// RequestIDHeader carries a client-generated id that shows up in logs on
	// both sides.
	RequestIDHeader = "X-Client-Request-Id"

	// maxErrorBody bounds how much of a failed response is kept.
	maxErrorBody = 4 << 10
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body. Field order matches the wire format.
type ChatRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
}

type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// StatusError is returned (wrapped in a request fault) for non-2xx replies.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, body)
}

type Client struct {
	cfg       config.Config
	http      *http.Client
	log       *slog.Logger
	metrics   *metrics.Recorder
	requestID func() string
}

type Option func(*Client)

// WithHTTPClient replaces the default client, whose timeout comes from the
// configuration.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// WithRequestID overrides the request id generator.
func WithRequestID(fn func() string) Option {
	return func(c *Client) { c.requestID = fn }
}

func New(cfg config.Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	c := &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: timeout},
		log:       slog.New(slog.DiscardHandler),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute sends prompt as a single user message and returns the content of
// the first choice. It never retries.
func (c *Client) Execute(ctx context.Context, prompt string, maxTokens int) (string, error) {
	const op = "openai.Execute"

	if strings.TrimSpace(prompt) == "" {
		return "", faults.New(faults.KindValidation, op, "prompt is empty")
	}
	if maxTokens <= 0 {
		return "", faults.Newf(faults.KindValidation, op, "max tokens must be positive, got %d", maxTokens)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		c.metrics.IncError(component, "missing_api_key")
		return "", faults.New(faults.KindConfiguration, op, "OpenAI API key is not provided in the configuration file")
	}

	body, err := json.Marshal(ChatRequest{
		Model:            c.cfg.Model,
		Messages:         []Message{{Role: "user", Content: prompt}},
		MaxTokens:        maxTokens,
		Temperature:      c.cfg.Temperature,
		FrequencyPenalty: c.cfg.FrequencyPenalty,
	})
	if err != nil {
		c.metrics.IncError(component, "marshal_request")
		return "", faults.Wrap(faults.KindRequest, op, "encoding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		c.metrics.IncError(component, "create_request")
		return "", faults.Wrap(faults.KindRequest, op, "creating request", err)
	}

	id := c.requestID()
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, id)

	c.metrics.IncRequest(c.cfg.Model)
	log := c.log.With(slog.String("model", c.cfg.Model), slog.String("request_id", id))
	log.DebugContext(ctx, "sending completion request", slog.Int("max_tokens", maxTokens))

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	c.metrics.ObserveDuration(c.cfg.Model, elapsed)
	if err != nil {
		c.metrics.IncError(component, "http_do")
		return "", faults.Wrap(faults.KindRequest, op, "sending request", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug("close body", slog.Any("error", err))
		}
	}()

	log.DebugContext(ctx, "completion response",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", elapsed),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.metrics.IncError(component, fmt.Sprintf("status_%d", resp.StatusCode))
		return "", faults.Wrap(faults.KindRequest, op, "completion request failed",
			&StatusError{StatusCode: resp.StatusCode, Body: string(raw)})
	}

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.metrics.IncError(component, "decode_response")
		return "", faults.Wrap(faults.KindRequest, op, "decoding response", err)
	}
	if len(out.Choices) == 0 {
		c.metrics.IncError(component, "no_choices")
		return "", faults.New(faults.KindRequest, op, "invalid response format: no choices")
	}

	return out.Choices[0].Message.Content, nil
}
