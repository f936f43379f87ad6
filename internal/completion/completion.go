// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion generates text through an OpenAI-compatible chat
// completion API. Credentials and models are paired in an ordered pool and
// rotated round-robin across calls, spreading load over per-key rate limits.
// See docs/ARCHITECTURE § Generation.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint base.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// defaultMaxAttempts bounds total attempts per Complete call.
const defaultMaxAttempts = 3

// rateLimitDelay is how long to wait before rotating after an HTTP 429.
// Tests shorten it.
var rateLimitDelay = time.Second

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion call. Zero values select defaults.
type Options struct {
	// Model overrides the pool's rotating model when non-empty.
	Model string

	// Temperature is the sampling temperature (default 0.5). Set
	// HasTemperature to pass an explicit zero.
	Temperature    float64
	HasTemperature bool

	// MaxTokens bounds the response length (default 2048).
	MaxTokens int

	// TopP is the nucleus sampling cutoff (default 1).
	TopP float64
}

// Client issues chat completions against one endpoint using a rotating
// credential/model pool. Safe for concurrent use.
type Client struct {
	baseURL     string
	pool        []types.PoolEntry
	maxAttempts int
	cursor      atomic.Uint64
	client      *http.Client
	logger      *zap.Logger
}

// NewClient builds a completion client. The pool must not be empty.
func NewClient(cfg types.CompletionConfig, logger *zap.Logger) (*Client, error) {
	if len(cfg.Pool) == 0 {
		return nil, fmt.Errorf("completion pool is empty")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		baseURL:     baseURL,
		pool:        cfg.Pool,
		maxAttempts: maxAttempts,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}, nil
}

// nextEntry takes the next pool entry. The cursor is a single atomic
// counter, so concurrent callers never reuse a position.
func (c *Client) nextEntry() types.PoolEntry {
	n := c.cursor.Add(1) - 1
	return c.pool[n%uint64(len(c.pool))]
}

type completionRequest struct {
	Messages         []Message `json:"messages"`
	Model            string    `json:"model"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete returns the model's reply to messages. Each attempt rotates to
// the next pool entry; rate limits pause briefly before rotating, and model
// errors (HTTP 400/404, e.g. a decommissioned model) rotate immediately.
// A response without content is malformed and fails the call outright.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	temperature := 0.5
	if opts.HasTemperature {
		temperature = opts.Temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	topP := opts.TopP
	if topP <= 0 {
		topP = 1
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		entry := c.nextEntry()
		model := entry.Model
		if opts.Model != "" {
			model = opts.Model
		}

		c.logger.Debug("requesting completion",
			zap.String("model", model), zap.Int("attempt", attempt+1))

		content, status, err := c.attempt(ctx, entry.Credential, completionRequest{
			Messages:    messages,
			Model:       model,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			TopP:        topP,
		})
		if err == nil {
			return content, nil
		}
		lastErr = err

		switch {
		case errMalformed(err):
			return "", err
		case status == http.StatusTooManyRequests:
			c.logger.Warn("rate limit hit, rotating to next pool entry",
				zap.String("model", model))
			select {
			case <-time.After(rateLimitDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		case status == http.StatusBadRequest || status == http.StatusNotFound:
			c.logger.Warn("model error, rotating to next pool entry",
				zap.String("model", model), zap.Error(err))
		default:
			c.logger.Warn("completion attempt failed", zap.Error(err))
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// malformedError marks a structurally invalid API response. Retrying a
// different model will not fix a broken deployment contract.
type malformedError struct{ msg string }

func (e *malformedError) Error() string { return e.msg }

func errMalformed(err error) bool {
	var me *malformedError
	return errors.As(err, &me)
}

// attempt performs one HTTP request. The returned status is zero for
// transport-level failures.
func (c *Client) attempt(ctx context.Context, credential string, body completionRequest) (string, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", 0, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("completion API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", resp.StatusCode, fmt.Errorf("completion API returned HTTP %d: %s", resp.StatusCode, msg)
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", resp.StatusCode, &malformedError{msg: fmt.Sprintf("parsing completion response: %v", err)}
	}
	if len(cr.Choices) == 0 {
		return "", resp.StatusCode, &malformedError{msg: "completion response has no choices"}
	}
	return cr.Choices[0].Message.Content, resp.StatusCode, nil
}
