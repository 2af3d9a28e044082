package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/socialtwin/trainer/internal/config"
)

// ErrNoCredential reports a missing model credential. Generate checks it
// before any prompt work or network attempt.
var ErrNoCredential = errors.New("model credential not configured")

// ModelError wraps the last underlying failure after retries are exhausted,
// or after the first non-retryable error.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// retryBaseWait is multiplied by the 1-indexed attempt number, giving a
// linear 15s, 30s, ... backoff on rate limits.
const retryBaseWait = 15 * time.Second

// Client invokes the configured Gemini model with retry on rate limits.
type Client struct {
	cfg      config.AIConfig
	generate func(ctx context.Context, prompt string) (string, error)
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewClient builds a model client from the supplied configuration. Without
// a credential the client is still returned and every Generate call fails
// with ErrNoCredential, so the rest of the service keeps working.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	c := &Client{cfg: cfg, sleep: sleepCtx}
	if !cfg.Enabled() {
		return c, nil
	}

	gen, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create client: %w", err)
	}

	c.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := gen.Models.GenerateContent(ctx, cfg.Model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", errors.New("empty model response")
		}
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}
	return c, nil
}

// Generate sends one prompt and returns the model's text reply. Rate-limit
// failures are retried up to the configured attempt count with a linear
// backoff; any other failure returns immediately as a ModelError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.generate == nil {
		return "", ErrNoCredential
	}

	maxRetries := c.cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 3
	}

	for attempt := 1; ; attempt++ {
		text, err := c.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !rateLimited(err) || attempt >= maxRetries {
			return "", &ModelError{Err: err}
		}

		wait := time.Duration(attempt) * retryBaseWait
		log.Printf("[ai] rate limited, retrying in %s (attempt %d/%d): %v", wait, attempt, maxRetries, err)
		if serr := c.sleep(ctx, wait); serr != nil {
			return "", serr
		}
	}
}

// rateLimited sniffs the error text for the indicators Gemini quota
// failures carry. Crude, but it matches what the API actually returns.
func rateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

// sleepCtx waits for d without blocking other in-flight requests, and
// returns early when the caller's context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
