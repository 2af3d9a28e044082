package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialtwin/trainer/internal/config"
)

// testClient builds a client around a canned generate function, with the
// retry sleep recorded instead of slept.
func testClient(gen func(ctx context.Context, prompt string) (string, error), sleeps *[]time.Duration) *Client {
	return &Client{
		cfg:      config.AIConfig{APIKey: "test", Model: "test-model", MaxRetries: 3},
		generate: gen,
		sleep: func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		},
	}
}

func TestGenerateNoCredential(t *testing.T) {
	client, err := NewClient(context.Background(), config.AIConfig{})
	if err != nil {
		t.Fatalf("NewClient err: %v", err)
	}

	if _, err := client.Generate(context.Background(), "hello"); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestGenerateRetriesRateLimit(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	client := testClient(func(context.Context, string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("googleapi: Error 429: rate limit exceeded")
		}
		return "ok", nil
	}, &sleeps)

	got, err := client.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate err: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}

	// Linear backoff: 15s after the first attempt, 30s after the second.
	want := []time.Duration{15 * time.Second, 30 * time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), sleeps)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Fatalf("sleep %d = %s, want %s", i, sleeps[i], want[i])
		}
	}
}

func TestGenerateNonRetryableFailsImmediately(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	client := testClient(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("invalid argument")
	}, &sleeps)

	_, err := client.Generate(context.Background(), "hello")
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("expected ModelError, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
	if len(sleeps) != 0 {
		t.Fatalf("expected no sleeps, got %v", sleeps)
	}
}

func TestGenerateExhaustsRetries(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	client := testClient(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("resource exhausted: Quota exceeded")
	}, &sleeps)

	_, err := client.Generate(context.Background(), "hello")
	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("expected ModelError, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
	if len(sleeps) != 2 {
		t.Fatalf("expected 2 sleeps before giving up, got %v", sleeps)
	}
	if modelErr.Unwrap() == nil {
		t.Fatal("expected wrapped underlying error")
	}
}

func TestGenerateStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &Client{
		cfg: config.AIConfig{APIKey: "test", MaxRetries: 3},
		generate: func(context.Context, string) (string, error) {
			return "", errors.New("429 too many requests")
		},
		sleep: sleepCtx,
	}

	_, err := client.Generate(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRateLimited(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"http 429", errors.New("Error 429: too many requests"), true},
		{"quota upper case", errors.New("QUOTA exceeded for model"), true},
		{"transport failure", errors.New("connection reset by peer"), false},
		{"bad request", errors.New("Error 400: invalid request"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rateLimited(tc.err); got != tc.want {
				t.Fatalf("rateLimited(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
