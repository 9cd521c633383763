// Package ollama is the model provider adapter for a local Ollama server.
//
// It implements embedding, model listing and pulling, and streamed chat over
// the Ollama HTTP API. Requests are rate limited, retried with exponential
// backoff on transport errors, 429 and 5xx responses, and guarded by a
// circuit breaker so a dead server fails fast.
package ollama

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

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/core/ports/driven"
	"github.com/custodia-labs/docassist/internal/logger"
)

// Ensure Client implements the provider interfaces.
var (
	_ driven.EmbeddingProvider = (*Client)(nil)
	_ driven.ChatProvider      = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL           = "http://localhost:11434"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 10
	DefaultMaxRetries        = 3
	DefaultRetryInterval     = 500 * time.Millisecond
)

// Config holds configuration for the Ollama client.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Timeout bounds non-streaming requests (default: 30s). Streaming
	// requests (pull, chat) are bounded by their context only.
	Timeout time.Duration

	// RequestsPerSecond limits the request rate (default: 10). Negative disables limiting.
	RequestsPerSecond float64

	// MaxRetries is the number of retries after the first attempt (default: 3).
	// Negative disables retries.
	MaxRetries int

	// RetryInterval is the initial backoff interval (default: 500ms).
	RetryInterval time.Duration
}

// Client talks to an Ollama server.
type Client struct {
	http          *http.Client
	stream        *http.Client
	baseURL       string
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker
	maxRetries    uint64
	retryInterval time.Duration
}

// New creates a new Ollama client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	return &Client{
		http:          &http.Client{Timeout: cfg.Timeout},
		stream:        &http.Client{},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		limiter:       rate.NewLimiter(limit, burst),
		breaker:       newBreaker(),
		maxRetries:    uint64(max(cfg.MaxRetries, 0)),
		retryInterval: cfg.RetryInterval,
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ollama",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
		// Client errors mean the server is up.
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code < http.StatusInternalServerError
			}
			return err == nil
		},
	})
}

// statusError is a non-200 response from the server.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ollama error (status %d): %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// Unwrap maps "model not found" responses to domain.ErrModelNotFound.
func (e *statusError) Unwrap() error {
	if e.code == http.StatusNotFound && strings.Contains(strings.ToLower(e.body), "not found") {
		return domain.ErrModelNotFound
	}
	return nil
}

// do sends a JSON request and returns a 200 response whose body the caller
// must close. streaming selects the client without a whole-request timeout.
func (c *Client) do(ctx context.Context, method, path string, body any, streaming bool) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	httpClient := c.http
	if streaming {
		httpClient = c.stream
	}

	var resp *http.Response
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var reqBody io.Reader = http.NoBody
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		out, err := c.breaker.Execute(func() (interface{}, error) {
			r, err := httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			if r.StatusCode != http.StatusOK {
				defer r.Body.Close()
				b, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
				return nil, &statusError{code: r.StatusCode, body: strings.TrimSpace(string(b))}
			}
			return r, nil
		})
		if err != nil {
			var se *statusError
			switch {
			case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
				return backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err))
			case errors.As(err, &se):
				if se.retryable() {
					logger.Debug("ollama %s %s: status %d, retrying", method, path, se.code)
					return se
				}
				return backoff.Permanent(se)
			case ctx.Err() != nil:
				return backoff.Permanent(ctx.Err())
			default:
				logger.Debug("ollama %s %s: %v, retrying", method, path, err)
				return fmt.Errorf("send request: %w: %w", domain.ErrProviderUnavailable, err)
			}
		}
		resp = out.(*http.Response)
		return nil
	}

	if err := backoff.Retry(operation, c.backOff(ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
}

// getJSON issues a request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ping validates the server is reachable by checking the /api/tags endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	return nil
}
