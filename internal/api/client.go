package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BenTyson/brickx/internal/ratelimit"
)

// HeaderFunc prepares per-request headers. It runs fresh on every network
// attempt with the fully-built URL, so implementations may compute
// single-use credentials such as OAuth signatures.
type HeaderFunc func(method, fullURL string) (map[string]string, error)

// Client issues GET requests against one marketplace's base URL with rate
// limiting, per-attempt timeouts, and retries for transient failures.
type Client struct {
	baseURL    string
	headers    map[string]string
	limiter    *ratelimit.Limiter
	headerFunc HeaderFunc
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// New creates a client for the given base URL. Trailing slashes are
// stripped so paths always start with "/".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    map[string]string{"Accept": "application/json"},
		httpClient: &http.Client{},
		logger:     slog.Default(),
		maxRetries: 3,
		retryDelay: time.Second,
		timeout:    30 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL overrides the base URL, mainly for pointing an adapter at a
// test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHeader adds a static header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithRateLimiter sets the limiter acquired before every network attempt.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithHeaderFunc sets the per-attempt header preparation hook.
func WithHeaderFunc(f HeaderFunc) Option {
	return func(c *Client) {
		c.headerFunc = f
	}
}

// WithRetries sets the retry cap and initial backoff delay.
func WithRetries(max int, initialDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max
		c.retryDelay = initialDelay
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Get issues a GET against baseURL+path and unmarshals the JSON response
// into result. Retryable failures are retried up to the configured cap with
// exponential backoff and jitter; the last error is surfaced.
func (c *Client) Get(ctx context.Context, path string, params url.Values, result any) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var lastErr *APIError

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay*time.Duration(1<<(attempt-1)) +
				time.Duration(rand.Float64()*0.5*float64(c.retryDelay))
			c.logger.Warn("retrying request",
				"url", fullURL,
				"attempt", attempt,
				"delay", delay,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			waited, err := c.limiter.Acquire(ctx)
			if err != nil {
				return err
			}
			if waited > 0 {
				c.logger.Debug("rate limiter wait",
					"limiter", c.limiter.Name(),
					"waited", waited,
				)
			}
		}

		apiErr := c.doAttempt(ctx, fullURL, result)
		if apiErr == nil {
			return nil
		}
		if !apiErr.Retryable || attempt == c.maxRetries {
			return apiErr
		}
		lastErr = apiErr
	}

	return lastErr
}

// doAttempt performs one network attempt with its own timeout.
func (c *Client) doAttempt(ctx context.Context, fullURL string, result any) *APIError {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &APIError{
			Code:    ErrUnknown,
			URL:     fullURL,
			Message: fmt.Sprintf("create request: %v", err),
		}
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.headerFunc != nil {
		extra, err := c.headerFunc(http.MethodGet, fullURL)
		if err != nil {
			return &APIError{
				Code:    ErrAuth,
				URL:     fullURL,
				Message: fmt.Sprintf("prepare headers: %v", err),
			}
		}
		for k, v := range extra {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classifyTransport(attemptCtx, fullURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.classifyTransport(attemptCtx, fullURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, fullURL)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return &APIError{
				Code:       ErrParse,
				StatusCode: resp.StatusCode,
				URL:        fullURL,
				Message:    fmt.Sprintf("unmarshal response: %v", err),
			}
		}
	}

	return nil
}

// classifyTransport maps a below-HTTP failure to TIMEOUT or NETWORK_ERROR,
// both retryable.
func (c *Client) classifyTransport(ctx context.Context, fullURL string, err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return &APIError{
			Code:      ErrTimeout,
			URL:       fullURL,
			Message:   fmt.Sprintf("request timed out after %s: %s", c.timeout, fullURL),
			Retryable: true,
		}
	}
	return &APIError{
		Code:      ErrNetwork,
		URL:       fullURL,
		Message:   fmt.Sprintf("network error: %v", err),
		Retryable: true,
	}
}
