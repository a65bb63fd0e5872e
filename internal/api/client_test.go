package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BenTyson/brickx/internal/ratelimit"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := New("https://api.example.com/")

		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want trailing slash stripped", c.baseURL)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want 3", c.maxRetries)
		}
		if c.retryDelay != time.Second {
			t.Errorf("retryDelay = %v, want 1s", c.retryDelay)
		}
		if c.timeout != 30*time.Second {
			t.Errorf("timeout = %v, want 30s", c.timeout)
		}
		if c.headers["Accept"] != "application/json" {
			t.Errorf("Accept header = %q, want application/json", c.headers["Accept"])
		}
	})

	t.Run("options", func(t *testing.T) {
		limiter := ratelimit.New(ratelimit.Config{MaxTokens: 1, RefillAmount: 1, RefillInterval: time.Second})
		c := New("https://api.example.com",
			WithHeader("Authorization", "Bearer key"),
			WithRateLimiter(limiter),
			WithRetries(5, 2*time.Second),
			WithTimeout(10*time.Second),
		)

		if c.headers["Authorization"] != "Bearer key" {
			t.Errorf("Authorization header = %q", c.headers["Authorization"])
		}
		if c.limiter != limiter {
			t.Error("limiter not set")
		}
		if c.maxRetries != 5 || c.retryDelay != 2*time.Second {
			t.Errorf("retries = (%d, %v), want (5, 2s)", c.maxRetries, c.retryDelay)
		}
		if c.timeout != 10*time.Second {
			t.Errorf("timeout = %v, want 10s", c.timeout)
		}
	})
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{429, ErrRateLimited, true},
		{500, ErrServer, true},
		{502, ErrServer, true},
		{503, ErrServer, true},
		{401, ErrAuth, false},
		{403, ErrAuth, false},
		{404, ErrNotFound, false},
		{400, ErrUnknown, false},
		{418, ErrUnknown, false},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			err := classifyStatus(tt.status, "https://example.com/x")
			if err.Code != tt.code {
				t.Errorf("Code = %s, want %s", err.Code, tt.code)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}
}

func TestNewAPIErrorDefaults(t *testing.T) {
	if err := NewAPIError(ErrTimeout, "slow"); !err.Retryable {
		t.Error("TIMEOUT should default retryable")
	}
	if err := NewAPIError(ErrParse, "bad json"); err.Retryable {
		t.Error("PARSE_ERROR should default non-retryable")
	}
}

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "75192-1" {
			t.Errorf("id param = %q, want 75192-1", r.URL.Query().Get("id"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"value": 42}`))
	}))
	defer server.Close()

	c := New(server.URL)
	var result struct {
		Value int `json:"value"`
	}
	params := map[string][]string{"id": {"75192-1"}}
	if err := c.Get(context.Background(), "/prices", params, &result); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if result.Value != 42 {
		t.Errorf("value = %d, want 42", result.Value)
	}
}

// A permanently failing endpoint must see exactly maxRetries+1 attempts.
func TestGetRetryCeiling(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, WithRetries(3, time.Millisecond))
	err := c.Get(context.Background(), "/x", nil, nil)

	if err == nil {
		t.Fatal("Get() error = nil, want SERVER_ERROR")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Code != ErrServer {
		t.Errorf("Code = %s, want %s", apiErr.Code, ErrServer)
	}
	if got := attempts.Load(); got != 4 {
		t.Errorf("attempts = %d, want 4", got)
	}
}

func TestGetNoRetryOnPermanentError(t *testing.T) {
	for _, status := range []int{401, 404} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			var attempts atomic.Int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(status)
			}))
			defer server.Close()

			c := New(server.URL, WithRetries(3, time.Millisecond))
			err := c.Get(context.Background(), "/x", nil, nil)
			if err == nil {
				t.Fatal("Get() error = nil")
			}
			if got := attempts.Load(); got != 1 {
				t.Errorf("attempts = %d, want 1", got)
			}
		})
	}
}

func TestGetRecoversAfterTransientError(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := New(server.URL, WithRetries(3, time.Millisecond))
	var result struct {
		OK bool `json:"ok"`
	}
	if err := c.Get(context.Background(), "/x", nil, &result); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !result.OK {
		t.Error("result not decoded")
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestGetTimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New(server.URL, WithTimeout(20*time.Millisecond), WithRetries(1, time.Millisecond))
	err := c.Get(context.Background(), "/slow", nil, nil)
	if err == nil {
		t.Fatal("Get() error = nil, want TIMEOUT")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Code != ErrTimeout {
		t.Errorf("Code = %s, want %s", apiErr.Code, ErrTimeout)
	}
	if !apiErr.Retryable {
		t.Error("timeout should be retryable")
	}
}

func TestGetParseErrorNotRetried(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := New(server.URL, WithRetries(3, time.Millisecond))
	var result map[string]any
	err := c.Get(context.Background(), "/x", nil, &result)
	if err == nil {
		t.Fatal("Get() error = nil, want PARSE_ERROR")
	}
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Code != ErrParse {
		t.Fatalf("error = %v, want PARSE_ERROR", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

// Header preparation runs on every attempt so signed requests never reuse a
// nonce across retries.
func TestHeaderFuncCalledPerAttempt(t *testing.T) {
	var serverHits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-Sig") == "" {
			t.Error("missing signed header")
		}
		serverHits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var headerCalls atomic.Int64
	c := New(server.URL,
		WithRetries(2, time.Millisecond),
		WithHeaderFunc(func(method, fullURL string) (map[string]string, error) {
			n := headerCalls.Add(1)
			return map[string]string{"X-Request-Sig": strconv.FormatInt(n, 10)}, nil
		}),
	)

	if err := c.Get(context.Background(), "/x", nil, nil); err == nil {
		t.Fatal("Get() error = nil")
	}
	if got := headerCalls.Load(); got != 3 {
		t.Errorf("header preparations = %d, want 3 (one per attempt)", got)
	}
	if got := serverHits.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

// The rate limiter gates every network attempt, not just the first.
func TestLimiterAcquiredPerAttempt(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	limiter := ratelimit.New(ratelimit.Config{
		MaxTokens:      10,
		RefillAmount:   10,
		RefillInterval: time.Hour,
		Name:           "test",
	})

	c := New(server.URL, WithRetries(2, time.Millisecond), WithRateLimiter(limiter))
	if err := c.Get(context.Background(), "/x", nil, nil); err == nil {
		t.Fatal("Get() error = nil")
	}

	if got := limiter.Available(); got != 7 {
		t.Errorf("tokens remaining = %d, want 7 (3 attempts consumed)", got)
	}
}
