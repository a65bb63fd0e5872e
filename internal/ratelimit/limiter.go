package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Config holds limiter settings for one upstream source.
type Config struct {
	MaxTokens      int           // Bucket capacity
	RefillAmount   int           // Tokens added per interval
	RefillInterval time.Duration // Fixed refill window
	Name           string        // Upstream source name, for logging
}

// Limiter is a token bucket with time-based fixed-window refill.
// Safe for concurrent use.
type Limiter struct {
	mu         sync.Mutex
	tokens     int
	lastRefill time.Time

	maxTokens      int
	refillAmount   int
	refillInterval time.Duration
	name           string

	now func() time.Time // overridable in tests
}

// New creates a limiter with a full bucket.
func New(cfg Config) *Limiter {
	l := &Limiter{
		tokens:         cfg.MaxTokens,
		maxTokens:      cfg.MaxTokens,
		refillAmount:   cfg.RefillAmount,
		refillInterval: cfg.RefillInterval,
		name:           cfg.Name,
		now:            time.Now,
	}
	l.lastRefill = l.now()
	return l
}

// Name returns the upstream source this limiter is scoped to.
func (l *Limiter) Name() string { return l.name }

// Available returns the current token count after applying any due refill.
func (l *Limiter) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return l.tokens
}

// TryAcquire consumes one token if available. Non-blocking.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Acquire consumes one token, waiting for the next refill boundary when the
// bucket is empty. It returns the time actually waited (zero when a token
// was free) or the context's error if cancelled while waiting.
func (l *Limiter) Acquire(ctx context.Context) (time.Duration, error) {
	l.mu.Lock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return 0, nil
	}

	elapsed := l.now().Sub(l.lastRefill)
	wait := l.refillInterval - elapsed
	if wait < 0 {
		wait = 0
	}
	l.mu.Unlock()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(wait):
		}
	}

	l.mu.Lock()
	l.refill()
	l.tokens--
	l.mu.Unlock()

	return wait, nil
}

// refill adds refillAmount tokens per whole elapsed interval, capped at
// maxTokens. The last-refill instant advances by whole intervals rather
// than jumping to "now", so partial intervals are never lost to drift.
// Callers must hold l.mu.
func (l *Limiter) refill() {
	elapsed := l.now().Sub(l.lastRefill)
	intervals := int(elapsed / l.refillInterval)
	if intervals <= 0 {
		return
	}

	l.tokens += intervals * l.refillAmount
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}
	l.lastRefill = l.lastRefill.Add(time.Duration(intervals) * l.refillInterval)
}

// NewBrickLinkLimiter returns a limiter for the BrickLink quota:
// 5000 requests per day.
func NewBrickLinkLimiter() *Limiter {
	return New(Config{
		MaxTokens:      5000,
		RefillAmount:   5000,
		RefillInterval: 24 * time.Hour,
		Name:           "bricklink",
	})
}

// NewBrickEconomyLimiter returns a limiter for the BrickEconomy quota:
// 60 requests per minute.
func NewBrickEconomyLimiter() *Limiter {
	return New(Config{
		MaxTokens:      60,
		RefillAmount:   60,
		RefillInterval: time.Minute,
		Name:           "brickeconomy",
	})
}

// NewBrickOwlLimiter returns a limiter for the BrickOwl quota:
// 100 requests per minute.
func NewBrickOwlLimiter() *Limiter {
	return New(Config{
		MaxTokens:      100,
		RefillAmount:   100,
		RefillInterval: time.Minute,
		Name:           "brickowl",
	})
}
