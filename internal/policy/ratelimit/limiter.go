// Package ratelimit implements token bucket rate limiting keyed by host or API name.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/spirits-scraper/internal/metrics"
)

// Limiter manages one token bucket per key.
type Limiter struct {
	mu           sync.Mutex
	limiters     map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
}

// Config holds rate limiter configuration.
type Config struct {
	DefaultRPS   float64
	DefaultBurst int
}

// PerMinute returns a Config admitting n events per minute with a burst of one.
func PerMinute(n int) Config {
	if n <= 0 {
		return Config{}
	}
	return Config{DefaultRPS: float64(n) / 60, DefaultBurst: 1}
}

// New creates a new Limiter. A non-positive rate disables limiting.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.DefaultRPS)
	if cfg.DefaultRPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.DefaultBurst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  r,
		defaultBurst: burst,
	}
}

// Wait blocks until a token is available for key, respecting the context.
// A URL key is limited per hostname.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	key = bucketKey(key)
	l.mu.Lock()
	limiter, exists := l.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	// Immediate grants are not delays.
	if d := time.Since(start); d > time.Millisecond {
		metrics.ObserveRateLimitDelay(key, d)
	}
	return nil
}

func bucketKey(key string) string {
	u, err := url.Parse(key)
	if err != nil || u.Hostname() == "" {
		if key == "" {
			return "unknown"
		}
		return key
	}
	return u.Hostname()
}
