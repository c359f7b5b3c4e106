// ABOUTME: Per-key token-bucket rate limiter built on golang.org/x/time/rate.
// ABOUTME: Independent quotas per key; rejections carry a retry-after hint.

package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration.
type Config struct {
	MaxRequests int           // consumptions allowed per window per key
	Window      time.Duration // rolling window length
}

// Limiter enforces an independent quota per key.
type Limiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// New creates a Limiter from the given configuration.
// Burst equals MaxRequests so a full window's quota may be consumed at once;
// tokens refill continuously at MaxRequests per Window.
func New(cfg Config) *Limiter {
	return &Limiter{
		limit:   rate.Limit(float64(cfg.MaxRequests) / cfg.Window.Seconds()),
		burst:   cfg.MaxRequests,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Consume attempts to take one token for key. On rejection, retryAfter is a
// positive duration after which a retry can succeed. Decisions for one key
// never affect any other key.
func (l *Limiter) Consume(key string) (allowed bool, retryAfter time.Duration) {
	bucket := l.bucket(key)

	reservation := bucket.Reserve()
	delay := reservation.Delay()
	if delay > 0 {
		// Over quota: give the token back and tell the caller when to retry.
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = bucket
	}
	return bucket
}
