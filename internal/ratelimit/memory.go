package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// cleanupChance is the probability that a call sweeps stale buckets.
const cleanupChance = 0.1

type bucket struct {
	timestamp time.Time
	tokens    int
}

// MemoryLimiter is a process-local token-bucket limiter. Check and update of
// a bucket happen under one mutex, so concurrent requests never overspend.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	chance  func() float64
}

// MemoryOption customizes a [MemoryLimiter].
type MemoryOption func(*MemoryLimiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.now = now }
}

// WithRandom replaces the source deciding when stale buckets are swept.
func WithRandom(chance func() float64) MemoryOption {
	return func(l *MemoryLimiter) { l.chance = chance }
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter(opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		chance:  rand.Float64,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one token of identifier's bucket.
func (l *MemoryLimiter) Allow(_ context.Context, identifier string, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.chance() < cleanupChance {
		l.sweep(now, cfg.Window)
	}

	b, ok := l.buckets[identifier]
	if !ok {
		b = &bucket{timestamp: now, tokens: cfg.MaxRequests}
	} else {
		b.tokens = refill(b.tokens, b.timestamp, now, cfg)
		b.timestamp = now
	}
	l.buckets[identifier] = b

	resetTime := b.timestamp.Add(cfg.Window)
	if b.tokens <= 0 {
		return Result{
			Allowed:    false,
			ResetTime:  resetTime,
			RetryAfter: resetTime.Sub(now),
		}, nil
	}

	b.tokens--
	return Result{Allowed: true, Remaining: b.tokens, ResetTime: resetTime}, nil
}

// sweep drops buckets untouched for longer than window. Callers hold mu.
func (l *MemoryLimiter) sweep(now time.Time, window time.Duration) {
	for id, b := range l.buckets {
		if now.Sub(b.timestamp) > window {
			delete(l.buckets, id)
		}
	}
}

// Len reports the number of tracked identifiers.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
