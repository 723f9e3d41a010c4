package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
)

const breakerDuration = 30 * time.Second

// FallbackLimiter sends checks to a primary (Redis) limiter and switches to
// a local one while the primary is failing. After a failure the primary is
// skipped for breakerDuration.
type FallbackLimiter struct {
	primary   Limiter
	secondary Limiter
	logger    *logger.Logger
	now       func() time.Time

	mu           sync.Mutex
	breakerUntil time.Time
}

// NewFallbackLimiter constructs a FallbackLimiter.
func NewFallbackLimiter(primary, secondary Limiter, log *logger.Logger) *FallbackLimiter {
	return &FallbackLimiter{
		primary:   primary,
		secondary: secondary,
		logger:    log,
		now:       time.Now,
	}
}

func (l *FallbackLimiter) Allow(ctx context.Context, identifier string, cfg Config) (Result, error) {
	if !l.breakerActive() {
		res, err := l.primary.Allow(ctx, identifier, cfg)
		if err == nil {
			return res, nil
		}
		l.trip(err)
	}
	return l.secondary.Allow(ctx, identifier, cfg)
}

func (l *FallbackLimiter) breakerActive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.breakerUntil.IsZero() {
		return false
	}
	if l.now().Before(l.breakerUntil) {
		return true
	}
	l.breakerUntil = time.Time{}
	return false
}

func (l *FallbackLimiter) trip(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.breakerUntil = l.now().Add(breakerDuration)
	l.logger.Warn().Err(err).
		Str("func", "*FallbackLimiter.Allow").
		Msg("rate limit backend unavailable, falling back to memory")
}
