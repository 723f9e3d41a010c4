// Package ratelimit implements the token-bucket request limiter applied to
// sensitive endpoints.
//
// Each identifier owns a bucket of MaxRequests tokens that refills
// proportionally to the time elapsed since the previous request, in whole
// tokens. A request consumes one token; an empty bucket rejects the request
// until the window has passed.
package ratelimit

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/autherr"
)

// Config describes one bucket shape.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

var (
	// DefaultConfig applies to every limited route without an override.
	DefaultConfig = Config{Window: 15 * time.Minute, MaxRequests: 100}

	RegisterConfig     = Config{Window: time.Hour, MaxRequests: 5}
	ResetRequestConfig = Config{Window: time.Hour, MaxRequests: 3}
	ResetVerifyConfig  = Config{Window: time.Hour, MaxRequests: 5}
)

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultConfig.Window
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultConfig.MaxRequests
	}
	return c
}

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	// ResetTime is the moment the bucket is guaranteed to be refilled.
	ResetTime time.Time
	// RetryAfter is set on rejected requests only.
	RetryAfter time.Duration
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, identifier string, cfg Config) (Result, error)
}

// Key builds the bucket identifier of a request.
func Key(method, path, ip string) string {
	return strings.ToUpper(method) + ":" + path + ":" + ip
}

// Enforce consumes one token of identifier and converts a rejection into an
// [autherr.CodeRateLimitExceeded] error carrying resetTime and retryAfter.
// Backend failures are returned unchanged.
func Enforce(ctx context.Context, l Limiter, identifier string, cfg Config) error {
	res, err := l.Allow(ctx, identifier, cfg)
	if err != nil {
		return err
	}
	if res.Allowed {
		return nil
	}
	return autherr.New(autherr.CodeRateLimitExceeded, autherr.ErrRateLimitExceeded.Message, map[string]any{
		"resetTime":  res.ResetTime.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"retryAfter": retryAfterSeconds(res.RetryAfter),
	})
}

func retryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// refill applies the token-bucket replenishment rule.
func refill(tokens int, last, now time.Time, cfg Config) int {
	elapsed := now.Sub(last)
	if elapsed <= 0 {
		return tokens
	}
	add := int(math.Floor(float64(elapsed) / float64(cfg.Window) * float64(cfg.MaxRequests)))
	return min(cfg.MaxRequests, tokens+add)
}
