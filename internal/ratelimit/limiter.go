package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
)

// New builds the limiter selected by cfg.Backend. The Redis backend is
// always wrapped in a [FallbackLimiter] over a [MemoryLimiter]; the returned
// close function releases the Redis client.
func New(ctx context.Context, cfg config.RateLimit, log *logger.Logger) (Limiter, func() error, error) {
	memory := NewMemoryLimiter()
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", config.RateLimitMemory:
		return memory, noop, nil
	case config.RateLimitRedis:
	default:
		return nil, noop, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("func", "ratelimit.New").
			Str("addr", cfg.Redis.Addr).
			Msg("redis is not reachable yet, memory limiter serves until it is")
	}

	return NewFallbackLimiter(NewRedisLimiter(client, cfg.Redis.Prefix), memory, log), client.Close, nil
}
