package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript runs the same refill rule as [MemoryLimiter] atomically
// on the Redis server. The clock is passed in ARGV so every replica agrees
// with the caller.
//
// KEYS[1] bucket key; ARGV: now (ms), window (ms), max requests.
// Returns {allowed, tokens, timestamp(ms)}.
var tokenBucketScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

local state = redis.call("HMGET", KEYS[1], "ts", "tokens")
local ts = tonumber(state[1])
local tokens = tonumber(state[2])

if ts == nil or tokens == nil then
  ts = now
  tokens = max
else
  local elapsed = now - ts
  if elapsed > 0 then
    tokens = math.min(max, tokens + math.floor(elapsed / window * max))
  end
  ts = now
end

local allowed = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
end

redis.call("HSET", KEYS[1], "ts", ts, "tokens", tokens)
redis.call("PEXPIRE", KEYS[1], window)
return {allowed, tokens, ts}
`)

// RedisLimiter is a token-bucket limiter shared by every server instance.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

// NewRedisLimiter constructs a RedisLimiter. client is usually a *redis.Client.
func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
		now:    time.Now,
	}
}

// Allow consumes one token of identifier's bucket.
func (l *RedisLimiter) Allow(ctx context.Context, identifier string, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()
	now := l.now()

	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{l.prefix + identifier},
		now.UnixMilli(), cfg.Window.Milliseconds(), cfg.MaxRequests,
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit redis: %w", err)
	}
	if len(res) != 3 {
		return Result{}, errors.New("rate limit redis: unexpected response shape")
	}

	resetTime := time.UnixMilli(res[2]).Add(cfg.Window)
	if res[0] == 0 {
		return Result{
			Allowed:    false,
			ResetTime:  resetTime,
			RetryAfter: resetTime.Sub(now),
		}, nil
	}
	return Result{Allowed: true, Remaining: int(res[1]), ResetTime: resetTime}, nil
}
