package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
)

// fakeScripter answers EvalSha with a canned reply and records the call.
type fakeScripter struct {
	reply any
	err   error
	keys  []string
	args  []any
}

func (f *fakeScripter) call(ctx context.Context, keys []string, args ...any) *redis.Cmd {
	f.keys, f.args = keys, args
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal(f.reply)
	return cmd
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return f.call(ctx, keys, args...)
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return f.call(ctx, keys, args...)
}

func (f *fakeScripter) EvalRO(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return f.call(ctx, keys, args...)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return f.call(ctx, keys, args...)
}

func (f *fakeScripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}

func (f *fakeScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func TestRedisLimiter_Allowed(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeScripter{reply: []any{int64(1), int64(4), now.UnixMilli()}}
	l := NewRedisLimiter(f, "agentity:ratelimit:")
	l.now = func() time.Time { return now }

	res, err := l.Allow(context.Background(), "POST:/x:1.1.1.1", Config{Window: time.Second, MaxRequests: 5})
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
	assert.Equal(t, []string{"agentity:ratelimit:POST:/x:1.1.1.1"}, f.keys)
	assert.Equal(t, []any{now.UnixMilli(), int64(1000), 5}, f.args)
}

func TestRedisLimiter_Rejected(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeScripter{reply: []any{int64(0), int64(0), now.UnixMilli()}}
	l := NewRedisLimiter(f, "")
	l.now = func() time.Time { return now }

	res, err := l.Allow(context.Background(), "k", Config{Window: time.Second, MaxRequests: 5})
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)
	assert.Equal(t, now.Add(time.Second), res.ResetTime.UTC())
}

func TestRedisLimiter_BackendError(t *testing.T) {
	l := NewRedisLimiter(&fakeScripter{err: errors.New("connection refused")}, "")

	_, err := l.Allow(context.Background(), "k", DefaultConfig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit redis")
}

func TestFallbackLimiter(t *testing.T) {
	t.Run("primary healthy", func(t *testing.T) {
		primary := &stubLimiter{res: Result{Allowed: true, Remaining: 9}}
		secondary := &stubLimiter{}
		l := NewFallbackLimiter(primary, secondary, logger.Nop())

		res, err := l.Allow(context.Background(), "k", DefaultConfig)
		require.NoError(t, err)
		assert.Equal(t, 9, res.Remaining)
		assert.Zero(t, secondary.calls)
	})

	t.Run("primary failing trips the breaker", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		primary := &stubLimiter{err: errors.New("down")}
		secondary := &stubLimiter{res: Result{Allowed: true}}
		l := NewFallbackLimiter(primary, secondary, logger.Nop())
		l.now = func() time.Time { return now }

		for range 3 {
			res, err := l.Allow(context.Background(), "k", DefaultConfig)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
		assert.Equal(t, 1, primary.calls)
		assert.Equal(t, 3, secondary.calls)

		now = now.Add(breakerDuration + time.Second)
		primary.err = nil
		primary.res = Result{Allowed: true}
		_, err := l.Allow(context.Background(), "k", DefaultConfig)
		require.NoError(t, err)
		assert.Equal(t, 2, primary.calls)
	})
}
