// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
)

// countingWorker records how many times Run was called.
type countingWorker struct {
	runs atomic.Int32
}

func (w *countingWorker) Run(context.Context) {
	w.runs.Add(1)
}

type stubPurger struct {
	mu    sync.Mutex
	calls []time.Time
	n     int64
	err   error
}

func (p *stubPurger) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, now)
	return p.n, p.err
}

func (p *stubPurger) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// ── Workers ──────────────────────────────────────────────────────────────

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1, w2 := &countingWorker{}, &countingWorker{}

	ws := &Workers{workers: []Worker{w1, w2}}
	ws.Run(context.Background())

	assert.EqualValues(t, 1, w1.runs.Load())
	assert.EqualValues(t, 1, w2.runs.Load())
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := &Workers{}
	assert.NotPanics(t, func() { ws.Run(context.Background()) })
}

// ── ExpiryWorker ─────────────────────────────────────────────────────────

func TestExpiryWorker_SweepContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger("test", logger.WithOutput(&buf), logger.WithLevel("debug"))

	failing := &stubPurger{err: errors.New("db down")}
	ok := &stubPurger{n: 3}
	w := NewExpiryWorker(time.Minute, log, map[string]Purger{"sessions": failing, "verification_tokens": ok})
	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	w.now = func() time.Time { return fixed }

	w.Sweep(context.Background())

	require.Equal(t, 1, failing.callCount())
	require.Equal(t, 1, ok.callCount())
	assert.Equal(t, time.UTC, ok.calls[0].Location())
	assert.True(t, fixed.Equal(ok.calls[0]))
	assert.Contains(t, buf.String(), "error purging expired records")
	assert.Contains(t, buf.String(), `"deleted":3`)
}

func TestExpiryWorker_RunStopsOnCancel(t *testing.T) {
	p := &stubPurger{}
	w := NewExpiryWorker(5*time.Millisecond, logger.Nop(), map[string]Purger{"sessions": p})

	ctx, cancel := context.WithCancel(context.Background())
	w.Run(ctx)

	assert.Eventually(t, func() bool { return p.callCount() >= 2 }, time.Second, time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	stopped := p.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, p.callCount())
}
