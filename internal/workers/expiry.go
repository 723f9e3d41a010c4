// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
)

// ExpiryWorker periodically deletes expired records from every registered
// purger.
type ExpiryWorker struct {
	interval time.Duration
	purgers  map[string]Purger
	log      *logger.Logger
	now      func() time.Time
}

func NewExpiryWorker(interval time.Duration, log *logger.Logger, purgers map[string]Purger) *ExpiryWorker {
	return &ExpiryWorker{
		interval: interval,
		purgers:  purgers,
		log:      log.GetChildLogger(),
		now:      time.Now,
	}
}

// Run starts the sweep loop in a new goroutine. The first sweep happens one
// interval after Run is called.
func (w *ExpiryWorker) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				w.log.Debug().Str("func", "*ExpiryWorker.Run").Msg("expiry worker stopped")
				return
			case <-ticker.C:
				w.Sweep(ctx)
			}
		}
	}()
}

// Sweep runs every purger once. Failures are logged and do not stop the
// remaining purgers.
func (w *ExpiryWorker) Sweep(ctx context.Context) {
	now := w.now().UTC()
	for _, name := range slices.Sorted(maps.Keys(w.purgers)) {
		n, err := w.purgers[name].PurgeExpired(ctx, now)
		if err != nil {
			w.log.Err(err).Str("func", "*ExpiryWorker.Sweep").Str("target", name).Msg("error purging expired records")
			continue
		}
		if n > 0 {
			w.log.Info().Str("target", name).Int64("deleted", n).Msg("expired records purged")
		}
	}
}
