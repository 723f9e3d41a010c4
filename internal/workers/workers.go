package workers

import (
	"context"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/service"
)

// DefaultGCInterval is used when the configured interval is not positive.
const DefaultGCInterval = time.Hour

type Workers struct {
	workers []Worker
}

// NewWorkers registers the expiry sweep of verification tokens and sessions.
func NewWorkers(services *service.Services, cfg config.Workers, log *logger.Logger) *Workers {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = DefaultGCInterval
	}

	return &Workers{workers: []Worker{
		NewExpiryWorker(interval, log, map[string]Purger{
			"verification_tokens": services.Tokens,
			"sessions":            services.Sessions,
		}),
	}}
}

func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}
