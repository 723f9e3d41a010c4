// Package workers runs the background jobs of the server. A [Workers]
// aggregate starts every registered [Worker] with one call.
package workers

import (
	"context"
	"time"
)

// Worker is a background job. Run must return promptly; long-running
// workers spawn their own goroutine and stop when ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// Purger deletes records that expired before now and reports how many were
// removed.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
