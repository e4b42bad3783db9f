package store

import (
	"context"

	"golang.org/x/time/rate"
)

// StatusWriter throttles status updates for one job. Checkpoints can fire in
// quick bursts under parallel runs; the channel is best-effort and
// last-write-wins, so dropping intermediate updates is fine.
type StatusWriter struct {
	store   Store
	jobID   string
	limiter *rate.Limiter
}

// NewStatusWriter allows at most maxPerSecond updates, with a burst of one.
func NewStatusWriter(s Store, jobID string, maxPerSecond float64) *StatusWriter {
	if maxPerSecond <= 0 {
		maxPerSecond = 5
	}
	return &StatusWriter{
		store:   s,
		jobID:   jobID,
		limiter: rate.NewLimiter(rate.Limit(maxPerSecond), 1),
	}
}

// Write records the status if the rate limit allows it; throttled updates
// are silently dropped.
func (w *StatusWriter) Write(ctx context.Context, status string) error {
	if !w.limiter.Allow() {
		return nil
	}
	return w.store.UpdateStatus(ctx, w.jobID, status)
}
