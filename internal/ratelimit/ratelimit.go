// Package ratelimit throttles and cancels tree traversal requests.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter spaces traversal requests. A nil Limiter never waits but still
// honours cancellation.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns nil for a zero or negative rate. The burst is one request,
// so the first traversal starts immediately.
func New(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1)}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Limit is the configured rate, 0 when unlimited.
func (l *Limiter) Limit() float64 {
	if l == nil {
		return 0
	}
	return float64(l.limiter.Limit())
}
