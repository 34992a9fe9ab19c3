package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles module reloads so that a burst of file events, such as a
// branch checkout, does not re-parse the whole workspace at once.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter allows perSecond reloads on average and burst back to back.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow takes a token if one is available now.
func (l *Limiter) Allow() bool {
	return l.bucket.Allow()
}

// Wait blocks until a token is available or ctx ends. It fails at once when
// the deadline of ctx falls before the next token.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// SetRate changes the reload rate. Tokens already in the bucket are kept.
func (l *Limiter) SetRate(perSecond float64, burst int) {
	l.bucket.SetLimit(rate.Limit(perSecond))
	l.bucket.SetBurst(burst)
}
