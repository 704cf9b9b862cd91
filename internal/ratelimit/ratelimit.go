// Package ratelimit provides process-wide admission control.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter admits or rejects the next request.
type Limiter interface {
	Allow(ctx context.Context) Decision
}

// Local is an in-process token bucket holding max tokens that refills at
// max per window.
type Local struct {
	limiter *rate.Limiter
	max     int
	window  time.Duration
}

func NewLocal(limit int, window time.Duration) *Local {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Local{
		limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
		max:     limit,
		window:  window,
	}
}

func (l *Local) Allow(_ context.Context) Decision {
	now := time.Now()
	ok := l.limiter.AllowN(now, 1)
	tokens := l.limiter.TokensAt(now)
	remaining := max(int(tokens), 0)

	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) * float64(l.window) / float64(l.max)))
	}
	return Decision{Allowed: ok, Limit: l.max, Remaining: remaining, ResetAt: reset}
}
