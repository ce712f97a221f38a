package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval keeps outbound commands at roughly three per second.
const DefaultInterval = 334 * time.Millisecond

// Limiter hands out at most one permit per interval and never waits.
type Limiter struct {
	lim *rate.Limiter
	now func() time.Time
}

func New(interval time.Duration) *Limiter {
	return NewWithClock(interval, time.Now)
}

func NewWithClock(interval time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		lim: rate.NewLimiter(rate.Every(interval), 1),
		now: now,
	}
}

func (l *Limiter) TryAcquire() bool {
	return l.lim.AllowN(l.now(), 1)
}
