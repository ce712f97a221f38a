package engine

import "time"

const (
	DefaultBackoffBase       = 2 * time.Second
	DefaultBackoffMultiplier = 1.5
	DefaultBackoffCap        = 60 * time.Second
	LobbyRetryInterval       = 30 * time.Second
)

// Backoff spaces out registration attempts after hard failures.
type Backoff struct {
	Base       time.Duration
	Current    time.Duration
	Multiplier float64
	Cap        time.Duration
	Attempts   int
}

func NewBackoff() Backoff {
	return Backoff{
		Base:       DefaultBackoffBase,
		Current:    DefaultBackoffBase,
		Multiplier: DefaultBackoffMultiplier,
		Cap:        DefaultBackoffCap,
	}
}

// Escalate records a failed attempt and stretches the interval, never past Cap.
func (b *Backoff) Escalate() time.Duration {
	b.Attempts++
	next := time.Duration(float64(b.Current) * b.Multiplier)
	if next > b.Cap {
		next = b.Cap
	}
	if next < b.Current {
		next = b.Current
	}
	b.Current = next
	return b.Current
}

// Reset returns to the base interval. Attempts are cleared too unless
// keepAttempts is set.
func (b *Backoff) Reset(keepAttempts bool) {
	b.Current = b.Base
	if !keepAttempts {
		b.Attempts = 0
	}
}
