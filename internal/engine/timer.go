package engine

import "time"

// timer is a repeating countdown advanced by explicit deltas instead of the
// wall clock, so the scheduler can be driven by ticks.
type timer struct {
	period  time.Duration
	elapsed time.Duration
}

func newTimer(period time.Duration) timer {
	return timer{period: period}
}

// tick advances the timer and reports whether it fired. It fires at most once
// per call however large d is.
func (t *timer) tick(d time.Duration) bool {
	t.elapsed += d
	if t.elapsed < t.period {
		return false
	}
	t.elapsed -= t.period
	if t.elapsed >= t.period {
		t.elapsed = 0
	}
	return true
}

func (t *timer) reset() { t.elapsed = 0 }

func (t *timer) setPeriod(d time.Duration) {
	t.period = d
	t.elapsed = 0
}
