package semaphore

import (
	"math"
	"strconv"
	"time"
)

type waitMode uint8

const (
	waitNone waitMode = iota
	waitBounded
	waitForever
)

// Wait bounds how long TryDecrement may block. The zero Wait never blocks.
type Wait struct {
	mode    waitMode
	timeout time.Duration
}

// NoWait makes a single attempt and returns at once.
func NoWait() Wait {
	return Wait{mode: waitNone}
}

// Within blocks for at most d. A non-positive d is the same as NoWait.
func Within(d time.Duration) Wait {
	if d <= 0 {
		return NoWait()
	}
	return Wait{mode: waitBounded, timeout: d}
}

// Forever blocks until the decrement succeeds. A holder that never
// releases hangs the caller for good, so prefer Within wherever the
// caller cannot be interrupted some other way.
func Forever() Wait {
	return Wait{mode: waitForever}
}

// maxSeconds is the longest span a time.Duration can hold, in seconds.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// Seconds converts a command-line timeout: negative means Forever, zero
// means NoWait, anything else is a bounded wait. A timeout too long for a
// time.Duration (about 292 years) is Forever.
func Seconds(s float64) Wait {
	switch {
	case s < 0, s >= maxSeconds:
		return Forever()
	case s == 0:
		return NoWait()
	}
	return Within(SecondsToDuration(s))
}

// SecondsToDuration converts s seconds to a Duration, saturating at the
// largest Duration instead of overflowing. Non-positive and NaN inputs
// give 0; positive inputs never round down to 0.
func SecondsToDuration(s float64) time.Duration {
	switch {
	case s <= 0 || math.IsNaN(s):
		return 0
	case s >= maxSeconds:
		return time.Duration(math.MaxInt64)
	}
	if d := time.Duration(s * float64(time.Second)); d > 0 {
		return d
	}
	return time.Nanosecond
}

// IsForever reports whether w has no bound.
func (w Wait) IsForever() bool {
	return w.mode == waitForever
}

// IsNoWait reports whether w is a single non-blocking attempt.
func (w Wait) IsNoWait() bool {
	return w.mode == waitNone
}

// Bounded returns the timeout and true for a bounded wait.
func (w Wait) Bounded() (time.Duration, bool) {
	return w.timeout, w.mode == waitBounded
}

func (w Wait) String() string {
	switch w.mode {
	case waitForever:
		return "forever"
	case waitBounded:
		return strconv.FormatFloat(w.timeout.Seconds(), 'g', -1, 64) + "s"
	}
	return "no-wait"
}
