// Package clock abstracts the timer operations the widgets depend on.
// The stopwatch ticker is driven through Clock so tests can step time
// deterministically with testutil.MockClock.
package clock

import "time"

// Clock schedules callbacks and reports the current time.
type Clock interface {
	// AfterFunc calls f in its own goroutine once d has elapsed.
	// The returned Timer cancels the call if it has not fired yet.
	AfterFunc(d time.Duration, f func()) Timer
	// Now returns the current time.
	Now() time.Time
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports false when the
	// callback already fired or was already stopped. A false result means
	// the callback may be running concurrently with the caller.
	Stop() bool
}

// RealClock is the wall-clock implementation backed by the time package.
type RealClock struct{}

// NewRealClock returns a RealClock.
func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return &realTimer{timer: time.AfterFunc(d, f)}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

type realTimer struct {
	timer *time.Timer
}

func (t *realTimer) Stop() bool {
	return t.timer.Stop()
}

// Default returns c when non-nil, otherwise a RealClock. Constructors
// accept an optional clock and use this to fill it in.
func Default(c Clock) Clock {
	if c == nil {
		return NewRealClock()
	}
	return c
}
