// Package clock provides the time source used by every timing operation of a
// meeting. Production code uses System, tests drive a Manual clock.
package clock

import "time"

type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn to run once after d. The returned Timer can be
	// stopped any number of times.
	AfterFunc(d time.Duration, fn func()) Timer
}

type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was stopped before.
	Stop() bool
}

var System Clock = systemClock{}

type systemClock struct{}

func (this systemClock) Now() time.Time {
	return time.Now()
}

func (this systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// OrSystem returns c or System if c is nil.
func OrSystem(c Clock) Clock {
	if c == nil {
		return System
	}
	return c
}
