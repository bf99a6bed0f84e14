package core

import (
	"math"
	"time"
)

// Clock returns the current time; injected where "today" matters.
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// Date truncates t to midnight in its own location
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns whole days from a to b (negative when b is before a)
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Date(b).Sub(Date(a)).Hours() / 24))
}
