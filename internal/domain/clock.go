package domain

import "github.com/jonboulle/clockwork"

// clock anchors synthetic series to the current year and stamps reports.
// Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the active time source.
func Clock() clockwork.Clock {
	return clock
}

// CurrentYear is the last year of a synthesized historical series.
func CurrentYear() int {
	return clock.Now().Year()
}
