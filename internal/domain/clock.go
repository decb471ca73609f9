package domain

import "github.com/jonboulle/clockwork"

// clock stamps summaries and calibrations. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for processed_at and calibrated_at.
// Pass nil to restore real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
