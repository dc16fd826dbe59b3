package payment

import "time"

// PinReferenceClock fixes the reference clock until the returned func runs.
func PinReferenceClock(at time.Time) (restore func()) {
	prev := now
	now = func() time.Time { return at }
	return func() { now = prev }
}
