package timeutil

import "time"

// SystemClock reads wall-clock time in UTC. It satisfies the service layer's
// clock port; tests substitute a fixed clock.
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return Now()
}
