package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Engine uses it to stamp LastCalledAt when a contact is called.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
