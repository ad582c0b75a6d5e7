// Package clock abstracts the wall clock so callers can be tested with a
// fixed time.
package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/pdlmetrix/pdlmetrix/internal/common/clock Clock

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// DefaultClock implements Clock with the system clock.
type DefaultClock struct{}

// New returns the system clock.
func New() *DefaultClock {
	return &DefaultClock{}
}

// Now returns the current time in UTC.
func (c *DefaultClock) Now() time.Time {
	return time.Now().UTC()
}
