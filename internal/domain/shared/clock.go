package shared

import "time"

// Clock supplies the current time to return-window and expiry calculations.
// Injected so those calculations are deterministic under test.
type Clock interface {
	// Now returns the current instant
	Now() time.Time
	// Today returns the current date truncated to midnight UTC
	Today() time.Time
}

// SystemClock is the production Clock backed by the wall clock
type SystemClock struct{}

// Now returns the current instant
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Today returns the current date truncated to midnight UTC
func (SystemClock) Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// FixedClock is a Clock pinned to a single instant, for tests
type FixedClock struct {
	Instant time.Time
}

// Now returns the pinned instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}

// Today returns the pinned instant truncated to midnight UTC
func (c FixedClock) Today() time.Time {
	return c.Instant.UTC().Truncate(24 * time.Hour)
}
