// Package clock provides synchronized wall-clock time with abstraction for
// testing. The real implementation queries NTP sources; the fake allows
// scripting sync behavior.
package clock

import "time"

// validityThreshold is the epoch-seconds floor below which time is treated
// as not yet synchronized (16 hours past the epoch).
const validityThreshold = 8 * 3600 * 2

// Valid reports whether t represents synchronized wall-clock time.
func Valid(t time.Time) bool {
	return t.Unix() > validityThreshold
}

// Clock supplies wall-clock time and sync attempts.
type Clock interface {
	// Sync attempts one synchronization against the configured sources.
	Sync() error

	// Now returns the current wall-clock time in the configured zone.
	// Before the first successful Sync the returned time fails Valid.
	Now() time.Time

	// Valid reports whether t represents synchronized time.
	Valid(t time.Time) bool
}
