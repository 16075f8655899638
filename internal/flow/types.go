// Package flow contains pure measurement logic for the flow sensor.
// This package has NO external dependencies (no GPIO, network, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package flow

import "time"

// TimestampLayout is the wire format for reading timestamps.
const TimestampLayout = "02/01/2006 15:04:05"

// Reading is one flow-rate measurement ready for transmission.
// Immutable once constructed; it lives for a single send attempt.
type Reading struct {
	// Timestamp is the synchronized wall-clock time, already formatted.
	Timestamp string
	// Rate is the flow rate in litres per minute, rounded to 2 decimals.
	Rate float64
}

// DropReason explains why a tick produced no Reading.
type DropReason string

const (
	// DropNone means a Reading was produced.
	DropNone DropReason = ""
	// DropNotDue means the measurement period has not elapsed.
	DropNotDue DropReason = "NOT_DUE"
	// DropInvalidClock means the wall clock is not yet synchronized.
	// The accumulator was still drained, so the period's pulses are forfeit.
	DropInvalidClock DropReason = "INVALID_CLOCK"
)

// Drainer atomically reads and resets the pulse counter.
// Satisfied by pulse.Accumulator.
type Drainer interface {
	Drain() uint64
}

// WallClock supplies synchronized wall-clock time.
// Satisfied by clock.NTPClock.
type WallClock interface {
	// Now returns the current wall-clock time in the configured zone.
	Now() time.Time
	// Valid reports whether t represents synchronized time.
	Valid(t time.Time) bool
}
