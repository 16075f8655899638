package flow

import (
	"math"
	"time"
)

// Sampler derives periodic flow-rate readings from the pulse accumulator.
// Tick is driven by the main loop with a monotonic now; the sampler decides
// when a period has elapsed.
type Sampler struct {
	period      time.Duration
	calibration float64
	counter     Drainer
	wall        WallClock

	lastDrain time.Time
}

// NewSampler creates a Sampler. The startTime establishes the first period
// boundary; calibration is the sensor's pulses-per-(L/min) constant.
func NewSampler(period time.Duration, calibration float64, startTime time.Time, counter Drainer, wall WallClock) *Sampler {
	return &Sampler{
		period:      period,
		calibration: calibration,
		counter:     counter,
		wall:        wall,
		lastDrain:   startTime,
	}
}

// Tick runs one measurement cycle against the monotonic time now.
//
// Before a full period has elapsed it is a no-op (DropNotDue, counter
// untouched). Once due it drains the accumulator unconditionally, then
// gates on wall-clock validity: an unsynchronized clock forfeits the
// period's measurement (DropInvalidClock) rather than emitting a reading
// with a bogus timestamp. Pulses are never double counted — the next
// period accumulates from zero either way.
func (s *Sampler) Tick(now time.Time) (*Reading, DropReason) {
	elapsed := now.Sub(s.lastDrain)
	if elapsed < s.period {
		return nil, DropNotDue
	}
	s.lastDrain = now

	count := s.counter.Drain()
	rate := Rate(count, elapsed, s.calibration)

	wall := s.wall.Now()
	if !s.wall.Valid(wall) {
		return nil, DropInvalidClock
	}

	return &Reading{
		Timestamp: wall.Format(TimestampLayout),
		Rate:      rate,
	}, DropNone
}

// Rate converts a pulse count over an elapsed interval into a flow rate.
// elapsed is always >= the configured period, so the divisor is never zero.
func Rate(count uint64, elapsed time.Duration, calibration float64) float64 {
	pulseHz := float64(count) * 1000.0 / float64(elapsed.Milliseconds())
	return round2(pulseHz / calibration)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
