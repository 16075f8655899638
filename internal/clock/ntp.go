package clock

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// NTPClock obtains wall-clock time from NTP sources. The device may boot
// with a meaningless system clock, so Now applies the offset measured by
// the last successful Sync rather than trusting the system clock.
type NTPClock struct {
	hosts   []string
	zone    *time.Location
	timeout time.Duration

	offset time.Duration
	synced bool
}

// NewNTPClock creates a clock that syncs against hosts in order.
// tzOffsetSeconds shifts the reported time into the local zone.
func NewNTPClock(tzOffsetSeconds int, hosts []string) *NTPClock {
	return &NTPClock{
		hosts:   hosts,
		zone:    time.FixedZone("local", tzOffsetSeconds),
		timeout: 2 * time.Second,
	}
}

// Sync queries the configured sources in order and records the clock offset
// from the first one that responds.
func (c *NTPClock) Sync() error {
	var lastErr error
	for _, host := range c.hosts {
		resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: c.timeout})
		if err != nil {
			lastErr = fmt.Errorf("query %s: %w", host, err)
			continue
		}
		if err := resp.Validate(); err != nil {
			lastErr = fmt.Errorf("validate %s: %w", host, err)
			continue
		}
		c.offset = resp.ClockOffset
		c.synced = true
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no sources configured")
	}
	return lastErr
}

// Now returns the offset-corrected wall-clock time in the configured zone.
// Before the first successful Sync it returns the epoch, which fails Valid.
func (c *NTPClock) Now() time.Time {
	if !c.synced {
		return time.Unix(0, 0).In(c.zone)
	}
	return time.Now().Add(c.offset).In(c.zone)
}

// Valid reports whether t represents synchronized time.
func (c *NTPClock) Valid(t time.Time) bool {
	return Valid(t)
}
