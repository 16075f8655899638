// Package status provides a thread-safe status tracker for the flow-monitor
// daemon. It is read by the HTTP status handlers.
package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/flow-monitor/internal/connect"
	"github.com/sweeney/flow-monitor/internal/flow"
)

// Config contains daemon configuration for display.
type Config struct {
	PeriodMs    int64
	LoopMs      int64
	Calibration float64
	Transport   string
	Host        string
	Port        int
	Path        string
	HTTPAddr    string
	SSID        string
}

// Endpoint renders the collector endpoint for display.
func Endpoint(cfg Config) string {
	return fmt.Sprintf("%s:%d%s", cfg.Host, cfg.Port, cfg.Path)
}

// Counts tracks measurement outcomes since startup.
type Counts struct {
	Sent         int
	InvalidClock int
	SendFailures int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State            connect.State
	LastReading      *flow.Reading
	Counts           Counts
	SessionConnected bool
	StartTime        time.Time
	Now              time.Time
	Config           Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     connect.StateDisconnected,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetState records the connectivity state.
func (t *Tracker) SetState(state connect.State) {
	t.mu.Lock()
	t.snap.State = state
	t.mu.Unlock()
}

// RecordReading records a successfully transmitted reading.
func (t *Tracker) RecordReading(r flow.Reading) {
	t.mu.Lock()
	t.snap.LastReading = &r
	t.snap.Counts.Sent++
	t.mu.Unlock()
}

// RecordInvalidClock records a reading dropped for an unsynchronized clock.
func (t *Tracker) RecordInvalidClock() {
	t.mu.Lock()
	t.snap.Counts.InvalidClock++
	t.mu.Unlock()
}

// RecordSendFailure records a failed channel send.
func (t *Tracker) RecordSendFailure() {
	t.mu.Lock()
	t.snap.Counts.SendFailures++
	t.mu.Unlock()
}

// SetSessionConnected sets the session channel liveness.
func (t *Tracker) SetSessionConnected(connected bool) {
	t.mu.Lock()
	t.snap.SessionConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
