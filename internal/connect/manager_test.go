package connect

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/flow-monitor/internal/clock"
	"github.com/sweeney/flow-monitor/internal/link"
	"github.com/sweeney/flow-monitor/internal/session"
)

func testConfig() Config {
	return Config{
		SSID:         "HomeNet",
		Credential:   "secret",
		Host:         "collector.local",
		Port:         8000,
		Path:         "/ws/flow-reading/",
		PollInterval: 500 * time.Millisecond,
		MaxAttempts:  30,
	}
}

// newTestManager wires a Manager with fakes and a recording sleep.
func newTestManager(cfg Config, l *link.FakeAssociator, c *clock.FakeClock, ch *session.FakeChannel, r *FakeRestarter) (*Manager, *[]time.Duration) {
	var slept []time.Duration
	cfg.Sleep = func(d time.Duration) { slept = append(slept, d) }
	return NewManager(cfg, l, c, ch, r), &slept
}

func TestEstablishHappyPath(t *testing.T) {
	l := link.NewFakeAssociator()
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	ch := session.NewFakeChannel()
	r := NewFakeRestarter()

	m, _ := newTestManager(testConfig(), l, c, ch, r)

	state := m.Establish()
	if state != StateLive {
		t.Fatalf("expected LIVE, got %s", state)
	}
	if m.State() != StateLive {
		t.Errorf("State(): expected LIVE, got %s", m.State())
	}

	if l.Resets != 1 {
		t.Errorf("expected 1 link reset, got %d", l.Resets)
	}
	if l.Associations != 1 {
		t.Errorf("expected 1 association request, got %d", l.Associations)
	}
	if l.SSID != "HomeNet" || l.Credential != "secret" {
		t.Errorf("association credentials: got %q/%q", l.SSID, l.Credential)
	}
	if r.Restarts != 0 {
		t.Errorf("expected no restarts, got %d", r.Restarts)
	}
	if len(ch.Connects) != 1 || ch.Connects[0] != "collector.local:8000 /ws/flow-reading/" {
		t.Errorf("connects: got %v", ch.Connects)
	}
	if !ch.IsConnected() {
		t.Error("expected channel connected")
	}
}

func TestEstablishSlowAssociation(t *testing.T) {
	l := link.NewFakeAssociator()
	l.ConnectAfter = 5 // associated on the 6th poll
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	ch := session.NewFakeChannel()
	r := NewFakeRestarter()

	m, slept := newTestManager(testConfig(), l, c, ch, r)

	if state := m.Establish(); state != StateLive {
		t.Fatalf("expected LIVE, got %s", state)
	}
	if l.Polls != 6 {
		t.Errorf("expected 6 link polls, got %d", l.Polls)
	}
	// 5 failed polls → 5 sleeps at the configured interval.
	count := 0
	for _, d := range *slept {
		if d == 500*time.Millisecond {
			count++
		}
	}
	if count != 5 {
		t.Errorf("expected 5 poll sleeps, got %d (%v)", count, *slept)
	}
}

func TestEstablishAssociationExhaustionRestarts(t *testing.T) {
	l := link.NewFakeAssociator()
	l.ConnectAfter = -1 // never associates
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	ch := session.NewFakeChannel()
	r := NewFakeRestarter()

	m, _ := newTestManager(testConfig(), l, c, ch, r)

	state := m.Establish()
	if state != StateLinkAssociating {
		t.Errorf("expected to stop in LINK_ASSOCIATING, got %s", state)
	}

	// Ceiling of 30 → give up after the 31st failed poll, exactly one restart.
	if l.Polls != 31 {
		t.Errorf("expected 31 polls before restart, got %d", l.Polls)
	}
	if r.Restarts != 1 {
		t.Fatalf("expected exactly 1 restart, got %d", r.Restarts)
	}
	if r.Reasons[0] != "link association exhausted" {
		t.Errorf("restart reason: got %q", r.Reasons[0])
	}

	// No later stage ran: no sync attempts, no session activity.
	if c.Syncs != 0 {
		t.Errorf("expected no clock syncs, got %d", c.Syncs)
	}
	if len(ch.Connects) != 0 {
		t.Errorf("expected no session connects, got %v", ch.Connects)
	}
	if ch.SendAttempts != 0 {
		t.Errorf("expected no sends, got %d", ch.SendAttempts)
	}
}

func TestEstablishClockSyncExhaustionRestarts(t *testing.T) {
	l := link.NewFakeAssociator()
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	c.SyncError = errors.New("unreachable") // never syncs
	ch := session.NewFakeChannel()
	r := NewFakeRestarter()

	m, _ := newTestManager(testConfig(), l, c, ch, r)

	state := m.Establish()
	if state != StateClockSyncing {
		t.Errorf("expected to stop in CLOCK_SYNCING, got %s", state)
	}
	if r.Restarts != 1 {
		t.Fatalf("expected exactly 1 restart, got %d", r.Restarts)
	}
	if r.Reasons[0] != "clock sync exhausted" {
		t.Errorf("restart reason: got %q", r.Reasons[0])
	}
	if len(ch.Connects) != 0 {
		t.Errorf("expected no session connects, got %v", ch.Connects)
	}
}

func TestEstablishSlowClockSync(t *testing.T) {
	l := link.NewFakeAssociator()
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	c.SyncAfter = 10
	ch := session.NewFakeChannel()
	r := NewFakeRestarter()

	m, _ := newTestManager(testConfig(), l, c, ch, r)

	if state := m.Establish(); state != StateLive {
		t.Fatalf("expected LIVE, got %s", state)
	}
	if c.Syncs != 11 {
		t.Errorf("expected 11 sync attempts, got %d", c.Syncs)
	}
	if r.Restarts != 0 {
		t.Errorf("expected no restarts, got %d", r.Restarts)
	}
}

// TestEstablishSessionFailureStillLive verifies the documented asymmetry: a
// failed session connect does not restart the device, and the machine still
// reaches Live with an unconnected channel.
func TestEstablishSessionFailureStillLive(t *testing.T) {
	l := link.NewFakeAssociator()
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	ch := session.NewFakeChannel()
	ch.ConnectError = errors.New("connection refused")
	r := NewFakeRestarter()

	m, _ := newTestManager(testConfig(), l, c, ch, r)

	state := m.Establish()
	if state != StateLive {
		t.Fatalf("expected LIVE despite connect failure, got %s", state)
	}
	if r.Restarts != 0 {
		t.Errorf("expected no restarts, got %d", r.Restarts)
	}
	if ch.IsConnected() {
		t.Error("expected channel unconnected")
	}

	// Exactly one connect attempt — no retry loop for the session stage.
	if len(ch.Connects) != 1 {
		t.Errorf("expected 1 connect attempt, got %d", len(ch.Connects))
	}

	// Later sends fail without any restart.
	if err := ch.Send([]byte("x")); err == nil {
		t.Error("expected send on unconnected channel to fail")
	}
	if r.Restarts != 0 {
		t.Errorf("expected still no restarts, got %d", r.Restarts)
	}
}

func TestEstablishRegistersMessageCallback(t *testing.T) {
	l := link.NewFakeAssociator()
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	ch := session.NewFakeChannel()
	r := NewFakeRestarter()

	m, _ := newTestManager(testConfig(), l, c, ch, r)
	m.Establish()

	// The Live callback logs only; delivery through Poll must not panic
	// and must drain the queue.
	ch.Inbound = []string{"hello"}
	ch.Poll()
	if len(ch.Delivered) != 1 {
		t.Errorf("expected 1 delivered message, got %d", len(ch.Delivered))
	}
}

func TestEstablishResetErrorIsNonFatal(t *testing.T) {
	l := link.NewFakeAssociator()
	l.ResetError = errors.New("no active connection")
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	ch := session.NewFakeChannel()
	r := NewFakeRestarter()

	m, _ := newTestManager(testConfig(), l, c, ch, r)
	if state := m.Establish(); state != StateLive {
		t.Errorf("expected LIVE despite reset error, got %s", state)
	}
}

func TestEstablishScanErrorIsNonFatal(t *testing.T) {
	l := link.NewFakeAssociator()
	l.ScanError = errors.New("busy")
	c := clock.NewFakeClock(time.Date(2024, 1, 5, 14, 32, 7, 0, time.UTC))
	ch := session.NewFakeChannel()
	r := NewFakeRestarter()

	m, _ := newTestManager(testConfig(), l, c, ch, r)
	if state := m.Establish(); state != StateLive {
		t.Errorf("expected LIVE despite scan error, got %s", state)
	}
}
