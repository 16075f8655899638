// Package connect brings the device from power-on to a live collector
// session: link association, clock synchronization, session establishment.
// Each prerequisite stage retries on a fixed interval up to a ceiling and
// restarts the device on exhaustion; session establishment is a single
// best-effort attempt.
package connect

import (
	"log"
	"time"

	"github.com/sweeney/flow-monitor/internal/clock"
	"github.com/sweeney/flow-monitor/internal/link"
	"github.com/sweeney/flow-monitor/internal/session"
)

// State is the connectivity lifecycle state. There is exactly one Manager
// per process and Establish never revisits a state once Live is reached.
type State string

const (
	StateDisconnected      State = "DISCONNECTED"
	StateLinkAssociating   State = "LINK_ASSOCIATING"
	StateClockSyncing      State = "CLOCK_SYNCING"
	StateSessionConnecting State = "SESSION_CONNECTING"
	StateLive              State = "LIVE"
)

// Restarter performs the device restart used when a prerequisite stage is
// exhausted. The real implementation exits the process for the supervisor
// to respawn; no state survives the boundary.
type Restarter interface {
	Restart(reason string)
}

// Config holds the fixed connectivity parameters.
type Config struct {
	SSID       string
	Credential string

	Host string
	Port int
	Path string

	// PollInterval is the delay between stage polls.
	PollInterval time.Duration
	// MaxAttempts is the per-stage retry ceiling.
	MaxAttempts int

	// Sleep delays between polls; nil means time.Sleep. Tests inject a no-op.
	Sleep func(time.Duration)
}

// Manager drives the startup connectivity sequence.
type Manager struct {
	cfg       Config
	link      link.Associator
	clock     clock.Clock
	channel   session.Channel
	restarter Restarter
	sleep     func(time.Duration)

	state State
}

// NewManager creates a Manager. All collaborators are required.
func NewManager(cfg Config, l link.Associator, c clock.Clock, ch session.Channel, r Restarter) *Manager {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Manager{
		cfg:       cfg,
		link:      l,
		clock:     c,
		channel:   ch,
		restarter: r,
		sleep:     sleep,
		state:     StateDisconnected,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Establish runs the startup sequence and returns the final state.
//
// Link association and clock sync must succeed for anything later to be
// meaningful (transport and timestamps both depend on them), so their
// exhaustion restarts the device. A failed session connect is logged and
// skipped: the steady-state loop tolerates a dead channel already, and
// restarting here would loop the device through a transient collector
// outage. When the restarter returns (fakes do), Establish returns the
// state the failure occurred in.
func (m *Manager) Establish() State {
	m.state = StateDisconnected
	if err := m.link.Reset(); err != nil {
		log.Printf("link reset: %v", err)
	}

	m.state = StateLinkAssociating
	m.logScan()
	log.Printf("associating with %s", m.cfg.SSID)
	if err := m.link.Associate(m.cfg.SSID, m.cfg.Credential); err != nil {
		log.Printf("associate: %v", err)
	}
	if !m.await("link association", func() bool {
		ok, err := m.link.Connected(m.cfg.SSID)
		if err != nil {
			log.Printf("link poll: %v", err)
			return false
		}
		return ok
	}) {
		m.restarter.Restart("link association exhausted")
		return m.state
	}
	log.Printf("link associated with %s", m.cfg.SSID)

	m.state = StateClockSyncing
	log.Printf("waiting for clock sync")
	if !m.await("clock sync", func() bool {
		if err := m.clock.Sync(); err != nil {
			log.Printf("clock sync: %v", err)
		}
		return m.clock.Valid(m.clock.Now())
	}) {
		m.restarter.Restart("clock sync exhausted")
		return m.state
	}
	log.Printf("clock synchronized: %s", m.clock.Now().Format(time.RFC3339))

	m.state = StateSessionConnecting
	log.Printf("connecting session to %s:%d%s", m.cfg.Host, m.cfg.Port, m.cfg.Path)
	if err := m.channel.Connect(m.cfg.Host, m.cfg.Port, m.cfg.Path); err != nil {
		// Non-fatal: sends will fail until the collector comes back.
		log.Printf("session connect: %v (continuing unconnected)", err)
	} else {
		log.Printf("session connected")
	}

	m.state = StateLive
	m.channel.OnMessage(func(msg string) {
		log.Printf("collector message: %s", msg)
	})
	return m.state
}

// await polls check every PollInterval until it succeeds or the attempt
// ceiling is exceeded.
func (m *Manager) await(what string, check func() bool) bool {
	attempts := 0
	for {
		if check() {
			return true
		}
		m.sleep(m.cfg.PollInterval)
		attempts++
		if attempts > m.cfg.MaxAttempts {
			log.Printf("%s: giving up after %d attempts", what, attempts)
			return false
		}
	}
}

// logScan lists visible networks for diagnostics. Never used for selection.
func (m *Manager) logScan() {
	nets, err := m.link.Scan()
	if err != nil {
		log.Printf("scan: %v", err)
		return
	}
	log.Printf("%d networks visible", len(nets))
	for i, n := range nets {
		sec := "secured"
		if n.Open {
			sec = "open"
		}
		log.Printf("  %d: %s (%d%%) %s", i+1, n.SSID, n.Signal, sec)
	}
}
