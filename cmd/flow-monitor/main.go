// Command flow-monitor counts flow-sensor pulses on a GPIO pin and streams
// periodic flow-rate readings to a remote collector.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/flow-monitor/internal/clock"
	"github.com/sweeney/flow-monitor/internal/connect"
	"github.com/sweeney/flow-monitor/internal/flow"
	"github.com/sweeney/flow-monitor/internal/link"
	"github.com/sweeney/flow-monitor/internal/metric"
	"github.com/sweeney/flow-monitor/internal/pulse"
	"github.com/sweeney/flow-monitor/internal/session"
	"github.com/sweeney/flow-monitor/internal/status"
	"github.com/sweeney/flow-monitor/internal/web"
)

// Config holds the deployment configuration. Everything is fixed at build
// time: the device exposes no CLI, environment, or config file.
type Config struct {
	SSID       string
	Credential string

	Host      string
	Port      int
	Path      string
	Transport string // "websocket" or "mqtt"

	Pin         int
	Period      time.Duration
	Loop        time.Duration
	Calibration float64 // pulses per (L/min)

	TimezoneOffset int // seconds
	NTPHosts       []string

	LinkPoll     time.Duration
	LinkAttempts int

	HTTPAddr string // empty disables the status server
}

var deployConfig = Config{
	SSID:       "flow-site",
	Credential: "changeme-at-deploy",

	Host:      "192.168.1.50",
	Port:      8000,
	Path:      "/ws/flow-reading/",
	Transport: "websocket",

	Pin:         pulse.DefaultPin,
	Period:      time.Second,
	Loop:        250 * time.Millisecond,
	Calibration: 7.5, // YF-S201 hall sensor

	TimezoneOffset: -3 * 3600,
	NTPHosts:       []string{"pool.ntp.org", "time.nist.gov"},

	LinkPoll:     500 * time.Millisecond,
	LinkAttempts: 30,

	HTTPAddr: ":8080",
}

func main() {
	if err := run(deployConfig); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// processRestarter exits the process so the supervisor respawns it.
// No state survives the boundary.
type processRestarter struct{}

func (processRestarter) Restart(reason string) {
	log.Printf("restarting: %s", reason)
	os.Exit(1)
}

// meteredDrainer counts drained pulses into the Prometheus counter on the
// way through.
type meteredDrainer struct {
	inner flow.Drainer
}

func (d meteredDrainer) Drain() uint64 {
	n := d.inner.Drain()
	metric.PulsesTotal.Add(float64(n))
	return n
}

func run(cfg Config) error {
	log.Printf("initializing")

	// Pulse source
	source, err := pulse.NewRealSource(cfg.Pin)
	if err != nil {
		return fmt.Errorf("init pulse source: %w", err)
	}
	defer source.Close()

	acc := pulse.NewAccumulator()
	if err := source.Start(acc.OnEdge); err != nil {
		return fmt.Errorf("start pulse source: %w", err)
	}
	log.Printf("flow sensor configured on pin %d", cfg.Pin)

	// External facilities
	wall := clock.NewNTPClock(cfg.TimezoneOffset, cfg.NTPHosts)
	associator := link.NewNMCLIAssociator()

	channel, err := newChannel(cfg.Transport)
	if err != nil {
		return err
	}
	defer channel.Close()

	// Startup connectivity sequence
	mgr := connect.NewManager(connect.Config{
		SSID:         cfg.SSID,
		Credential:   cfg.Credential,
		Host:         cfg.Host,
		Port:         cfg.Port,
		Path:         cfg.Path,
		PollInterval: cfg.LinkPoll,
		MaxAttempts:  cfg.LinkAttempts,
	}, associator, wall, channel, processRestarter{})

	state := mgr.Establish()
	log.Printf("connectivity: %s", state)

	// Status tracker and HTTP server
	tracker := status.NewTracker(time.Now(), status.Config{
		PeriodMs:    cfg.Period.Milliseconds(),
		LoopMs:      cfg.Loop.Milliseconds(),
		Calibration: cfg.Calibration,
		Transport:   cfg.Transport,
		Host:        cfg.Host,
		Port:        cfg.Port,
		Path:        cfg.Path,
		HTTPAddr:    cfg.HTTPAddr,
		SSID:        cfg.SSID,
	})
	tracker.SetState(state)

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	sampler := flow.NewSampler(cfg.Period, cfg.Calibration, time.Now(), meteredDrainer{acc}, wall)

	log.Printf("started: period=%v loop=%v calibration=%v endpoint=%s:%d%s",
		cfg.Period, cfg.Loop, cfg.Calibration, cfg.Host, cfg.Port, cfg.Path)

	ticker := time.NewTicker(cfg.Loop)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sampler, channel, tracker, time.Now, ticker.C, sigCh)
}

// newChannel selects the session channel implementation.
func newChannel(transport string) (session.Channel, error) {
	switch transport {
	case "websocket":
		return session.NewWSChannel(), nil
	case "mqtt":
		return session.NewMQTTChannel(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

// runLoop is the steady-state loop: poll inbound messages, run one
// measurement tick, hand any reading to the channel. At most one reading
// per period; a failed send or invalid clock forfeits that period.
func runLoop(sampler *flow.Sampler, channel session.Channel, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			return nil

		case <-tick:
			channel.Poll()

			reading, reason := sampler.Tick(now())
			switch {
			case reading != nil:
				log.Printf("flow rate: %.2f L/min", reading.Rate)

				payload, err := session.FormatReading(*reading)
				if err != nil {
					log.Printf("format reading: %v", err)
					break
				}
				log.Printf("sending: %s", payload)
				if err := channel.Send(payload); err != nil {
					// Best effort: the reading is forfeit, the loop goes on.
					log.Printf("send failed: %v", err)
					metric.SendFailuresTotal.Inc()
					tracker.RecordSendFailure()
				} else {
					metric.ReadingsSentTotal.Inc()
					tracker.RecordReading(*reading)
				}

			case reason == flow.DropInvalidClock:
				log.Printf("invalid time, discarding reading")
				metric.ReadingsDroppedTotal.WithLabelValues(metric.ReasonInvalidClock).Inc()
				tracker.RecordInvalidClock()
			}

			tracker.SetSessionConnected(channel.IsConnected())
		}
	}
}
