// Package metric defines the Prometheus instrumentation for the daemon,
// exposed by the status server's /metrics endpoint.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PulsesTotal counts sensor pulses as they are drained each period.
	PulsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flow_pulses_total",
		Help: "Sensor pulses counted.",
	})

	// ReadingsSentTotal counts readings delivered to the collector.
	ReadingsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flow_readings_sent_total",
		Help: "Readings transmitted to the collector.",
	})

	// ReadingsDroppedTotal counts readings forfeited per drop reason.
	ReadingsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flow_readings_dropped_total",
		Help: "Readings dropped before transmission.",
	}, []string{"reason"})

	// SendFailuresTotal counts failed channel sends.
	SendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flow_send_failures_total",
		Help: "Channel send failures.",
	})
)

// Drop reasons for ReadingsDroppedTotal.
const (
	ReasonInvalidClock = "invalid_clock"
)
