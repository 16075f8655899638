// Package session provides the persistent channel to the flow collector
// with abstraction for testing. Two real implementations exist: WebSocket
// (the collector's native ingest) and MQTT (broker deployments).
package session

import (
	"encoding/json"

	"github.com/sweeney/flow-monitor/internal/flow"
)

// Channel is a persistent bidirectional message channel to the collector.
// Implementations are used from the main loop only; they must never block
// it beyond their dial/send timeouts.
type Channel interface {
	// Connect opens the channel to the collector.
	Connect(host string, port int, path string) error

	// Send transmits one encoded reading. Best effort: a failure is
	// terminal for that reading and must not affect later sends.
	Send(payload []byte) error

	// Poll drains inbound messages, invoking the registered callback for
	// each. Returns immediately when nothing is pending.
	Poll()

	// OnMessage registers the inbound-message callback.
	OnMessage(func(string))

	// IsConnected reports channel liveness.
	IsConnected() bool

	// Close tears the channel down.
	Close() error
}

// readingPayload is the wire schema for a single reading.
// The field names are fixed by the collector, misspelling included.
type readingPayload struct {
	Timestamp string  `json:"times_tamp"`
	FlowRate  float64 `json:"flow_rate"`
}

// FormatReading encodes a reading into the collector's wire format,
// e.g. {"times_tamp":"05/01/2024 14:32:07","flow_rate":3.42}.
func FormatReading(r flow.Reading) ([]byte, error) {
	return json.Marshal(readingPayload{
		Timestamp: r.Timestamp,
		FlowRate:  r.Rate,
	})
}
