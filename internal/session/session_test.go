package session

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sweeney/flow-monitor/internal/flow"
)

func TestFormatReading(t *testing.T) {
	payload, err := FormatReading(flow.Reading{
		Timestamp: "05/01/2024 14:32:07",
		Rate:      3.42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Field names are fixed by the collector, misspelling included.
	if !strings.Contains(string(payload), `"times_tamp":"05/01/2024 14:32:07"`) {
		t.Errorf("payload missing times_tamp field: %s", payload)
	}
	if !strings.Contains(string(payload), `"flow_rate":3.42`) {
		t.Errorf("payload missing flow_rate field: %s", payload)
	}
}

// TestFormatReadingRoundTrip verifies an external consumer decoding the
// payload recovers the original values.
func TestFormatReadingRoundTrip(t *testing.T) {
	original := flow.Reading{
		Timestamp: "05/01/2024 14:32:07",
		Rate:      2.00,
	}

	payload, err := FormatReading(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Timestamp string  `json:"times_tamp"`
		FlowRate  float64 `json:"flow_rate"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Timestamp != original.Timestamp {
		t.Errorf("timestamp: got %q, want %q", decoded.Timestamp, original.Timestamp)
	}
	if math.Abs(decoded.FlowRate-original.Rate) > 0.005 {
		t.Errorf("flow rate: got %v, want %v", decoded.FlowRate, original.Rate)
	}
}

func TestFormatReadingZeroRate(t *testing.T) {
	payload, err := FormatReading(flow.Reading{
		Timestamp: "05/01/2024 14:32:07",
		Rate:      0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(payload), `"flow_rate":0`) {
		t.Errorf("payload missing zero flow_rate: %s", payload)
	}
}

func TestFakeChannelSendRequiresConnect(t *testing.T) {
	f := NewFakeChannel()

	if err := f.Send([]byte("x")); err == nil {
		t.Error("expected send on unconnected channel to fail")
	}
	if f.SendAttempts != 1 {
		t.Errorf("expected 1 attempt recorded, got %d", f.SendAttempts)
	}

	if err := f.Connect("collector.local", 8000, "/ws/flow-reading/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Send([]byte("x")); err != nil {
		t.Errorf("unexpected error after connect: %v", err)
	}
	if len(f.Sent) != 1 {
		t.Errorf("expected 1 payload recorded, got %d", len(f.Sent))
	}
}

func TestFakeChannelConnectError(t *testing.T) {
	f := NewFakeChannel()
	f.ConnectError = errors.New("refused")

	if err := f.Connect("collector.local", 8000, "/ws/flow-reading/"); err == nil {
		t.Error("expected connect error")
	}
	if f.IsConnected() {
		t.Error("expected not connected after failed connect")
	}
	if len(f.Connects) != 1 {
		t.Errorf("expected attempt recorded, got %d", len(f.Connects))
	}
}

func TestFakeChannelPoll(t *testing.T) {
	f := NewFakeChannel()
	f.Inbound = []string{"ack-1", "ack-2"}

	var got []string
	f.OnMessage(func(msg string) { got = append(got, msg) })

	f.Poll()
	if len(got) != 2 || got[0] != "ack-1" || got[1] != "ack-2" {
		t.Errorf("callback messages: got %v", got)
	}

	// Second poll delivers nothing new.
	f.Poll()
	if len(got) != 2 {
		t.Errorf("expected no further messages, got %v", got)
	}
}

func TestWSChannelSendBeforeConnect(t *testing.T) {
	c := NewWSChannel()
	if err := c.Send([]byte("x")); err == nil {
		t.Error("expected send before connect to fail")
	}
	if c.IsConnected() {
		t.Error("expected not connected")
	}
}

func TestMQTTChannelSendBeforeConnect(t *testing.T) {
	c := NewMQTTChannel()
	if err := c.Send([]byte("x")); err == nil {
		t.Error("expected send before connect to fail")
	}
	if c.IsConnected() {
		t.Error("expected not connected")
	}
}
