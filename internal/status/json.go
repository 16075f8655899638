package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string       `json:"state"`
	Session       SessionJSON  `json:"session"`
	LastReading   *ReadingJSON `json:"last_reading,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Counts        CountsJSON   `json:"counts"`
	Config        ConfigJSON   `json:"config"`
}

// SessionJSON reports session channel state.
type SessionJSON struct {
	Connected bool   `json:"connected"`
	Endpoint  string `json:"endpoint"`
}

// ReadingJSON is the JSON representation of the last reading.
type ReadingJSON struct {
	Timestamp string  `json:"timestamp"`
	FlowRate  float64 `json:"flow_rate"`
}

// CountsJSON is the JSON representation of measurement counts.
type CountsJSON struct {
	Sent         int `json:"sent"`
	InvalidClock int `json:"invalid_clock"`
	SendFailures int `json:"send_failures"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PeriodMs    int64   `json:"period_ms"`
	LoopMs      int64   `json:"loop_ms"`
	Calibration float64 `json:"calibration"`
	Transport   string  `json:"transport"`
	HTTPAddr    string  `json:"http_addr"`
	SSID        string  `json:"ssid"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		State: string(snap.State),
		Session: SessionJSON{
			Connected: snap.SessionConnected,
			Endpoint:  Endpoint(snap.Config),
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			Sent:         snap.Counts.Sent,
			InvalidClock: snap.Counts.InvalidClock,
			SendFailures: snap.Counts.SendFailures,
		},
		Config: ConfigJSON{
			PeriodMs:    snap.Config.PeriodMs,
			LoopMs:      snap.Config.LoopMs,
			Calibration: snap.Config.Calibration,
			Transport:   snap.Config.Transport,
			HTTPAddr:    snap.Config.HTTPAddr,
			SSID:        snap.Config.SSID,
		},
	}

	if snap.LastReading != nil {
		inner.LastReading = &ReadingJSON{
			Timestamp: snap.LastReading.Timestamp,
			FlowRate:  snap.LastReading.Rate,
		}
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
