package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/flow-monitor/internal/connect"
	"github.com/sweeney/flow-monitor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"endpoint": func(cfg status.Config) string {
		return status.Endpoint(cfg)
	},
	"isLive": func(s connect.State) bool {
		return s == connect.StateLive
	},
	"rate": func(r float64) string {
		return fmt.Sprintf("%.2f", r)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Flow Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.rate { font-size: 1.6em; font-weight: bold; }
.live { color: green; font-weight: bold; }
.down { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Flow Monitor</h1>

<table>
<tr><th>Flow rate</th><td class="rate">{{if .LastReading}}{{rate .LastReading.Rate}} L/min{{else}}&mdash;{{end}}</td></tr>
<tr><th>Last reading</th><td>{{if .LastReading}}{{.LastReading.Timestamp}}{{else}}none yet{{end}}</td></tr>
<tr><th>State</th><td class="{{if isLive .State}}live{{else}}down{{end}}">{{.State}}</td></tr>
<tr><th>Session</th><td class="{{if .SessionConnected}}connected{{else}}disconnected{{end}}">{{if .SessionConnected}}connected{{else}}disconnected{{end}} ({{endpoint .Config}})</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>

<table>
<tr><th>Readings sent</th><td>{{.Counts.Sent}}</td></tr>
<tr><th>Dropped (invalid clock)</th><td>{{.Counts.InvalidClock}}</td></tr>
<tr><th>Send failures</th><td>{{.Counts.SendFailures}}</td></tr>
</table>

<table>
<tr><th>Period</th><td>{{.Config.PeriodMs}} ms</td></tr>
<tr><th>Calibration</th><td>{{.Config.Calibration}} pulses per L/min</td></tr>
<tr><th>Transport</th><td>{{.Config.Transport}}</td></tr>
<tr><th>Network</th><td>{{.Config.SSID}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/metrics">Metrics</a></p>
</body>
</html>
`

// renderHTML writes the status page for the given snapshot.
func renderHTML(w io.Writer, snap status.Snapshot) {
	// Template errors are programming errors; the page is best effort.
	_ = indexTmpl.Execute(w, snap)
}
