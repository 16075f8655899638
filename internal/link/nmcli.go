package link

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// NMCLIAssociator drives NetworkManager via the nmcli command line.
type NMCLIAssociator struct {
	// run executes a command and returns its combined output.
	// Overridable for tests.
	run func(name string, args ...string) ([]byte, error)
}

// NewNMCLIAssociator creates an Associator backed by nmcli.
func NewNMCLIAssociator() *NMCLIAssociator {
	return &NMCLIAssociator{
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

// Reset disconnects any active wireless connection. A failure here is not
// fatal: a fresh boot has nothing to disconnect.
func (a *NMCLIAssociator) Reset() error {
	out, err := a.run("nmcli", "radio", "wifi", "on")
	if err != nil {
		return fmt.Errorf("radio on: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Associate asks NetworkManager to join the network without waiting for
// the join to complete.
func (a *NMCLIAssociator) Associate(ssid, credential string) error {
	out, err := a.run("nmcli", "--wait", "0", "device", "wifi", "connect", ssid, "password", credential)
	if err != nil {
		return fmt.Errorf("connect %s: %w (%s)", ssid, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Connected reports whether the link is associated with ssid.
func (a *NMCLIAssociator) Connected(ssid string) (bool, error) {
	out, err := a.run("nmcli", "-t", "-f", "ACTIVE,SSID", "device", "wifi")
	if err != nil {
		return false, fmt.Errorf("query active: %w", err)
	}
	return parseActive(string(out), ssid), nil
}

// Scan lists visible networks.
func (a *NMCLIAssociator) Scan() ([]Network, error) {
	out, err := a.run("nmcli", "-t", "-f", "SSID,SIGNAL,SECURITY", "device", "wifi", "list")
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return parseScan(string(out)), nil
}

// parseActive scans nmcli terse ACTIVE:SSID output for an active row
// matching ssid.
func parseActive(out, ssid string) bool {
	for _, line := range strings.Split(out, "\n") {
		active, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if active == "yes" && rest == ssid {
			return true
		}
	}
	return false
}

// parseScan parses nmcli terse SSID:SIGNAL:SECURITY output.
// Rows with hidden SSIDs or malformed fields are skipped.
func parseScan(out string) []Network {
	var nets []Network
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, ":")
		if len(fields) < 3 || fields[0] == "" {
			continue
		}
		signal, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		nets = append(nets, Network{
			SSID:   fields[0],
			Signal: signal,
			Open:   strings.TrimSpace(fields[2]) == "",
		})
	}
	return nets
}
