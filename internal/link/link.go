// Package link provides wireless link association with abstraction for
// testing. The real implementation drives NetworkManager through nmcli;
// the fake allows scripting association behavior.
package link

// Network describes one visible wireless network, for diagnostic listing only.
type Network struct {
	SSID   string
	Signal int  // percent
	Open   bool // no security
}

// Associator manages the wireless link.
type Associator interface {
	// Reset clears any existing association so the join starts clean.
	Reset() error

	// Associate begins joining the named network. It does not wait for the
	// join to complete; callers poll Connected.
	Associate(ssid, credential string) error

	// Connected reports whether the link is associated with ssid.
	Connected(ssid string) (bool, error)

	// Scan lists visible networks. Diagnostic only, never used for selection.
	Scan() ([]Network, error)
}
