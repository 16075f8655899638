package session

import "strconv"

// FakeChannel records channel activity for test assertions.
type FakeChannel struct {
	// Sent contains all payloads passed to Send.
	Sent [][]byte

	// ConnectError, if set, will be returned by Connect.
	ConnectError error

	// SendError, if set, will be returned by Send.
	SendError error

	// SendAttempts counts Send calls, including failed ones.
	SendAttempts int

	// Inbound is delivered to the callback on the next Poll.
	Inbound []string

	// Delivered contains messages already dispatched to the callback.
	Delivered []string

	// Connects records Connect arguments as "host:port path".
	Connects []string

	// Connected controls IsConnected once Connect has succeeded.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool

	callback func(string)
}

// NewFakeChannel creates a FakeChannel.
func NewFakeChannel() *FakeChannel {
	return &FakeChannel{}
}

// Connect records the call and marks the channel connected unless
// ConnectError is set.
func (f *FakeChannel) Connect(host string, port int, path string) error {
	f.Connects = append(f.Connects, hostPortPath(host, port, path))
	if f.ConnectError != nil {
		return f.ConnectError
	}
	f.Connected = true
	return nil
}

// Send records the payload.
func (f *FakeChannel) Send(payload []byte) error {
	f.SendAttempts++
	if f.SendError != nil {
		return f.SendError
	}
	if !f.Connected {
		return errNotConnected
	}
	f.Sent = append(f.Sent, payload)
	return nil
}

// Poll delivers queued inbound messages to the callback.
func (f *FakeChannel) Poll() {
	pending := f.Inbound
	f.Inbound = nil
	for _, msg := range pending {
		f.Delivered = append(f.Delivered, msg)
		if f.callback != nil {
			f.callback(msg)
		}
	}
}

// OnMessage registers the inbound-message callback.
func (f *FakeChannel) OnMessage(cb func(string)) {
	f.callback = cb
}

// IsConnected reports the scripted liveness.
func (f *FakeChannel) IsConnected() bool {
	return f.Connected
}

// Close marks the channel closed.
func (f *FakeChannel) Close() error {
	f.Closed = true
	f.Connected = false
	return nil
}

type channelError string

func (e channelError) Error() string { return string(e) }

const errNotConnected = channelError("not connected")

func hostPortPath(host string, port int, path string) string {
	return host + ":" + strconv.Itoa(port) + " " + path
}
