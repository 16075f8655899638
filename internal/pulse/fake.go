package pulse

import "errors"

// FakeSource is a test double that lets tests fire edges on demand.
type FakeSource struct {
	// StartError, if set, will be returned by Start().
	StartError error

	// Closed tracks if Close was called.
	Closed bool

	onEdge func()
}

// NewFakeSource creates a FakeSource.
func NewFakeSource() *FakeSource {
	return &FakeSource{}
}

// Start records the edge handler.
func (f *FakeSource) Start(onEdge func()) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.onEdge = onEdge
	return nil
}

// Pulse fires n edges through the registered handler.
func (f *FakeSource) Pulse(n int) error {
	if f.onEdge == nil {
		return errors.New("source not started")
	}
	for i := 0; i < n; i++ {
		f.onEdge()
	}
	return nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
