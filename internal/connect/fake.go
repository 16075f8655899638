package connect

// FakeRestarter records restart requests instead of exiting the process.
type FakeRestarter struct {
	// Restarts counts Restart calls.
	Restarts int

	// Reasons records the reason passed to each call.
	Reasons []string
}

// NewFakeRestarter creates a FakeRestarter.
func NewFakeRestarter() *FakeRestarter {
	return &FakeRestarter{}
}

// Restart records the request and returns.
func (f *FakeRestarter) Restart(reason string) {
	f.Restarts++
	f.Reasons = append(f.Reasons, reason)
}
