package link

// FakeAssociator is a test double with scripted association behavior.
type FakeAssociator struct {
	// ConnectAfter is the number of Connected polls that report false
	// before the link reports associated. Negative means never associate.
	ConnectAfter int

	// ResetError, AssociateError, ConnectedError and ScanError, if set,
	// are returned by the corresponding methods.
	ResetError     error
	AssociateError error
	ConnectedError error
	ScanError      error

	// Networks is returned by Scan.
	Networks []Network

	// Resets, Associations and Polls count calls.
	Resets       int
	Associations int
	Polls        int

	// SSID and Credential record the last Associate arguments.
	SSID       string
	Credential string
}

// NewFakeAssociator creates a FakeAssociator that associates immediately.
func NewFakeAssociator() *FakeAssociator {
	return &FakeAssociator{}
}

// Reset records the call.
func (f *FakeAssociator) Reset() error {
	f.Resets++
	return f.ResetError
}

// Associate records the join request.
func (f *FakeAssociator) Associate(ssid, credential string) error {
	f.Associations++
	f.SSID = ssid
	f.Credential = credential
	return f.AssociateError
}

// Connected reports associated once ConnectAfter polls have elapsed.
func (f *FakeAssociator) Connected(ssid string) (bool, error) {
	f.Polls++
	if f.ConnectedError != nil {
		return false, f.ConnectedError
	}
	if f.ConnectAfter < 0 {
		return false, nil
	}
	return f.Polls > f.ConnectAfter, nil
}

// Scan returns the scripted network list.
func (f *FakeAssociator) Scan() ([]Network, error) {
	if f.ScanError != nil {
		return nil, f.ScanError
	}
	return f.Networks, nil
}
