package clock

import "time"

// FakeClock is a test double with scripted sync behavior.
type FakeClock struct {
	// Time is returned by Now once synced.
	Time time.Time

	// SyncError, if set, will be returned by Sync.
	SyncError error

	// SyncAfter is the number of Sync calls that fail (with SyncError or a
	// default error) before sync succeeds. Zero means the first call succeeds.
	SyncAfter int

	// Syncs counts Sync calls.
	Syncs int

	synced bool
}

// NewFakeClock creates a FakeClock that reports t once synced.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{Time: t}
}

// Sync succeeds once SyncAfter earlier calls have failed.
func (f *FakeClock) Sync() error {
	f.Syncs++
	if f.Syncs <= f.SyncAfter {
		if f.SyncError != nil {
			return f.SyncError
		}
		return errNotSynced
	}
	if f.SyncError != nil {
		return f.SyncError
	}
	f.synced = true
	return nil
}

// Now returns the scripted time once synced, the epoch before that.
func (f *FakeClock) Now() time.Time {
	if !f.synced {
		return time.Unix(0, 0)
	}
	return f.Time
}

// Valid reports whether t represents synchronized time.
func (f *FakeClock) Valid(t time.Time) bool {
	return Valid(t)
}

type syncError string

func (e syncError) Error() string { return string(e) }

const errNotSynced = syncError("not synced")
