package state

import (
	"sync"
)

// TrackingLock provides locking facilities with automatic state tracking
// notifications. The conflict engine uses one to guard its notification
// callback slot: the ordinary Unlock taken around each delivered
// notification notifies anyone blocked in Engine.WaitForChange, while
// UnlockWithoutNotify lets OnNotify replace the callback without advancing
// the change index.
type TrackingLock struct {
	// lock is the underlying mutex.
	lock sync.Mutex
	// tracker is the underlying tracker.
	tracker *Tracker
}

// NewTrackingLock creates a new tracking lock with the specified tracker.
func NewTrackingLock(tracker *Tracker) *TrackingLock {
	return &TrackingLock{
		tracker: tracker,
	}
}

// Lock locks the tracking lock.
func (l *TrackingLock) Lock() {
	l.lock.Lock()
}

// Unlock unlocks the tracking lock and triggers a state update notification,
// waking any caller blocked in the tracker's WaitForChange.
func (l *TrackingLock) Unlock() {
	l.lock.Unlock()
	l.tracker.NotifyOfChange()
}

// UnlockWithoutNotify unlocks the tracking lock without triggering a state
// update notification. Registering an OnNotify callback is the canonical
// caller: it observes state without itself constituting a change.
func (l *TrackingLock) UnlockWithoutNotify() {
	l.lock.Unlock()
}
