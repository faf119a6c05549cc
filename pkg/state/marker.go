package state

import (
	"sync/atomic"
)

// Marker is a utility type used to track whether a one-way condition has
// occurred — for example, whether a tree conflict's envelope has already
// been resolved and cleared. It is safe for concurrent usage and cheap
// enough to check on every GetConflicted call. The zero value of Marker is
// unmarked.
type Marker struct {
	// storage is the underlying marker storage.
	storage atomic.Bool
}

// Mark idempotently marks the marker. Calling Mark on an already-marked
// Marker is a no-op.
func (m *Marker) Mark() {
	m.storage.Store(true)
}

// Marked returns whether or not the marker is marked.
func (m *Marker) Marked() bool {
	return m.storage.Load()
}
