// Package live holds the most recent ingested reading in process
// memory, separate from persisted history. The slot is empty after a
// restart and is overwritten by every device submission, whether or
// not the database write succeeded.
package live

import (
	"sync"

	"github.com/uvify/apiserver/types"
)

// Slot is a single-entry cache of the latest reading. Writes win by
// arrival order; there is no history and no eviction.
type Slot struct {
	mu    sync.Mutex
	entry types.LiveEntry
	set   bool
}

func NewSlot() *Slot {
	return &Slot{}
}

// Set overwrites the slot with the given entry.
func (s *Slot) Set(entry types.LiveEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = entry
	s.set = true
}

// Latest returns the current entry, or false if nothing has been
// ingested since the process started.
func (s *Slot) Latest() (types.LiveEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry, s.set
}
