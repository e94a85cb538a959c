// Package sequence issues the version stamps attached to flag writes.
package sequence

import "sync/atomic"

// Sequencer is a monotonic version counter.
//
// Every write produced by an override store is stamped with a strictly
// increasing version from its Sequencer. Each store owns its own instance,
// so independent stores (parallel tests, for example) never share a sequence.
//
// Thread-safety: Sequencer is safe for concurrent use (atomic operations).
// Issuing a version and applying the write it stamps are separate steps;
// the Sequencer orders issue, not application.
type Sequencer struct {
	seq atomic.Int64
}

// New creates a sequencer whose first Next() returns 1.
func New() *Sequencer {
	return &Sequencer{}
}

// NewAt creates a sequencer whose first Next() returns start+1.
// Used to resume above versions already present in a persistent store.
func NewAt(start int64) *Sequencer {
	s := &Sequencer{}
	s.seq.Store(start)
	return s
}

// Next returns the next version and advances the counter.
// Calls are linearizable - each call returns a unique, increasing value.
func (s *Sequencer) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last issued version without advancing.
func (s *Sequencer) Current() int64 {
	return s.seq.Load()
}
