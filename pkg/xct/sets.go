package xct

import (
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/record"
	"github.com/occstore/engine/pkg/xctid"
)

// ReadEntry is one observed (record, tag) pair, captured by
// AddToReadSet and re-verified in Phase 3 of precommit.
type ReadEntry struct {
	Record      *record.Envelope
	ObservedTag xctid.Snapshot
}

// WriteEntry is one prepared write, captured by AddToWriteSet. LogEntry
// lives in the transaction's local arena and is both applied to Record
// and handed off to the logger at precommit.
type WriteEntry struct {
	Record      *record.Envelope
	ObservedTag xctid.Snapshot
	LogEntry    logrecord.Record
}

// ReadSet is a transaction's bounded, append-only set of reads. No
// manual index counters are exposed; len()/cap() do that job, and
// capacity is fixed at construction from config.Options.MaxReadSetSize.
type ReadSet struct {
	entries []ReadEntry
}

// NewReadSet preallocates a read set with the given capacity.
func NewReadSet(capacity uint32) *ReadSet {
	return &ReadSet{entries: make([]ReadEntry, 0, capacity)}
}

// Add appends an observed read, or reports ErrReadSetOverflow if the
// set is already at capacity.
func (s *ReadSet) Add(e ReadEntry) error {
	if len(s.entries) >= cap(s.entries) {
		return ErrReadSetOverflow
	}
	s.entries = append(s.entries, e)
	return nil
}

// Entries returns the set's current contents. Callers must not retain
// the slice past the next Reset.
func (s *ReadSet) Entries() []ReadEntry { return s.entries }

// Len reports the number of recorded reads.
func (s *ReadSet) Len() int { return len(s.entries) }

// Reset clears the set for reuse by the next transaction on this
// worker, without releasing the backing array.
func (s *ReadSet) Reset() { s.entries = s.entries[:0] }

// WriteSet is a transaction's bounded, append-only set of prepared
// writes.
type WriteSet struct {
	entries []WriteEntry
}

// NewWriteSet preallocates a write set with the given capacity.
func NewWriteSet(capacity uint32) *WriteSet {
	return &WriteSet{entries: make([]WriteEntry, 0, capacity)}
}

// Add appends a prepared write, or reports ErrWriteSetOverflow if the
// set is already at capacity.
func (s *WriteSet) Add(e WriteEntry) error {
	if len(s.entries) >= cap(s.entries) {
		return ErrWriteSetOverflow
	}
	s.entries = append(s.entries, e)
	return nil
}

// Entries returns the set's current contents. Callers must not retain
// the slice past the next Reset.
func (s *WriteSet) Entries() []WriteEntry { return s.entries }

// Len reports the number of prepared writes.
func (s *WriteSet) Len() int { return len(s.entries) }

// Reset clears the set for reuse by the next transaction on this
// worker, without releasing the backing array.
func (s *WriteSet) Reset() { s.entries = s.entries[:0] }
