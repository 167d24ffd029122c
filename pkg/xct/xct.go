package xct

import (
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/record"
	"github.com/occstore/engine/pkg/xctid"
)

// State is a position in the transaction's Inactive -> Active ->
// {Committed, Aborted} -> Inactive state machine.
type State int

const (
	StateInactive State = iota
	StateActive
	StateCommitted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "Inactive"
	case StateActive:
		return "Active"
	case StateCommitted:
		return "Committed"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// IsolationLevel controls whether reads are recorded for commit-time
// verification.
type IsolationLevel int

const (
	// Serializable performs full read-set verification at commit.
	Serializable IsolationLevel = iota
	// RepeatableRead behaves identically to Serializable for this
	// storage model: no phantoms are crossed by design.
	RepeatableRead
	// DirtyReadPreferSnapshot skips read-set recording; the reader
	// prefers snapshot pages when available.
	DirtyReadPreferSnapshot
	// DirtyReadPreferVolatile skips read-set recording; the reader
	// prefers volatile pages.
	DirtyReadPreferVolatile
)

func (l IsolationLevel) recordsReads() bool {
	return l == Serializable || l == RepeatableRead
}

// Xct is one worker's transaction context. It is reused across
// transactions on the same worker: Begin resets it into Active, and
// commit/abort return it to Inactive.
type Xct struct {
	workerID   int
	state      State
	isolation  IsolationLevel
	beginEpoch xctid.Epoch

	reads  *ReadSet
	writes *WriteSet
}

// New constructs an Inactive transaction context for one worker, with
// read/write sets sized from the engine configuration.
func New(workerID int, maxReadSet, maxWriteSet uint32) *Xct {
	return &Xct{
		workerID: workerID,
		state:    StateInactive,
		reads:    NewReadSet(maxReadSet),
		writes:   NewWriteSet(maxWriteSet),
	}
}

// WorkerID returns the owning worker's id.
func (x *Xct) WorkerID() int { return x.workerID }

// State returns the transaction's current state.
func (x *Xct) State() State { return x.state }

// Isolation returns the transaction's isolation level.
func (x *Xct) Isolation() IsolationLevel { return x.isolation }

// BeginEpoch returns the epoch captured when the transaction began.
func (x *Xct) BeginEpoch() xctid.Epoch { return x.beginEpoch }

// ReadSet exposes the transaction's read set, mainly for the commit
// coordinator's Phase 3 verification.
func (x *Xct) ReadSet() *ReadSet { return x.reads }

// WriteSet exposes the transaction's write set, mainly for the commit
// coordinator's Phase 1 lock and Phase 4 apply.
func (x *Xct) WriteSet() *WriteSet { return x.writes }

// Begin moves the transaction Inactive -> Active, capturing currentEpoch
// as the transaction's begin epoch and resetting both sets.
func (x *Xct) Begin(isolation IsolationLevel, currentEpoch xctid.Epoch) {
	x.isolation = isolation
	x.beginEpoch = currentEpoch
	x.state = StateActive
	x.reads.Reset()
	x.writes.Reset()
}

// AddToReadSet records a read observation:
//
//  1. Dirty-read isolation levels skip recording entirely and always
//     succeed.
//  2. A full read set fails with ErrReadSetOverflow.
//  3. The tag is loaded with acquire ordering, which callers must treat
//     as happening-before any subsequent payload access (the consume
//     fence the spec calls for is the acquire load itself in Go's
//     memory model).
//  4. A currently-locked record aborts immediately with ErrRaceAbort,
//     an early-abort optimization, not a correctness requirement.
func (x *Xct) AddToReadSet(env *record.Envelope) error {
	if !x.isolation.recordsReads() {
		return nil
	}
	if x.reads.Len() >= cap(x.reads.entries) {
		return ErrReadSetOverflow
	}
	tag := env.Tag.LoadAcquire()
	if tag.IsLocked() {
		return ErrRaceAbort
	}
	return x.reads.Add(ReadEntry{Record: env, ObservedTag: tag})
}

// AddToWriteSet records a prepared write, with the tag observed at
// write-time and the log entry that will later be applied and logged.
// A full write set fails with ErrWriteSetOverflow.
func (x *Xct) AddToWriteSet(env *record.Envelope, logEntry logrecord.Record) error {
	tag := env.Tag.LoadAcquire()
	return x.writes.Add(WriteEntry{Record: env, ObservedTag: tag, LogEntry: logEntry})
}

// Abort discards the read/write sets and returns the transaction to
// Inactive. No record envelope is touched: a transaction that never
// reached Phase 4 of precommit has made no visible change.
func (x *Xct) Abort() {
	x.reads.Reset()
	x.writes.Reset()
	x.state = StateAborted
	x.state = StateInactive
}

// MarkCommitted transitions Active -> Committed -> Inactive and clears
// the sets. Called by the commit coordinator after Phase 5 completes;
// Xct itself never decides commit/abort outcomes.
func (x *Xct) MarkCommitted() {
	x.state = StateCommitted
	x.reads.Reset()
	x.writes.Reset()
	x.state = StateInactive
}

// MarkAborted transitions Active -> Aborted -> Inactive and clears the
// sets. Called by the commit coordinator when Phase 3 verification
// fails: the locks it took are released with their original tags, and
// the transaction reports ErrRaceAbort to its caller.
func (x *Xct) MarkAborted() {
	x.state = StateAborted
	x.reads.Reset()
	x.writes.Reset()
	x.state = StateInactive
}
