package commit

import (
	"reflect"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/occstore/engine/pkg/epoch"
	"github.com/occstore/engine/pkg/log"
	"github.com/occstore/engine/pkg/logger"
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/metrics"
	"github.com/occstore/engine/pkg/record"
	"github.com/occstore/engine/pkg/xct"
	"github.com/occstore/engine/pkg/xctid"
)

// Coordinator runs the five-phase precommit protocol for one worker. It
// owns the worker's in-epoch ordinal counter, the one piece of state
// that must survive across transactions on the same worker.
type Coordinator struct {
	workerID int

	mu           sync.Mutex
	ordinalEpoch xctid.Epoch
	ordinal      xctid.Ordinal

	logger zerolog.Logger
}

// NewCoordinator constructs a Coordinator for workerID.
func NewCoordinator(workerID int) *Coordinator {
	return &Coordinator{
		workerID: workerID,
		logger:   log.WithWorker(workerID),
	}
}

// nextOrdinal returns the next in-epoch ordinal for currentEpoch,
// resetting the counter whenever the epoch has advanced since the last
// call.
func (c *Coordinator) nextOrdinal(currentEpoch xctid.Epoch) xctid.Ordinal {
	c.mu.Lock()
	defer c.mu.Unlock()
	if currentEpoch != c.ordinalEpoch {
		c.ordinalEpoch = currentEpoch
		c.ordinal = 0
	}
	o := c.ordinal
	c.ordinal++
	return o
}

// Precommit runs the five-phase commit protocol against x, using mgr
// for the commit epoch and lg to hand off committed log entries. On
// success x is left Committed (then Inactive); on failure it is left
// Aborted (then Inactive) and every lock this call took has already
// been released with its original, unchanged tag.
func (c *Coordinator) Precommit(x *xct.Xct, mgr *epoch.Manager, lg *logger.Logger) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PrecommitDuration)

	writes := dedupeByAddress(x.WriteSet().Entries())

	// Phase 1: lock the write set in address order. Sorting prevents
	// deadlock between transactions whose write sets intersect.
	for i := range writes {
		writes[i].env.Tag.LockUnconditional(lockHolder(c.workerID))
	}

	locked := make(map[uintptr]struct{}, len(writes))
	for _, w := range writes {
		locked[w.addr] = struct{}{}
	}

	// Phase 2: fence + read the commit epoch. The epoch manager's
	// Current() load is itself the fence: every subsequent tag load in
	// Phase 3 is ordered after it by Go's memory model (both are atomic
	// operations on the same goroutine).
	commitEpoch := mgr.Current()

	// Phase 3: verify the read set.
	for _, r := range x.ReadSet().Entries() {
		cur := r.Record.Tag.LoadAcquire()
		if !cur.SameVersion(r.ObservedTag) {
			c.releaseUnchanged(writes)
			x.MarkAborted()
			metrics.AbortsTotal.WithLabelValues("race_read_version").Inc()
			return xct.ErrRaceAbort
		}
		addr := reflect.ValueOf(r.Record).Pointer()
		if _, ownWrite := locked[addr]; cur.IsLocked() && !ownWrite {
			c.releaseUnchanged(writes)
			x.MarkAborted()
			metrics.AbortsTotal.WithLabelValues("race_read_locked").Inc()
			return xct.ErrRaceAbort
		}
	}

	// Phase 4: apply each write in address order and publish.
	entries := make([]logrecord.Record, 0, len(writes))
	for _, w := range writes {
		ordinal := c.nextOrdinal(commitEpoch)
		w.entry.LogEntry.ApplyToRecord(w.env)

		valid, deleted := statusForApply(w.entry.LogEntry.Header().LogType, w.entry.ObservedTag)
		newTag := xctid.NewTagValue(commitEpoch, ordinal, valid, deleted)
		w.entry.LogEntry.Header().Tag = newTag
		w.env.Tag.Release(newTag)

		entries = append(entries, w.entry.LogEntry)
	}

	// Phase 5: hand off to the logger.
	if len(entries) > 0 {
		if err := lg.Append(entries, commitEpoch); err != nil {
			c.logger.Error().Err(err).Msg("commit: logger append failed")
		}
	}

	x.MarkCommitted()
	metrics.CommitsTotal.Inc()
	return nil
}

// statusForApply derives the committed tag's valid/deleted flags from
// the log entry's type. Hash insert/delete carry their status directly.
// Sequential append always addresses a brand-new slot, so it is
// insert-category unconditionally. Array storage has no distinct insert
// record: every offset in range logically exists once the storage is
// created, so an ArrayOverwrite against a never-committed tag (epoch 0)
// is the record's first write and is insert-category too; once an array
// slot has been committed at least once, later overwrites preserve
// whatever valid/deleted flags were already observed.
func statusForApply(t logrecord.Type, observed xctid.Snapshot) (valid, deleted bool) {
	switch t {
	case logrecord.TypeHashInsert:
		return true, false
	case logrecord.TypeHashDelete:
		return true, true
	case logrecord.TypeSequentialAppend:
		return true, false
	case logrecord.TypeArrayOverwrite:
		if observed.Epoch() == 0 {
			return true, false
		}
		return observed.IsValid(), observed.IsDeleted()
	default:
		return observed.IsValid(), observed.IsDeleted()
	}
}

type addressedWrite struct {
	addr  uintptr
	env   *record.Envelope
	entry xct.WriteEntry
}

func (c *Coordinator) releaseUnchanged(writes []addressedWrite) {
	for _, w := range writes {
		// The lock is still held, so the current word minus its lock bits
		// is exactly the tag the record carried when Phase 1 locked it.
		w.env.Tag.Release(uint64(w.env.Tag.LoadAcquire()))
	}
}

func lockHolder(workerID int) uint8 {
	return uint8(workerID&0x7) | 1
}

func dedupeByAddress(entries []xct.WriteEntry) []addressedWrite {
	byAddr := make(map[uintptr]xct.WriteEntry, len(entries))
	for _, e := range entries {
		byAddr[reflect.ValueOf(e.Record).Pointer()] = e // last write wins
	}
	out := make([]addressedWrite, 0, len(byAddr))
	for addr, e := range byAddr {
		out = append(out, addressedWrite{addr: addr, env: e.Record, entry: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].addr < out[j].addr })
	return out
}
