package xctid

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sleepEnough() { time.Sleep(50 * time.Millisecond) }

// TestNoConflict has ten goroutines each lock a disjoint record; all
// succeed immediately, and every tag is back to zero after release.
func TestNoConflict(t *testing.T) {
	const n = 10
	tags := make([]Tag, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tags[i].LockUnconditional(uint8(i + 1))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		snap := tags[i].LoadAcquire()
		assert.False(t, snap.IsValid())
		assert.False(t, snap.IsDeleted())
		assert.True(t, snap.IsLocked())
		assert.False(t, snap.IsLatest())
		assert.False(t, snap.IsRangeLocked())
	}
	for i := 0; i < n; i++ {
		tags[i].Release(0)
	}
	for i := 0; i < n; i++ {
		require.Equal(t, uint64(0), tags[i].LoadAcquire().Raw())
	}
}

// TestConflict has ten goroutines target five records pairwise; the
// even-indexed half succeeds promptly, the rest blocks until the first
// half releases.
func TestConflict(t *testing.T) {
	const threads = 10
	const records = threads / 2
	tags := make([]Tag, records)
	done := make([]bool, threads)
	var doneMu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tags[i/2].LockUnconditional(uint8(i + 1))
			doneMu.Lock()
			done[i] = true
			doneMu.Unlock()
		}(i)
		sleepEnough()
	}

	doneMu.Lock()
	for i := 0; i < threads; i++ {
		if i%2 == 0 {
			assert.True(t, done[i], "even thread %d should have locked promptly", i)
		} else {
			assert.False(t, done[i], "odd thread %d should still be blocked", i)
		}
	}
	doneMu.Unlock()

	for i := 0; i < records; i++ {
		snap := tags[i].LoadAcquire()
		assert.True(t, snap.IsLocked())
		assert.False(t, snap.IsValid())
	}

	// Release the first holder of each record; this unblocks the blocked
	// half, which promptly re-locks the same records.
	for i := 0; i < records; i++ {
		tags[i].Release(0)
	}
	sleepEnough()
	wg.Wait()

	doneMu.Lock()
	for i := 0; i < threads; i++ {
		assert.True(t, done[i])
	}
	doneMu.Unlock()

	for i := 0; i < records; i++ {
		tags[i].Release(0)
		require.Equal(t, uint64(0), tags[i].LoadAcquire().Raw())
	}
}

func TestTryLockRejectsSecondHolder(t *testing.T) {
	var tag Tag
	require.True(t, tag.TryLock(1))
	require.False(t, tag.TryLock(2))
	tag.Release(0)
	require.True(t, tag.TryLock(2))
}

func TestReleasePublishesNewTagAndClearsLock(t *testing.T) {
	var tag Tag
	tag.TryLock(3)
	next := NewTagValue(7, 2, true, false)
	tag.Release(next)

	snap := tag.LoadAcquire()
	assert.False(t, snap.IsLocked())
	assert.True(t, snap.IsValid())
	assert.False(t, snap.IsDeleted())
	assert.Equal(t, Epoch(7), snap.Epoch())
	assert.Equal(t, Ordinal(2), snap.Ordinal())
}

func TestSameVersionIgnoresLockBits(t *testing.T) {
	a := Snapshot(NewTagValue(5, 1, true, false))
	locked := Snapshot(a.Raw() | 0x3)
	assert.True(t, a.SameVersion(locked))

	b := Snapshot(NewTagValue(5, 2, true, false))
	assert.False(t, a.SameVersion(b))
}
