package commit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/occstore/engine/pkg/epoch"
	"github.com/occstore/engine/pkg/logger"
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/record"
	"github.com/occstore/engine/pkg/xct"
)

func newTestHarness() (*epoch.Manager, *logger.Logger) {
	mgr := epoch.NewManager(time.Hour)
	lg := logger.New(0, logger.NewNullSink(), 16, mgr.ReportLoggerDurable)
	return mgr, lg
}

func TestPrecommitEmptyWriteSetStillVerifiesReads(t *testing.T) {
	mgr, lg := newTestHarness()
	defer lg.Stop()
	c := NewCoordinator(0)

	env := record.New(8)
	x := xct.New(0, 8, 8)
	x.Begin(xct.Serializable, mgr.Current())
	require.NoError(t, x.AddToReadSet(env))

	// Concurrently commit a write through the same record via a second
	// transaction, invalidating the first's read.
	c2 := NewCoordinator(1)
	x2 := xct.New(1, 8, 8)
	x2.Begin(xct.Serializable, mgr.Current())
	require.NoError(t, x2.AddToWriteSet(env, logrecord.NewSequentialAppend(1, []byte("v"))))
	require.NoError(t, c2.Precommit(x2, mgr, lg))

	err := c.Precommit(x, mgr, lg)
	assert.ErrorIs(t, err, xct.ErrRaceAbort)
}

// TestReadWriteRace mirrors spec scenario 3: T1 reads R observing one
// tag, T2 commits an overwrite publishing a new tag, and T1's precommit
// sees the mismatch and aborts while R reflects T2's write.
func TestReadWriteRace(t *testing.T) {
	mgr, lg := newTestHarness()
	defer lg.Stop()

	env := record.New(8)

	c1 := NewCoordinator(0)
	x1 := xct.New(0, 8, 8)
	x1.Begin(xct.Serializable, mgr.Current())
	require.NoError(t, x1.AddToReadSet(env))

	c2 := NewCoordinator(1)
	x2 := xct.New(1, 8, 8)
	x2.Begin(xct.Serializable, mgr.Current())
	require.NoError(t, x2.AddToWriteSet(env, logrecord.NewSequentialAppend(1, []byte("T2-write"))))
	require.NoError(t, c2.Precommit(x2, mgr, lg))

	err := c1.Precommit(x1, mgr, lg)
	assert.ErrorIs(t, err, xct.ErrRaceAbort)
	assert.Equal(t, "T2-write", string(env.Payload[:len("T2-write")]))
}

// TestWriteSkewSerialization mirrors spec scenario 4: T1 writes R1 and
// reads R2; T2 writes R2 and reads R1. At most one commits.
func TestWriteSkewSerialization(t *testing.T) {
	mgr, lg := newTestHarness()
	defer lg.Stop()

	r1 := record.New(8)
	r2 := record.New(8)

	c1 := NewCoordinator(0)
	x1 := xct.New(0, 8, 8)
	x1.Begin(xct.Serializable, mgr.Current())
	require.NoError(t, x1.AddToReadSet(r2))
	require.NoError(t, x1.AddToWriteSet(r1, logrecord.NewSequentialAppend(1, []byte("x1"))))

	c2 := NewCoordinator(1)
	x2 := xct.New(1, 8, 8)
	x2.Begin(xct.Serializable, mgr.Current())
	require.NoError(t, x2.AddToReadSet(r1))
	require.NoError(t, x2.AddToWriteSet(r2, logrecord.NewSequentialAppend(1, []byte("x2"))))

	err1 := c1.Precommit(x1, mgr, lg)
	err2 := c2.Precommit(x2, mgr, lg)

	committed := 0
	if err1 == nil {
		committed++
	}
	if err2 == nil {
		committed++
	}
	assert.LessOrEqual(t, committed, 1, "write skew must not let both transactions commit")
}

func TestPrecommitDeduplicatesSameRecordWrittenTwice(t *testing.T) {
	mgr, lg := newTestHarness()
	defer lg.Stop()
	c := NewCoordinator(0)

	env := record.New(8)
	x := xct.New(0, 8, 8)
	x.Begin(xct.Serializable, mgr.Current())
	require.NoError(t, x.AddToWriteSet(env, logrecord.NewSequentialAppend(1, []byte("first"))))
	require.NoError(t, x.AddToWriteSet(env, logrecord.NewSequentialAppend(1, []byte("second"))))

	require.NoError(t, c.Precommit(x, mgr, lg))
	assert.Equal(t, "second", string(env.Payload[:len("second")]))
	assert.False(t, env.Tag.IsLocked())
}
