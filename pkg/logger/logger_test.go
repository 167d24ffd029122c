package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/xctid"
)

func TestNullSinkLoggerAdvertisesDurableImmediately(t *testing.T) {
	var reported xctid.Epoch
	var reportedWorker int

	l := New(0, NewNullSink(), 8, func(workerID int, durable xctid.Epoch) {
		reportedWorker = workerID
		reported = durable
	})
	defer l.Stop()

	entries := []logrecord.Record{logrecord.NewSequentialAppend(1, []byte("hello"))}
	require.NoError(t, l.Append(entries, 5))

	assert.Eventually(t, func() bool { return l.Durable() == 5 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, reportedWorker)
	assert.Equal(t, xctid.Epoch(5), reported)
}

func TestAppendWithNoEntriesIsNoop(t *testing.T) {
	l := New(0, NewNullSink(), 8, nil)
	defer l.Stop()
	require.NoError(t, l.Append(nil, 1))
	assert.Equal(t, xctid.Epoch(0), l.Durable())
}

func TestBoltSinkPersistsAndReplaysSegments(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewBoltSink(dir+"/log.db", 3)
	require.NoError(t, err)

	l := New(3, sink, 8, nil)

	entries := []logrecord.Record{
		logrecord.NewCreateStorage(1, []byte("meta")),
		logrecord.NewSequentialAppend(1, []byte("payload")),
	}
	require.NoError(t, l.Append(entries, 2))

	assert.Eventually(t, func() bool { return l.Durable() == 2 }, time.Second, time.Millisecond)

	segments, err := sink.Segments()
	require.NoError(t, err)
	require.Len(t, segments, 1)

	l.Stop()

	decoded, err := logrecord.DecodeAll(segments[0])
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, logrecord.TypeCreateStorage, decoded[0].Header().LogType)
	assert.Equal(t, logrecord.TypeSequentialAppend, decoded[1].Header().LogType)
}
