package engine

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/occstore/engine/pkg/logger"
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/pagepool"
	"github.com/occstore/engine/pkg/xctid"
)

func writeWorkerLog(t *testing.T, dataDir string, workerID int, epoch xctid.Epoch, entries ...logrecord.Record) {
	t.Helper()
	path := filepath.Join(dataDir, fmt.Sprintf("worker-%d.db", workerID))
	sink, err := logger.NewBoltSink(path, workerID)
	require.NoError(t, err)
	defer sink.Close()

	var buf []byte
	for _, e := range entries {
		buf = append(buf, logrecord.Encode(e)...)
	}
	require.NoError(t, sink.Write(buf, epoch))
}

func TestRecoverReplaysEveryWorkerLogInOrder(t *testing.T) {
	dataDir := t.TempDir()

	tag := xctid.NewTagValue(3, 1, true, false)
	rec := logrecord.NewHashInsert(7, []byte("k1"), true, 0, []byte("v1"))
	rec.Header().Tag = tag
	writeWorkerLog(t, dataDir, 0, 3, logrecord.NewCreateStorage(7, []byte("meta")), rec)

	tag2 := xctid.NewTagValue(5, 1, true, false)
	rec2 := logrecord.NewHashInsert(7, []byte("k2"), true, 0, []byte("v2"))
	rec2.Header().Tag = tag2
	writeWorkerLog(t, dataDir, 1, 5, rec2)

	snapshotPath := filepath.Join(dataDir, "snapshot.db")
	store, err := pagepool.OpenSnapshotStore(snapshotPath)
	require.NoError(t, err)
	defer store.Close()

	highest, err := Recover(dataDir, 2, store)
	require.NoError(t, err)
	assert.Equal(t, xctid.Epoch(5), highest)

	payload, live, err := store.GetHash(7, []byte("k1"), true)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), payload)
	assert.True(t, live)

	payload2, live2, err := store.GetHash(7, []byte("k2"), true)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), payload2)
	assert.True(t, live2)
}

func TestRecoverToleratesMissingWorkerLog(t *testing.T) {
	dataDir := t.TempDir()
	store, err := pagepool.OpenSnapshotStore(filepath.Join(dataDir, "snapshot.db"))
	require.NoError(t, err)
	defer store.Close()

	highest, err := Recover(dataDir, 1, store)
	require.NoError(t, err)
	assert.Equal(t, xctid.Epoch(0), highest)
}
