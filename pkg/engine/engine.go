package engine

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/occstore/engine/pkg/config"
	"github.com/occstore/engine/pkg/epoch"
	"github.com/occstore/engine/pkg/index"
	"github.com/occstore/engine/pkg/log"
	"github.com/occstore/engine/pkg/logger"
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/pagepool"
	"github.com/occstore/engine/pkg/xct"
	"github.com/occstore/engine/pkg/xctid"
)

// Engine is the top-level wiring of the transactional core: the epoch
// manager, the Workers (spread round-robin over the simulated NUMA
// nodes), the page pool, and the ordered index collaborator.
type Engine struct {
	opts config.Options

	Epoch *epoch.Manager
	Pages *pagepool.Pool
	Index index.OrderedProvider

	workers  []*Worker
	snapshot *pagepool.SnapshotStore
	logger   zerolog.Logger

	storageMu sync.Mutex
	created   map[uint32]bool
}

// New constructs an Engine with numWorkers workers spread round-robin
// across numNodes simulated NUMA nodes. dataDir holds the per-worker
// logger databases and the shared snapshot store; an empty dataDir
// selects NullSink loggers, a benchmarking mode that skips durability.
func New(opts config.Options, numWorkers, numNodes int, dataDir string) (*Engine, error) {
	if numWorkers <= 0 {
		return nil, fmt.Errorf("engine: numWorkers must be positive, got %d", numWorkers)
	}
	if numNodes <= 0 {
		numNodes = 1
	}

	e := &Engine{
		opts:    opts,
		Epoch:   epoch.NewManager(time.Duration(opts.EpochAdvanceIntervalMS) * time.Millisecond),
		Pages:   pagepool.NewPool(),
		Index:   index.NewSortedSlice(),
		logger:  log.WithComponent("engine"),
		created: make(map[uint32]bool),
	}

	var snapshot *pagepool.SnapshotStore
	if !opts.NullLogDevice && dataDir != "" {
		s, err := pagepool.OpenSnapshotStore(filepath.Join(dataDir, "snapshot.db"))
		if err != nil {
			return nil, fmt.Errorf("engine: open snapshot store: %w", err)
		}
		snapshot = s
	}
	e.snapshot = snapshot

	for i := 0; i < numWorkers; i++ {
		sink, err := e.newSink(dataDir, i, opts)
		if err != nil {
			e.Stop()
			return nil, err
		}
		lg := logger.New(i, sink, int(opts.LogBufferKB), e.Epoch.ReportLoggerDurable)
		e.workers = append(e.workers, newWorker(i, i%numNodes, opts.MaxReadSetSize, opts.MaxWriteSetSize, lg, e.Epoch))
	}

	return e, nil
}

func (e *Engine) newSink(dataDir string, workerID int, opts config.Options) (logger.Sink, error) {
	if opts.NullLogDevice || dataDir == "" {
		return logger.NewNullSink(), nil
	}
	path := filepath.Join(dataDir, fmt.Sprintf("worker-%d.db", workerID))
	return logger.NewBoltSink(path, workerID)
}

// Start launches the epoch manager's periodic advance loop.
func (e *Engine) Start() {
	e.Epoch.Start()
	e.logger.Info().Int("workers", len(e.workers)).Msg("engine started")
}

// Stop quiesces all workers' loggers, flushes every ring, and stops the
// epoch manager, in that order so no in-flight append races a closed
// sink.
func (e *Engine) Stop() {
	for _, w := range e.workers {
		w.Stop()
	}
	e.Epoch.Stop()
	if e.snapshot != nil {
		e.snapshot.Close()
	}
	e.logger.Info().Msg("engine stopped")
}

// Worker returns the worker at index i.
func (e *Engine) Worker(i int) *Worker {
	return e.workers[i]
}

// NumWorkers reports how many workers the engine was constructed with.
func (e *Engine) NumWorkers() int {
	return len(e.workers)
}

// Snapshot returns the engine's page-applier collaborator for recovery
// replay, or nil if the engine was constructed with NullLogDevice.
func (e *Engine) Snapshot() *pagepool.SnapshotStore {
	return e.snapshot
}

// CreateStorage registers storageID with metadata, isolated in its own
// epoch so it is never interleaved with operations against that storage.
// A request id generated for each call tags this call's log line and any
// error it returns; it is stored neither in the log entry nor in the
// record. Returns xct.ErrStorageAlreadyExists if
// storageID was already created on this engine instance.
func (e *Engine) CreateStorage(storageID uint32, metadata []byte) error {
	e.storageMu.Lock()
	if e.created[storageID] {
		e.storageMu.Unlock()
		return xct.ErrStorageAlreadyExists
	}
	e.created[storageID] = true
	e.storageMu.Unlock()

	requestID := uuid.NewString()
	e.logger.Info().
		Uint32("storage_id", storageID).
		Str("request_id", requestID).
		Msg("engine: creating storage")

	createEpoch := e.Epoch.AdvanceOnDemand("create-storage")
	entry := logrecord.NewCreateStorage(storageID, metadata)
	entry.Header().Tag = xctid.NewTagValue(createEpoch, 0, true, false)

	if e.snapshot != nil {
		if err := entry.ApplyToPage(e.snapshot); err != nil {
			return fmt.Errorf("engine: apply create-storage %s: %w", requestID, err)
		}
	}

	if len(e.workers) > 0 {
		if err := e.workers[0].logger.Append([]logrecord.Record{entry}, createEpoch); err != nil {
			return fmt.Errorf("engine: log create-storage %s: %w", requestID, err)
		}
	}

	e.Epoch.AdvanceOnDemand("create-storage-complete")
	return nil
}
