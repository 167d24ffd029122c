package engine

import (
	"github.com/occstore/engine/pkg/commit"
	"github.com/occstore/engine/pkg/epoch"
	"github.com/occstore/engine/pkg/logger"
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/record"
	"github.com/occstore/engine/pkg/xct"
)

// Worker is one NUMA-pinned transaction runner: a reusable Xct context,
// its own commit.Coordinator (and therefore its own in-epoch ordinal
// counter), and its own Logger.
type Worker struct {
	ID     int
	NodeID int

	xct    *xct.Xct
	coord  *commit.Coordinator
	logger *logger.Logger
	mgr    *epoch.Manager
}

// newWorker constructs a Worker pinned to nodeID, with read/write sets
// sized from opts.
func newWorker(id, nodeID int, maxReadSet, maxWriteSet uint32, lg *logger.Logger, mgr *epoch.Manager) *Worker {
	return &Worker{
		ID:     id,
		NodeID: nodeID,
		xct:    xct.New(id, maxReadSet, maxWriteSet),
		coord:  commit.NewCoordinator(id),
		logger: lg,
		mgr:    mgr,
	}
}

// RunTransaction executes one transaction body under isolation,
// committing at the end if body returns nil and reporting the body's
// error (or a verification abort) otherwise. body uses AddRead/AddWrite
// on the worker's transaction context to build the read/write sets.
func (w *Worker) RunTransaction(isolation xct.IsolationLevel, body func(x *xct.Xct) error) error {
	w.xct.Begin(isolation, w.mgr.Current())

	if err := body(w.xct); err != nil {
		w.xct.Abort()
		return err
	}

	return w.coord.Precommit(w.xct, w.mgr, w.logger)
}

// AddRead records a read observation on env into the worker's active
// transaction.
func (w *Worker) AddRead(env *record.Envelope) error {
	return w.xct.AddToReadSet(env)
}

// AddWrite records a prepared write on env into the worker's active
// transaction.
func (w *Worker) AddWrite(env *record.Envelope, logEntry logrecord.Record) error {
	return w.xct.AddToWriteSet(env, logEntry)
}

// Stop shuts down the worker's logger.
func (w *Worker) Stop() {
	w.logger.Stop()
}
