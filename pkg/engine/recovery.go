package engine

import (
	"fmt"
	"path/filepath"

	"github.com/occstore/engine/pkg/log"
	"github.com/occstore/engine/pkg/logger"
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/pagepool"
	"github.com/occstore/engine/pkg/xctid"
)

// Recover replays every worker's persisted log segments from dataDir
// against snapshot, in flush order per worker, and returns the highest
// epoch observed across all segments. It is the engine's stand-in for
// the excluded snapshot-composer/merge pipeline: rather than folding
// log records into periodic checkpoints, it folds the entire log
// straight into the page-applier on every restart.
//
// Recover is meant to run once, before New, against the same dataDir
// and workerCount a subsequent New call will use. A worker whose log
// file does not exist yet (a fresh data directory) contributes nothing
// and is not an error.
func Recover(dataDir string, numWorkers int, snapshot *pagepool.SnapshotStore) (xctid.Epoch, error) {
	recoveryLog := log.WithComponent("recovery")
	var highest xctid.Epoch

	for workerID := 0; workerID < numWorkers; workerID++ {
		path := filepath.Join(dataDir, fmt.Sprintf("worker-%d.db", workerID))

		sink, err := logger.NewBoltSink(path, workerID)
		if err != nil {
			return highest, fmt.Errorf("engine: recovery: open worker %d log: %w", workerID, err)
		}

		segments, err := sink.Segments()
		if err != nil {
			sink.Close()
			return highest, fmt.Errorf("engine: recovery: read worker %d segments: %w", workerID, err)
		}

		var applied int
		for _, seg := range segments {
			records, err := logrecord.DecodeAll(seg)
			if err != nil {
				sink.Close()
				return highest, fmt.Errorf("engine: recovery: decode worker %d segment: %w", workerID, err)
			}
			for _, rec := range records {
				if err := rec.ApplyToPage(snapshot); err != nil {
					sink.Close()
					return highest, fmt.Errorf("engine: recovery: apply worker %d record: %w", workerID, err)
				}
				applied++
				if epoch := xctid.Snapshot(rec.Header().Tag).Epoch(); epoch > highest {
					highest = epoch
				}
			}
		}

		if err := sink.Close(); err != nil {
			return highest, fmt.Errorf("engine: recovery: close worker %d log: %w", workerID, err)
		}
		recoveryLog.Info().Int("worker", workerID).Int("records", applied).Msg("recovery: replayed worker log")
	}

	recoveryLog.Info().Uint32("highest_epoch", uint32(highest)).Msg("recovery: complete")
	return highest, nil
}
