package logger

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/occstore/engine/pkg/log"
	"github.com/occstore/engine/pkg/logrecord"
	"github.com/occstore/engine/pkg/metrics"
	"github.com/occstore/engine/pkg/xctid"
)

// segment is one flushed range handed from the ring to the flusher.
type segment struct {
	bytes        []byte
	highestEpoch xctid.Epoch
}

// Logger is one worker's log appender: single-producer (the owning
// worker's commit coordinator, via Append) / single-consumer (the
// flusher goroutine) ring, buffered by a channel sized from
// config.Options.LogBufferKB. Durability is advertised to the epoch
// manager as each segment reaches the sink.
type Logger struct {
	workerID int
	ring     chan segment
	sink     Sink

	ringBytes atomic.Int64

	durable   atomic.Uint32
	onDurable func(workerID int, durable xctid.Epoch)
	logger    zerolog.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New constructs a Logger for workerID, writing flushed segments to
// sink. ringCapacity bounds how many unflushed segments may be pending
// before Append blocks the caller, the backpressure point when the
// ring buffer fills up.
//
// onDurable is invoked from the flusher goroutine every time this
// worker's durable epoch advances; callers wire it to
// epoch.Manager.ReportLoggerDurable.
func New(workerID int, sink Sink, ringCapacity int, onDurable func(workerID int, durable xctid.Epoch)) *Logger {
	l := &Logger{
		workerID:  workerID,
		ring:      make(chan segment, ringCapacity),
		sink:      sink,
		onDurable: onDurable,
		logger:    log.WithWorker(workerID),
		stopCh:    make(chan struct{}),
	}
	l.wg.Add(1)
	go l.flush()
	return l
}

// Append serializes entries and enqueues them for flushing, tagged with
// epoch. This worker's commit coordinator calls it in Phase 5;
// Engine.CreateStorage also calls it on worker 0's logger for
// storage-creation entries.
func (l *Logger) Append(entries []logrecord.Record, epoch xctid.Epoch) error {
	if len(entries) == 0 {
		return nil
	}
	var buf []byte
	for _, e := range entries {
		buf = append(buf, logrecord.Encode(e)...)
	}
	l.ringBytes.Add(int64(len(buf)))
	metrics.LoggerRingBytesUsed.WithLabelValues(workerLabel(l.workerID)).Set(float64(l.ringBytes.Load()))

	select {
	case l.ring <- segment{bytes: buf, highestEpoch: epoch}:
		return nil
	case <-l.stopCh:
		return nil
	}
}

// Durable returns the highest epoch this worker's logger has flushed.
func (l *Logger) Durable() xctid.Epoch {
	return xctid.Epoch(l.durable.Load())
}

// Stop signals the flusher to shut down, waits for it to write every
// segment already queued to the sink, then closes the sink. An Append
// racing with Stop may return without enqueuing its segment.
func (l *Logger) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
	l.sink.Close()
}

func (l *Logger) flush() {
	defer l.wg.Done()
	for {
		select {
		case seg := <-l.ring:
			l.flushOne(seg)
		case <-l.stopCh:
			// Drain anything already queued before shutting down.
			for {
				select {
				case seg := <-l.ring:
					l.flushOne(seg)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) flushOne(seg segment) {
	if err := l.sink.Write(seg.bytes, seg.highestEpoch); err != nil {
		l.logger.Error().Err(err).Msg("logger: sink write failed")
		return
	}
	l.ringBytes.Add(-int64(len(seg.bytes)))
	metrics.LoggerRingBytesUsed.WithLabelValues(workerLabel(l.workerID)).Set(float64(l.ringBytes.Load()))
	metrics.LogRecordsFlushedTotal.WithLabelValues(workerLabel(l.workerID)).Inc()

	if uint32(seg.highestEpoch) > l.durable.Load() {
		l.durable.Store(uint32(seg.highestEpoch))
		if l.onDurable != nil {
			l.onDurable(l.workerID, seg.highestEpoch)
		}
	}
}

func workerLabel(workerID int) string {
	return strconv.Itoa(workerID)
}
