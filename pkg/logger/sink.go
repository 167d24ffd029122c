package logger

import "github.com/occstore/engine/pkg/xctid"

// Sink is the backing store a Logger flushes ring buffer segments to.
// Write must be safe to call repeatedly from a single flusher goroutine
// per worker; no cross-worker coordination is required on this path.
type Sink interface {
	// Write persists segment and reports the highest epoch any record
	// in it carries, so recovery can order segments across workers.
	Write(segment []byte, highestEpoch xctid.Epoch) error
	// Close releases any resources the sink holds.
	Close() error
}

// NullSink discards every segment and is always instantly durable,
// used for benchmarking isolated transactional throughput.
type NullSink struct{}

// NewNullSink constructs a discarding sink.
func NewNullSink() *NullSink { return &NullSink{} }

// Write discards segment and reports success unconditionally.
func (NullSink) Write(segment []byte, highestEpoch xctid.Epoch) error { return nil }

// Close is a no-op.
func (NullSink) Close() error { return nil }
