package logger

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/occstore/engine/pkg/xctid"
)

// BoltSink persists flushed segments to a bbolt database, one bucket
// per worker, keyed by a monotonic sequence number so recovery can
// replay segments in flush order.
type BoltSink struct {
	db       *bolt.DB
	bucket   []byte
	sequence uint64
}

// NewBoltSink opens (or creates) path and returns a sink writing into
// the bucket for workerID.
func NewBoltSink(path string, workerID int) (*BoltSink, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("logger: open bolt sink: %w", err)
	}

	bucket := []byte(fmt.Sprintf("worker-%d", workerID))
	var next uint64
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		// Continue after the last persisted segment so reopening an
		// existing log appends instead of overwriting earlier keys.
		if k, _ := b.Cursor().Last(); k != nil {
			next = binary.BigEndian.Uint64(k) + 1
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("logger: create worker bucket: %w", err)
	}

	return &BoltSink{db: db, bucket: bucket, sequence: next}, nil
}

// Write appends segment under the next sequence key, alongside
// highestEpoch so a reader can reconstruct durability without
// decoding every log record.
func (s *BoltSink) Write(segment []byte, highestEpoch xctid.Epoch) error {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, s.sequence)
	s.sequence++

	value := make([]byte, 4+len(segment))
	binary.BigEndian.PutUint32(value, uint32(highestEpoch))
	copy(value[4:], segment)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		return b.Put(key, value)
	})
}

// Segments returns every persisted segment in flush order, for
// recovery replay.
func (s *BoltSink) Segments() ([][]byte, error) {
	var segments [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			segment := make([]byte, len(v)-4)
			copy(segment, v[4:])
			segments = append(segments, segment)
		}
		return nil
	})
	return segments, err
}

// Close closes the underlying bbolt database.
func (s *BoltSink) Close() error {
	return s.db.Close()
}
