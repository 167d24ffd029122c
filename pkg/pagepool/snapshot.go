package pagepool

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/occstore/engine/pkg/logrecord"
)

var metaKey = []byte("__meta__")

// SnapshotStore is a bbolt-backed logrecord.PageApplier: one bucket per
// storage id, the bucket name derived from the storage id recovery
// addresses every log record with. It stands in for a full snapshot
// composer/merge pipeline with just enough behavior to make recovery
// replay observable.
type SnapshotStore struct {
	db *bolt.DB
}

// OpenSnapshotStore opens (or creates) the bbolt database at path.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("pagepool: open snapshot store: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error { return s.db.Close() }

func bucketName(storageID uint32) []byte {
	return []byte(fmt.Sprintf("storage-%d", storageID))
}

func (s *SnapshotStore) bucket(tx *bolt.Tx, storageID uint32) (*bolt.Bucket, error) {
	return tx.CreateBucketIfNotExists(bucketName(storageID))
}

// ApplyCreateStorage records storageID's metadata blob, isolated in its
// own epoch.
func (s *SnapshotStore) ApplyCreateStorage(storageID uint32, metadata []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, storageID)
		if err != nil {
			return err
		}
		return b.Put(metaKey, metadata)
	})
}

// ApplyArrayOverwrite merges data into the record at the given array
// offset, growing the stored record if this is its first write.
func (s *SnapshotStore) ApplyArrayOverwrite(storageID uint32, offset uint64, payloadOffset uint16, data []byte, tag uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, storageID)
		if err != nil {
			return err
		}
		key := arrayKey(offset)
		rec := readRecord(b.Get(key))
		rec = rec.withOverwrite(int(payloadOffset), data)
		rec.tag = tag
		return b.Put(key, rec.encode())
	})
}

// ApplyHashInsert installs payload as a fresh, valid record for key.
func (s *SnapshotStore) ApplyHashInsert(storageID uint32, key []byte, bin1 bool, hashtag uint16, payload []byte, tag uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, storageID)
		if err != nil {
			return err
		}
		rec := record{tag: tag, deleted: false, payload: append([]byte(nil), payload...)}
		return b.Put(hashKey(bin1, key), rec.encode())
	})
}

// ApplyHashDelete marks key's record deleted without touching its
// payload, matching ApplyToRecord's "does nothing but flip the delete
// bit" behavior.
func (s *SnapshotStore) ApplyHashDelete(storageID uint32, key []byte, bin1 bool, slot uint8, tag uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, storageID)
		if err != nil {
			return err
		}
		k := hashKey(bin1, key)
		rec := readRecord(b.Get(k))
		rec.deleted = true
		rec.tag = tag
		return b.Put(k, rec.encode())
	})
}

// ApplyHashOverwrite merges data into key's stored payload at offset.
func (s *SnapshotStore) ApplyHashOverwrite(storageID uint32, key []byte, bin1 bool, slot uint8, payloadOffset uint16, data []byte, tag uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, storageID)
		if err != nil {
			return err
		}
		k := hashKey(bin1, key)
		rec := readRecord(b.Get(k))
		rec = rec.withOverwrite(int(payloadOffset), data)
		rec.tag = tag
		return b.Put(k, rec.encode())
	})
}

// ApplySequentialAppend appends payload under the next monotonic key in
// storageID's bucket.
func (s *SnapshotStore) ApplySequentialAppend(storageID uint32, payload []byte, tag uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := s.bucket(tx, storageID)
		if err != nil {
			return err
		}
		seq, _ := b.NextSequence()
		rec := record{tag: tag, payload: append([]byte(nil), payload...)}
		return b.Put(sequentialKey(seq), rec.encode())
	})
}

// GetArray returns the current stored record for offset, or nil if
// never written.
func (s *SnapshotStore) GetArray(storageID uint32, offset uint64) ([]byte, error) {
	var payload []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(storageID))
		if b == nil {
			return nil
		}
		rec := readRecord(b.Get(arrayKey(offset)))
		payload = rec.payload
		return nil
	})
	return payload, err
}

// GetHash returns the current stored record for key, and whether it is
// live (present and not deleted).
func (s *SnapshotStore) GetHash(storageID uint32, key []byte, bin1 bool) ([]byte, bool, error) {
	var payload []byte
	var live bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(storageID))
		if b == nil {
			return nil
		}
		raw := b.Get(hashKey(bin1, key))
		if raw == nil {
			return nil
		}
		rec := readRecord(raw)
		payload = rec.payload
		live = !rec.deleted
		return nil
	})
	return payload, live, err
}

func arrayKey(offset uint64) []byte {
	key := make([]byte, 9)
	key[0] = 'a'
	binary.BigEndian.PutUint64(key[1:], offset)
	return key
}

func hashKey(bin1 bool, key []byte) []byte {
	out := make([]byte, 2+len(key))
	out[0] = 'h'
	if bin1 {
		out[1] = 1
	}
	copy(out[2:], key)
	return out
}

func sequentialKey(seq uint64) []byte {
	key := make([]byte, 9)
	key[0] = 's'
	binary.BigEndian.PutUint64(key[1:], seq)
	return key
}

// record is the stored representation of one page-level entry:
// tag, a deleted flag, and a payload.
type record struct {
	tag     uint64
	deleted bool
	payload []byte
}

func readRecord(raw []byte) record {
	if len(raw) < 9 {
		return record{}
	}
	return record{
		tag:     binary.BigEndian.Uint64(raw[0:8]),
		deleted: raw[8] != 0,
		payload: append([]byte(nil), raw[9:]...),
	}
}

func (r record) encode() []byte {
	out := make([]byte, 9+len(r.payload))
	binary.BigEndian.PutUint64(out[0:8], r.tag)
	if r.deleted {
		out[8] = 1
	}
	copy(out[9:], r.payload)
	return out
}

func (r record) withOverwrite(offset int, data []byte) record {
	need := offset + len(data)
	if need > len(r.payload) {
		grown := make([]byte, need)
		copy(grown, r.payload)
		r.payload = grown
	}
	copy(r.payload[offset:], data)
	return r
}

var _ logrecord.PageApplier = (*SnapshotStore)(nil)
