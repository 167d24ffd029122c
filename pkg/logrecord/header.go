package logrecord

import "github.com/occstore/engine/pkg/record"

// Type codes for the common header's log_type_code field.
type Type uint16

const (
	TypeFiller Type = iota
	TypeCreateStorage
	TypeArrayOverwrite
	TypeHashInsert
	TypeHashDelete
	TypeHashOverwrite
	TypeSequentialAppend
)

// HeaderSize is the fixed 16-byte common header every variant begins
// with.
const HeaderSize = 16

// Header is the common prefix of every log record variant.
type Header struct {
	LogType   Type
	Length    uint16 // bytes, always a multiple of 8
	StorageID uint32
	Tag       uint64 // epoch<<32 | ordinal<<8 | status<<3 | lock
}

// align8 rounds n up to the next multiple of 8, the padding invariant
// every variant's ByteLength must satisfy.
func align8(n int) int {
	return (n + 7) &^ 7
}

// Record is the capability set every log record variant implements.
type Record interface {
	// Header returns the record's common header.
	Header() *Header
	// ByteLength returns the total on-wire size, including the header,
	// padded to a multiple of 8.
	ByteLength() int
	// ApplyToRecord mutates a live, already-located record envelope's
	// payload. Used by the commit coordinator's Phase 4.
	ApplyToRecord(env *record.Envelope)
	// ApplyToPage replays the same logical mutation against a page
	// reached only via the log entry's own addressing, through the
	// page-applier collaborator. Used by recovery.
	ApplyToPage(p PageApplier) error
	// AssertValid is a debug-only consistency check of header vs. body.
	AssertValid()
}

// PageApplier is the narrow interface the page pool exposes to recovery
// replay. The transactional core treats every storage family as an
// opaque implementer of this interface, the same way it treats the
// index as an ordered key/value provider rather than a concrete tree.
type PageApplier interface {
	ApplyCreateStorage(storageID uint32, metadata []byte) error
	ApplyArrayOverwrite(storageID uint32, offset uint64, payloadOffset uint16, data []byte, tag uint64) error
	ApplyHashInsert(storageID uint32, key []byte, bin1 bool, hashtag uint16, payload []byte, tag uint64) error
	ApplyHashDelete(storageID uint32, key []byte, bin1 bool, slot uint8, tag uint64) error
	ApplyHashOverwrite(storageID uint32, key []byte, bin1 bool, slot uint8, payloadOffset uint16, data []byte, tag uint64) error
	ApplySequentialAppend(storageID uint32, payload []byte, tag uint64) error
}
