package logrecord

import "github.com/occstore/engine/pkg/record"

// HashInsert carries: key_length, payload_count, the primary/alternative
// bin flag, an auxiliary hashtag, then key bytes followed by payload
// bytes.
type HashInsert struct {
	hdr          Header
	KeyLength    uint16
	PayloadCount uint16
	Bin1         bool // true: primary bin, false: alternative bin
	HashTag      uint16
	Key          []byte
	Payload      []byte
}

func NewHashInsert(storageID uint32, key []byte, bin1 bool, hashtag uint16, payload []byte) *HashInsert {
	length := align8(HeaderSize + 8 + len(key) + len(payload))
	return &HashInsert{
		hdr: Header{
			LogType:   TypeHashInsert,
			Length:    uint16(length),
			StorageID: storageID,
		},
		KeyLength:    uint16(len(key)),
		PayloadCount: uint16(len(payload)),
		Bin1:         bin1,
		HashTag:      hashtag,
		Key:          key,
		Payload:      payload,
	}
}

func (h *HashInsert) Header() *Header { return &h.hdr }
func (h *HashInsert) ByteLength() int { return int(h.hdr.Length) }

// ApplyToRecord copies the payload into the record; the valid,
// non-deleted status is stamped into the tag by the commit coordinator.
func (h *HashInsert) ApplyToRecord(env *record.Envelope) {
	copy(env.Payload, h.Payload)
}

func (h *HashInsert) ApplyToPage(p PageApplier) error {
	return p.ApplyHashInsert(h.hdr.StorageID, h.Key, h.Bin1, h.HashTag, h.Payload, h.hdr.Tag)
}

func (h *HashInsert) AssertValid() {
	if h.hdr.LogType != TypeHashInsert {
		panic("logrecord: hash insert has wrong type code")
	}
	want := align8(HeaderSize + 8 + int(h.KeyLength) + int(h.PayloadCount))
	if int(h.hdr.Length) != want {
		panic("logrecord: hash insert length mismatch")
	}
}

// HashDelete flips the delete bit; it carries the slot purely as an
// addressing optimization so apply can skip the hash probe.
type HashDelete struct {
	hdr       Header
	KeyLength uint16
	Bin1      bool
	Slot      uint8
	Key       []byte
}

func NewHashDelete(storageID uint32, key []byte, bin1 bool, slot uint8) *HashDelete {
	length := align8(HeaderSize + 4 + len(key))
	return &HashDelete{
		hdr: Header{
			LogType:   TypeHashDelete,
			Length:    uint16(length),
			StorageID: storageID,
		},
		KeyLength: uint16(len(key)),
		Bin1:      bin1,
		Slot:      slot,
		Key:       key,
	}
}

func (h *HashDelete) Header() *Header { return &h.hdr }
func (h *HashDelete) ByteLength() int { return int(h.hdr.Length) }

// ApplyToRecord does nothing but flip the delete bit, which happens in
// the tag (the commit coordinator stamps status=deleted); the payload is
// left untouched.
func (h *HashDelete) ApplyToRecord(*record.Envelope) {}

func (h *HashDelete) ApplyToPage(p PageApplier) error {
	return p.ApplyHashDelete(h.hdr.StorageID, h.Key, h.Bin1, h.Slot, h.hdr.Tag)
}

func (h *HashDelete) AssertValid() {
	if h.hdr.LogType != TypeHashDelete {
		panic("logrecord: hash delete has wrong type code")
	}
	want := align8(HeaderSize + 4 + int(h.KeyLength))
	if int(h.hdr.Length) != want {
		panic("logrecord: hash delete length mismatch")
	}
}

// HashOverwrite is a straight memcpy into an existing record's payload at
// an offset.
type HashOverwrite struct {
	hdr           Header
	KeyLength     uint16
	PayloadOffset uint16
	PayloadCount  uint16
	Bin1          bool
	Slot          uint8
	Key           []byte
	Payload       []byte
}

func NewHashOverwrite(storageID uint32, key []byte, bin1 bool, slot uint8, payloadOffset uint16, payload []byte) *HashOverwrite {
	length := align8(HeaderSize + 8 + len(key) + len(payload))
	return &HashOverwrite{
		hdr: Header{
			LogType:   TypeHashOverwrite,
			Length:    uint16(length),
			StorageID: storageID,
		},
		KeyLength:     uint16(len(key)),
		PayloadOffset: payloadOffset,
		PayloadCount:  uint16(len(payload)),
		Bin1:          bin1,
		Slot:          slot,
		Key:           key,
		Payload:       payload,
	}
}

func (h *HashOverwrite) Header() *Header { return &h.hdr }
func (h *HashOverwrite) ByteLength() int { return int(h.hdr.Length) }

func (h *HashOverwrite) ApplyToRecord(env *record.Envelope) {
	copy(env.Payload[h.PayloadOffset:], h.Payload[:h.PayloadCount])
}

func (h *HashOverwrite) ApplyToPage(p PageApplier) error {
	return p.ApplyHashOverwrite(h.hdr.StorageID, h.Key, h.Bin1, h.Slot, h.PayloadOffset, h.Payload, h.hdr.Tag)
}

func (h *HashOverwrite) AssertValid() {
	if h.hdr.LogType != TypeHashOverwrite {
		panic("logrecord: hash overwrite has wrong type code")
	}
	want := align8(HeaderSize + 8 + int(h.KeyLength) + int(h.PayloadCount))
	if int(h.hdr.Length) != want {
		panic("logrecord: hash overwrite length mismatch")
	}
}
