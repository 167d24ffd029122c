package logrecord

import "github.com/occstore/engine/pkg/record"

// SequentialAppend has no keyed addressing: it is appended to a
// per-worker page in arrival order.
type SequentialAppend struct {
	hdr          Header
	PayloadCount uint16
	Payload      []byte
}

func NewSequentialAppend(storageID uint32, payload []byte) *SequentialAppend {
	length := align8(HeaderSize + 2 + len(payload))
	return &SequentialAppend{
		hdr: Header{
			LogType:   TypeSequentialAppend,
			Length:    uint16(length),
			StorageID: storageID,
		},
		PayloadCount: uint16(len(payload)),
		Payload:      payload,
	}
}

func (s *SequentialAppend) Header() *Header { return &s.hdr }
func (s *SequentialAppend) ByteLength() int { return int(s.hdr.Length) }

func (s *SequentialAppend) ApplyToRecord(env *record.Envelope) {
	copy(env.Payload, s.Payload[:s.PayloadCount])
}

func (s *SequentialAppend) ApplyToPage(p PageApplier) error {
	return p.ApplySequentialAppend(s.hdr.StorageID, s.Payload[:s.PayloadCount], s.hdr.Tag)
}

func (s *SequentialAppend) AssertValid() {
	if s.hdr.LogType != TypeSequentialAppend {
		panic("logrecord: sequential append has wrong type code")
	}
	want := align8(HeaderSize + 2 + int(s.PayloadCount))
	if int(s.hdr.Length) != want {
		panic("logrecord: sequential append length mismatch")
	}
}
