package logrecord

import "github.com/occstore/engine/pkg/record"

// ArrayOverwrite carries a partial write into a fixed-size array record.
// The array's key space is the record's offset: an integer index is the
// only key type array storage supports.
type ArrayOverwrite struct {
	hdr            Header
	ArrayIndex     uint64 // the array offset this log targets, for recovery addressing
	OffsetInRecord uint16
	PayloadCount   uint16
	Data           []byte
}

// NewArrayOverwrite populates an ArrayOverwrite record.
func NewArrayOverwrite(storageID uint32, arrayIndex uint64, offsetInRecord uint16, data []byte) *ArrayOverwrite {
	length := align8(HeaderSize + 8 + 4 + len(data))
	return &ArrayOverwrite{
		hdr: Header{
			LogType:   TypeArrayOverwrite,
			Length:    uint16(length),
			StorageID: storageID,
		},
		ArrayIndex:     arrayIndex,
		OffsetInRecord: offsetInRecord,
		PayloadCount:   uint16(len(data)),
		Data:           data,
	}
}

func (a *ArrayOverwrite) Header() *Header { return &a.hdr }
func (a *ArrayOverwrite) ByteLength() int { return int(a.hdr.Length) }

func (a *ArrayOverwrite) ApplyToRecord(env *record.Envelope) {
	copy(env.Payload[a.OffsetInRecord:], a.Data[:a.PayloadCount])
}

func (a *ArrayOverwrite) ApplyToPage(p PageApplier) error {
	return p.ApplyArrayOverwrite(a.hdr.StorageID, a.ArrayIndex, a.OffsetInRecord, a.Data[:a.PayloadCount], a.hdr.Tag)
}

func (a *ArrayOverwrite) AssertValid() {
	if a.hdr.LogType != TypeArrayOverwrite {
		panic("logrecord: array overwrite has wrong type code")
	}
	want := align8(HeaderSize + 8 + 4 + int(a.PayloadCount))
	if int(a.hdr.Length) != want {
		panic("logrecord: array overwrite length mismatch")
	}
}
