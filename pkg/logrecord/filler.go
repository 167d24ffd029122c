package logrecord

import "github.com/occstore/engine/pkg/record"

// Filler is a zero-byte-body padding record. It lets recovery skip to the
// next 8-byte boundary deterministically.
type Filler struct {
	hdr Header
}

// NewFiller builds a filler record of the given total length (already a
// multiple of 8, header included).
func NewFiller(length uint16) *Filler {
	return &Filler{hdr: Header{LogType: TypeFiller, Length: length}}
}

func (f *Filler) Header() *Header    { return &f.hdr }
func (f *Filler) ByteLength() int    { return int(f.hdr.Length) }
func (f *Filler) ApplyToRecord(*record.Envelope) {}
func (f *Filler) ApplyToPage(PageApplier) error  { return nil }
func (f *Filler) AssertValid() {
	if f.hdr.LogType != TypeFiller {
		panic("logrecord: filler has wrong type code")
	}
	if int(f.hdr.Length)%8 != 0 {
		panic("logrecord: filler length not 8-byte aligned")
	}
}
