package logrecord

import "github.com/occstore/engine/pkg/record"

// CreateStorage is processed out-of-band in its own epoch: storage
// creation is never interleaved with operations on that storage.
type CreateStorage struct {
	hdr      Header
	Metadata []byte
}

// NewCreateStorage populates a CreateStorage record for storageID.
func NewCreateStorage(storageID uint32, metadata []byte) *CreateStorage {
	length := align8(HeaderSize + len(metadata))
	return &CreateStorage{
		hdr: Header{
			LogType:   TypeCreateStorage,
			Length:    uint16(length),
			StorageID: storageID,
		},
		Metadata: metadata,
	}
}

func (c *CreateStorage) Header() *Header { return &c.hdr }
func (c *CreateStorage) ByteLength() int { return int(c.hdr.Length) }

// ApplyToRecord is a no-op: storage creation has no target record.
func (c *CreateStorage) ApplyToRecord(*record.Envelope) {}

func (c *CreateStorage) ApplyToPage(p PageApplier) error {
	return p.ApplyCreateStorage(c.hdr.StorageID, c.Metadata)
}

func (c *CreateStorage) AssertValid() {
	if c.hdr.LogType != TypeCreateStorage {
		panic("logrecord: create-storage has wrong type code")
	}
	want := align8(HeaderSize + len(c.Metadata))
	if int(c.hdr.Length) != want {
		panic("logrecord: create-storage length mismatch")
	}
}
