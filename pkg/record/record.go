package record

import "github.com/occstore/engine/pkg/xctid"

// Envelope is the (tag, payload) pair the commit protocol synchronizes
// over. Records are never physically removed; logical deletion sets the
// tag's deleted status flag.
type Envelope struct {
	Tag     xctid.Tag
	Payload []byte
}

// Pointer is the stable address of an Envelope, used directly as the
// record pointer the commit protocol locks, verifies, and publishes.
type Pointer = *Envelope

// New allocates an envelope with payloadSize bytes of zeroed payload and
// a never-committed tag.
func New(payloadSize int) *Envelope {
	return &Envelope{Payload: make([]byte, payloadSize)}
}

// ReadPayload returns the envelope's payload bytes. Callers must have
// already loaded Tag with LoadAcquire before calling this, so the
// payload read is ordered after the version check.
func (e *Envelope) ReadPayload() []byte {
	return e.Payload
}
