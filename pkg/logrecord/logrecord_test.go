package logrecord

import (
	"testing"

	"github.com/occstore/engine/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplyToRecordIsMemcpy checks that applying a populated write
// record to a record envelope is equivalent to a raw payload copy.
func TestApplyToRecordIsMemcpy(t *testing.T) {
	env := record.New(16)

	ov := NewArrayOverwrite(1, 42, 0, []byte("hello"))
	ov.ApplyToRecord(env)
	assert.Equal(t, []byte("hello"), env.Payload[:5])

	ho := NewHashOverwrite(2, []byte("k"), true, 0, 5, []byte("world"))
	ho.ApplyToRecord(env)
	assert.Equal(t, []byte("world"), env.Payload[5:10])
}

func TestByteLengthsAre8ByteAligned(t *testing.T) {
	records := []Record{
		NewFiller(8),
		NewCreateStorage(1, []byte("meta")),
		NewArrayOverwrite(1, 5, 0, []byte("x")),
		NewHashInsert(2, []byte("key"), true, 7, []byte("payload")),
		NewHashDelete(2, []byte("key"), true, 3),
		NewHashOverwrite(2, []byte("key"), false, 1, 0, []byte("v")),
		NewSequentialAppend(3, []byte("append-me")),
	}
	for _, r := range records {
		require.Equal(t, 0, r.ByteLength()%8, "%T byte length must be 8-byte aligned", r)
		r.AssertValid()
	}
}

type fakePage struct {
	createCalls []uint32
	arrayWrites map[uint64][]byte
	hashInserts map[string][]byte
	hashDeletes map[string]bool
	appended    [][]byte
}

func newFakePage() *fakePage {
	return &fakePage{
		arrayWrites: map[uint64][]byte{},
		hashInserts: map[string][]byte{},
		hashDeletes: map[string]bool{},
	}
}

func (f *fakePage) ApplyCreateStorage(storageID uint32, _ []byte) error {
	f.createCalls = append(f.createCalls, storageID)
	return nil
}
func (f *fakePage) ApplyArrayOverwrite(_ uint32, offset uint64, _ uint16, data []byte, _ uint64) error {
	cp := append([]byte(nil), data...)
	f.arrayWrites[offset] = cp
	return nil
}
func (f *fakePage) ApplyHashInsert(_ uint32, key []byte, _ bool, _ uint16, payload []byte, _ uint64) error {
	f.hashInserts[string(key)] = append([]byte(nil), payload...)
	return nil
}
func (f *fakePage) ApplyHashDelete(_ uint32, key []byte, _ bool, _ uint8, _ uint64) error {
	f.hashDeletes[string(key)] = true
	return nil
}
func (f *fakePage) ApplyHashOverwrite(_ uint32, key []byte, _ bool, _ uint8, _ uint16, payload []byte, _ uint64) error {
	f.hashInserts[string(key)] = append([]byte(nil), payload...)
	return nil
}
func (f *fakePage) ApplySequentialAppend(_ uint32, payload []byte, _ uint64) error {
	f.appended = append(f.appended, append([]byte(nil), payload...))
	return nil
}

// TestLogReplay checks that a stream of Create, Insert, Overwrite,
// Delete applied to an empty page produces the expected sequence of
// page-level effects in order.
func TestLogReplay(t *testing.T) {
	page := newFakePage()
	stream := []Record{
		NewCreateStorage(9, []byte("array-meta")),
		NewHashInsert(9, []byte("k5"), true, 11, []byte("a")),
		NewHashOverwrite(9, []byte("k5"), true, 0, 0, []byte("b")),
		NewHashDelete(9, []byte("k5"), true, 0),
	}
	for _, r := range stream {
		require.NoError(t, r.ApplyToPage(page))
	}

	assert.Equal(t, []uint32{9}, page.createCalls)
	assert.Equal(t, []byte("b"), page.hashInserts["k5"])
	assert.True(t, page.hashDeletes["k5"])
}
