package logrecord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	stream := []Record{
		NewCreateStorage(9, []byte("array-meta")),
		NewHashInsert(9, []byte("k5"), true, 11, []byte("a")),
		NewHashOverwrite(9, []byte("k5"), true, 0, 0, []byte("b")),
		NewHashDelete(9, []byte("k5"), true, 0),
		NewArrayOverwrite(1, 42, 0, []byte("hello")),
		NewSequentialAppend(3, []byte("append-me")),
		NewFiller(16),
	}

	var buf []byte
	for _, r := range stream {
		buf = append(buf, Encode(r)...)
	}

	decoded, err := DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, decoded, len(stream))

	for i, want := range stream {
		got := decoded[i]
		assert.Equal(t, want.Header().LogType, got.Header().LogType)
		assert.Equal(t, want.Header().StorageID, got.Header().StorageID)
		assert.Equal(t, want.ByteLength(), got.ByteLength())
	}
}

func TestDecodeAllRejectsTruncatedHeader(t *testing.T) {
	_, err := DecodeAll([]byte{1, 2, 3})
	assert.Error(t, err)
}
