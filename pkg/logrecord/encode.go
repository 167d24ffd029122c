package logrecord

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes r into its on-disk form: the 16-byte common header
// followed by the variant's body, already padded to ByteLength() by the
// constructor. Fixed-width binary record framing like this has no
// natural home in any higher-level serialization library (bbolt,
// protobuf and the rest operate one level up, on whole values), so it is
// written with encoding/binary directly.
func Encode(r Record) []byte {
	buf := make([]byte, r.ByteLength())
	hdr := r.Header()
	binary.BigEndian.PutUint16(buf[0:2], uint16(hdr.LogType))
	binary.BigEndian.PutUint16(buf[2:4], hdr.Length)
	binary.BigEndian.PutUint32(buf[4:8], hdr.StorageID)
	binary.BigEndian.PutUint64(buf[8:16], hdr.Tag)

	body := buf[HeaderSize:]
	switch v := r.(type) {
	case *Filler:
		// zero body, nothing to encode
	case *CreateStorage:
		copy(body, v.Metadata)
	case *ArrayOverwrite:
		binary.BigEndian.PutUint64(body[0:8], v.ArrayIndex)
		binary.BigEndian.PutUint16(body[8:10], v.OffsetInRecord)
		binary.BigEndian.PutUint16(body[10:12], v.PayloadCount)
		copy(body[12:], v.Data[:v.PayloadCount])
	case *HashInsert:
		binary.BigEndian.PutUint16(body[0:2], v.KeyLength)
		binary.BigEndian.PutUint16(body[2:4], v.PayloadCount)
		body[4] = boolByte(v.Bin1)
		binary.BigEndian.PutUint16(body[6:8], v.HashTag)
		copy(body[8:], v.Key)
		copy(body[8+int(v.KeyLength):], v.Payload[:v.PayloadCount])
	case *HashDelete:
		binary.BigEndian.PutUint16(body[0:2], v.KeyLength)
		body[2] = boolByte(v.Bin1)
		body[3] = v.Slot
		copy(body[4:], v.Key)
	case *HashOverwrite:
		binary.BigEndian.PutUint16(body[0:2], v.KeyLength)
		binary.BigEndian.PutUint16(body[2:4], v.PayloadOffset)
		binary.BigEndian.PutUint16(body[4:6], v.PayloadCount)
		body[6] = boolByte(v.Bin1)
		body[7] = v.Slot
		copy(body[8:], v.Key)
		copy(body[8+int(v.KeyLength):], v.Payload[:v.PayloadCount])
	case *SequentialAppend:
		binary.BigEndian.PutUint16(body[0:2], v.PayloadCount)
		copy(body[2:], v.Payload[:v.PayloadCount])
	default:
		panic(fmt.Sprintf("logrecord: Encode: unknown variant %T", r))
	}
	return buf
}

// DecodeAll parses a byte stream produced by repeated Encode calls back
// into Record values, Filler records included. A region too short for a
// header, or a record whose length runs past the end of the stream, is
// reported as an error. Used by recovery replay.
func DecodeAll(stream []byte) ([]Record, error) {
	var out []Record
	for len(stream) > 0 {
		if len(stream) < HeaderSize {
			return nil, fmt.Errorf("logrecord: DecodeAll: truncated header (%d bytes left)", len(stream))
		}
		logType := Type(binary.BigEndian.Uint16(stream[0:2]))
		length := binary.BigEndian.Uint16(stream[2:4])
		storageID := binary.BigEndian.Uint32(stream[4:8])
		tag := binary.BigEndian.Uint64(stream[8:16])
		if int(length) > len(stream) {
			return nil, fmt.Errorf("logrecord: DecodeAll: record length %d exceeds remaining %d bytes", length, len(stream))
		}
		body := stream[HeaderSize:length]

		rec, err := decodeOne(logType, storageID, tag, length, body)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		stream = stream[length:]
	}
	return out, nil
}

func decodeOne(logType Type, storageID uint32, tag uint64, length uint16, body []byte) (Record, error) {
	switch logType {
	case TypeFiller:
		return &Filler{hdr: Header{LogType: TypeFiller, Length: length, StorageID: storageID, Tag: tag}}, nil
	case TypeCreateStorage:
		r := NewCreateStorage(storageID, append([]byte(nil), body...))
		r.hdr.Tag = tag
		return r, nil
	case TypeArrayOverwrite:
		arrayIndex := binary.BigEndian.Uint64(body[0:8])
		offsetInRecord := binary.BigEndian.Uint16(body[8:10])
		payloadCount := binary.BigEndian.Uint16(body[10:12])
		data := append([]byte(nil), body[12:12+payloadCount]...)
		r := NewArrayOverwrite(storageID, arrayIndex, offsetInRecord, data)
		r.hdr.Tag = tag
		return r, nil
	case TypeHashInsert:
		keyLength := binary.BigEndian.Uint16(body[0:2])
		payloadCount := binary.BigEndian.Uint16(body[2:4])
		bin1 := body[4] != 0
		hashtag := binary.BigEndian.Uint16(body[6:8])
		key := append([]byte(nil), body[8:8+keyLength]...)
		payload := append([]byte(nil), body[8+keyLength:8+keyLength+payloadCount]...)
		r := NewHashInsert(storageID, key, bin1, hashtag, payload)
		r.hdr.Tag = tag
		return r, nil
	case TypeHashDelete:
		keyLength := binary.BigEndian.Uint16(body[0:2])
		bin1 := body[2] != 0
		slot := body[3]
		key := append([]byte(nil), body[4:4+keyLength]...)
		r := NewHashDelete(storageID, key, bin1, slot)
		r.hdr.Tag = tag
		return r, nil
	case TypeHashOverwrite:
		keyLength := binary.BigEndian.Uint16(body[0:2])
		payloadOffset := binary.BigEndian.Uint16(body[2:4])
		payloadCount := binary.BigEndian.Uint16(body[4:6])
		bin1 := body[6] != 0
		slot := body[7]
		key := append([]byte(nil), body[8:8+keyLength]...)
		payload := append([]byte(nil), body[8+keyLength:8+keyLength+payloadCount]...)
		r := NewHashOverwrite(storageID, key, bin1, slot, payloadOffset, payload)
		r.hdr.Tag = tag
		return r, nil
	case TypeSequentialAppend:
		payloadCount := binary.BigEndian.Uint16(body[0:2])
		payload := append([]byte(nil), body[2:2+payloadCount]...)
		r := NewSequentialAppend(storageID, payload)
		r.hdr.Tag = tag
		return r, nil
	default:
		return nil, fmt.Errorf("logrecord: DecodeAll: unknown log type %d", logType)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
