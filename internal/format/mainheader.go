package format

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrSignature is returned when a fixed record does not start with the
// expected signature.
var ErrSignature = errors.New("format: bad record signature")

// MainHeader is the decoded end-of-central-directory record. It
// identifies the entry count, the central directory location and size,
// and the length of the archive comment that follows the fixed record.
type MainHeader struct {
	// DiskEntries is the number of central directory records on this disk.
	DiskEntries uint16

	// TotalEntries is the number of central directory records overall.
	TotalEntries uint16

	// Size is the byte length of the central directory.
	Size uint32

	// Offset is the byte offset where the central directory starts.
	Offset uint32

	// CommentLength is the declared length of the archive comment.
	CommentLength uint16
}

// ParseMainHeader decodes the fixed end record at the start of data.
// data must hold at least EndHeaderSize bytes.
func ParseMainHeader(data []byte) (MainHeader, error) {
	if len(data) < EndHeaderSize {
		return MainHeader{}, fmt.Errorf("format: end record: %d bytes, need %d", len(data), EndHeaderSize)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != EndSignature {
		return MainHeader{}, fmt.Errorf("end record: %w", ErrSignature)
	}
	return MainHeader{
		DiskEntries:   binary.LittleEndian.Uint16(data[8:10]),
		TotalEntries:  binary.LittleEndian.Uint16(data[10:12]),
		Size:          binary.LittleEndian.Uint32(data[12:16]),
		Offset:        binary.LittleEndian.Uint32(data[16:20]),
		CommentLength: binary.LittleEndian.Uint16(data[20:22]),
	}, nil
}

// ToBinary encodes the end record followed by the archive comment.
// The encoded CommentLength field is taken from len(comment), not from
// the struct field.
func (h MainHeader) ToBinary(comment []byte) []byte {
	buf := make([]byte, EndHeaderSize+len(comment))

	binary.LittleEndian.PutUint32(buf[0:4], EndSignature)
	// disk number and central directory start disk stay zero; the
	// container is single-disk only.
	binary.LittleEndian.PutUint16(buf[8:10], h.DiskEntries)
	binary.LittleEndian.PutUint16(buf[10:12], h.TotalEntries)
	binary.LittleEndian.PutUint32(buf[12:16], h.Size)
	binary.LittleEndian.PutUint32(buf[16:20], h.Offset)
	binary.LittleEndian.PutUint16(buf[20:22], uint16(len(comment)))

	copy(buf[EndHeaderSize:], comment)
	return buf
}

// FindEnd scans buf backward for the end record signature, starting at
// len(buf)-EndHeaderSize and stopping after MaxCommentLength bytes (the
// longest legal archive comment). It matches on the leading 'P' byte
// before comparing the full signature. Returns -1 when no signature is
// found in the window.
func FindEnd(buf []byte) int {
	i := len(buf) - EndHeaderSize
	if i < 0 {
		return -1
	}
	stop := i - MaxCommentLength
	if stop < 0 {
		stop = 0
	}
	for ; i >= stop; i-- {
		if buf[i] != 0x50 {
			continue
		}
		if binary.LittleEndian.Uint32(buf[i:i+4]) == EndSignature {
			return i
		}
	}
	return -1
}
