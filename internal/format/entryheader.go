package format

import (
	"encoding/binary"
	"fmt"
)

// EntryHeader carries the per-entry fields shared between the central
// directory record and the local file header. The variable-length
// trailers (file name, extra field, comment) are not stored here; the
// length fields describe them and the container owns the bytes.
type EntryHeader struct {
	Made           uint16 // version made by
	Version        uint16 // version needed to extract
	Flags          uint16 // general purpose bit flag
	Method         uint16 // compression method
	Time           uint16 // modification time, MS-DOS format
	Date           uint16 // modification date, MS-DOS format
	CRC            uint32 // CRC-32 of the uncompressed data
	CompressedSize uint32
	Size           uint32 // uncompressed size
	FileNameLength uint16
	ExtraLength    uint16
	CommentLength  uint16
	DiskNumStart   uint16
	InAttr         uint16 // internal file attributes
	Attr           uint32 // external file attributes
	Offset         uint32 // local header offset within the data section
}

// EntryHeaderSize is the total length of this entry's central directory
// record: the fixed block plus name, extra field, and comment. The
// central directory parser advances by this amount per record.
func (h EntryHeader) EntryHeaderSize() int {
	return CentralHeaderSize + int(h.FileNameLength) + int(h.ExtraLength) + int(h.CommentLength)
}

// ParseCentralHeader decodes the fixed central directory block at the
// start of data. data must hold at least CentralHeaderSize bytes.
func ParseCentralHeader(data []byte) (EntryHeader, error) {
	if len(data) < CentralHeaderSize {
		return EntryHeader{}, fmt.Errorf("format: central record: %d bytes, need %d", len(data), CentralHeaderSize)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != CentralSignature {
		return EntryHeader{}, fmt.Errorf("central record: %w", ErrSignature)
	}
	return EntryHeader{
		Made:           binary.LittleEndian.Uint16(data[4:6]),
		Version:        binary.LittleEndian.Uint16(data[6:8]),
		Flags:          binary.LittleEndian.Uint16(data[8:10]),
		Method:         binary.LittleEndian.Uint16(data[10:12]),
		Time:           binary.LittleEndian.Uint16(data[12:14]),
		Date:           binary.LittleEndian.Uint16(data[14:16]),
		CRC:            binary.LittleEndian.Uint32(data[16:20]),
		CompressedSize: binary.LittleEndian.Uint32(data[20:24]),
		Size:           binary.LittleEndian.Uint32(data[24:28]),
		FileNameLength: binary.LittleEndian.Uint16(data[28:30]),
		ExtraLength:    binary.LittleEndian.Uint16(data[30:32]),
		CommentLength:  binary.LittleEndian.Uint16(data[32:34]),
		DiskNumStart:   binary.LittleEndian.Uint16(data[34:36]),
		InAttr:         binary.LittleEndian.Uint16(data[36:38]),
		Attr:           binary.LittleEndian.Uint32(data[38:42]),
		Offset:         binary.LittleEndian.Uint32(data[42:46]),
	}, nil
}

// CentralToBinary encodes the full central directory record: the fixed
// block followed by name, extra field, and comment. The length fields
// are encoded from the slice lengths, keeping record and trailers
// consistent regardless of the struct's stored counts.
func (h EntryHeader) CentralToBinary(name, extra, comment []byte) []byte {
	buf := make([]byte, CentralHeaderSize+len(name)+len(extra)+len(comment))

	binary.LittleEndian.PutUint32(buf[0:4], CentralSignature)
	binary.LittleEndian.PutUint16(buf[4:6], h.Made)
	binary.LittleEndian.PutUint16(buf[6:8], h.Version)
	binary.LittleEndian.PutUint16(buf[8:10], h.Flags)
	binary.LittleEndian.PutUint16(buf[10:12], h.Method)
	binary.LittleEndian.PutUint16(buf[12:14], h.Time)
	binary.LittleEndian.PutUint16(buf[14:16], h.Date)
	binary.LittleEndian.PutUint32(buf[16:20], h.CRC)
	binary.LittleEndian.PutUint32(buf[20:24], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.Size)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(name)))
	binary.LittleEndian.PutUint16(buf[30:32], uint16(len(extra)))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(len(comment)))
	binary.LittleEndian.PutUint16(buf[34:36], h.DiskNumStart)
	binary.LittleEndian.PutUint16(buf[36:38], h.InAttr)
	binary.LittleEndian.PutUint32(buf[38:42], h.Attr)
	binary.LittleEndian.PutUint32(buf[42:46], h.Offset)

	n := CentralHeaderSize
	n += copy(buf[n:], name)
	n += copy(buf[n:], extra)
	copy(buf[n:], comment)
	return buf
}

// LocalToBinary encodes the fixed local file header block. The caller
// appends the file name and extra field immediately after it.
func (h EntryHeader) LocalToBinary() []byte {
	buf := make([]byte, LocalHeaderSize)

	binary.LittleEndian.PutUint32(buf[0:4], LocalSignature)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint16(buf[8:10], h.Method)
	binary.LittleEndian.PutUint16(buf[10:12], h.Time)
	binary.LittleEndian.PutUint16(buf[12:14], h.Date)
	binary.LittleEndian.PutUint32(buf[14:18], h.CRC)
	binary.LittleEndian.PutUint32(buf[18:22], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[22:26], h.Size)
	binary.LittleEndian.PutUint16(buf[26:28], h.FileNameLength)
	binary.LittleEndian.PutUint16(buf[28:30], h.ExtraLength)
	return buf
}

// DataHeader is the decoded fixed local file header block. Its name and
// extra lengths may legally differ from the central record's, so the
// real data offset must be computed from these values.
type DataHeader struct {
	Version        uint16
	Flags          uint16
	Method         uint16
	Time           uint16
	Date           uint16
	CRC            uint32
	CompressedSize uint32
	Size           uint32
	FileNameLength uint16
	ExtraLength    uint16
}

// DataOffset is the offset of the compressed data relative to the start
// of the local header.
func (d DataHeader) DataOffset() int {
	return LocalHeaderSize + int(d.FileNameLength) + int(d.ExtraLength)
}

// ParseLocalHeader decodes the fixed local file header block at the
// start of data. data must hold at least LocalHeaderSize bytes.
func ParseLocalHeader(data []byte) (DataHeader, error) {
	if len(data) < LocalHeaderSize {
		return DataHeader{}, fmt.Errorf("format: local record: %d bytes, need %d", len(data), LocalHeaderSize)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != LocalSignature {
		return DataHeader{}, fmt.Errorf("local record: %w", ErrSignature)
	}
	return DataHeader{
		Version:        binary.LittleEndian.Uint16(data[4:6]),
		Flags:          binary.LittleEndian.Uint16(data[6:8]),
		Method:         binary.LittleEndian.Uint16(data[8:10]),
		Time:           binary.LittleEndian.Uint16(data[10:12]),
		Date:           binary.LittleEndian.Uint16(data[12:14]),
		CRC:            binary.LittleEndian.Uint32(data[14:18]),
		CompressedSize: binary.LittleEndian.Uint32(data[18:22]),
		Size:           binary.LittleEndian.Uint32(data[22:26]),
		FileNameLength: binary.LittleEndian.Uint16(data[26:28]),
		ExtraLength:    binary.LittleEndian.Uint16(data[28:30]),
	}, nil
}

// Descriptor is the optional data descriptor that trails an entry's
// data when the FlagDescriptor bit is set.
type Descriptor struct {
	CRC            uint32
	CompressedSize uint32
	Size           uint32
}

// ParseDescriptor decodes a data descriptor at the start of data.
func ParseDescriptor(data []byte) (Descriptor, error) {
	if len(data) < DescriptorSize {
		return Descriptor{}, fmt.Errorf("format: descriptor: %d bytes, need %d", len(data), DescriptorSize)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != DescriptorSignature {
		return Descriptor{}, fmt.Errorf("descriptor: %w", ErrSignature)
	}
	return Descriptor{
		CRC:            binary.LittleEndian.Uint32(data[4:8]),
		CompressedSize: binary.LittleEndian.Uint32(data[8:12]),
		Size:           binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}

// ToBinary encodes the data descriptor.
func (d Descriptor) ToBinary() []byte {
	buf := make([]byte, DescriptorSize)
	binary.LittleEndian.PutUint32(buf[0:4], DescriptorSignature)
	binary.LittleEndian.PutUint32(buf[4:8], d.CRC)
	binary.LittleEndian.PutUint32(buf[8:12], d.CompressedSize)
	binary.LittleEndian.PutUint32(buf[12:16], d.Size)
	return buf
}
