package zipmem

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/zipmem/internal/deflate"
	"github.com/meigma/zipmem/internal/format"
)

// Compression method codes implemented by the entry capability.
// Entries decoded from an archive may carry other method codes; their
// compressed payloads pass through untouched, but Data fails with
// ErrMethod.
const (
	MethodStored   = format.MethodStored
	MethodDeflated = format.MethodDeflated
)

// Entry is one archive member: a file or a directory marker.
//
// An entry decoded from an archive holds a read-only reference into the
// shared archive buffer of the container that produced it and
// materializes its payload lazily from there. The reference is only
// valid while that container is alive. An entry built in memory (or one
// whose payload was replaced with SetData) owns its payload directly.
type Entry struct {
	header  format.EntryHeader
	rawName []byte
	name    string
	extra   []byte
	comment []byte

	// buf is the shared archive buffer; nil for entries built in memory.
	buf []byte

	// data is the uncompressed payload when dirty is set.
	data  []byte
	dirty bool

	// flight dedupes concurrent decompression. Shared with the owning
	// container; nil for standalone entries.
	flight *singleflight.Group
}

// NewEntry creates an entry named name holding data. A name with a
// trailing path separator creates a directory marker; its data is
// ignored. File entries default to the deflate method.
func NewEntry(name string, data []byte) *Entry {
	e := &Entry{
		rawName: []byte(name),
		name:    name,
		dirty:   true,
	}
	date, tim := format.TimeToDos(time.Now())
	e.header = format.EntryHeader{
		Made:           20,
		Version:        20,
		Method:         MethodDeflated,
		Time:           tim,
		Date:           date,
		FileNameLength: uint16(len(e.rawName)),
	}
	if e.IsDirectory() {
		e.header.Method = MethodStored
		e.header.Attr = 0x10 // MS-DOS directory bit
		return e
	}
	e.data = bytes.Clone(data)
	return e
}

// Name returns the decoded entry name, the container's lookup key.
func (e *Entry) Name() string { return e.name }

// RawName returns the original undecoded name bytes.
func (e *Entry) RawName() []byte { return bytes.Clone(e.rawName) }

// IsDirectory reports whether the entry name ends with a path
// separator.
func (e *Entry) IsDirectory() bool {
	if len(e.rawName) == 0 {
		return false
	}
	c := e.rawName[len(e.rawName)-1]
	return c == '/' || c == '\\'
}

// Extra returns the raw extra field bytes. Extensible fields such as
// zip64 size overrides pass through opaquely.
func (e *Entry) Extra() []byte { return bytes.Clone(e.extra) }

// SetExtra replaces the raw extra field bytes.
func (e *Entry) SetExtra(extra []byte) {
	e.extra = bytes.Clone(extra)
	e.header.ExtraLength = uint16(len(e.extra))
}

// Comment returns the per-entry comment bytes.
func (e *Entry) Comment() []byte { return bytes.Clone(e.comment) }

// SetComment replaces the per-entry comment.
func (e *Entry) SetComment(comment []byte) {
	e.comment = bytes.Clone(comment)
	e.header.CommentLength = uint16(len(e.comment))
}

// Method returns the entry's compression method code.
func (e *Entry) Method() uint16 { return e.header.Method }

// SetMethod sets the compression method used when the payload is next
// compressed. Only MethodStored and MethodDeflated are implemented.
func (e *Entry) SetMethod(method uint16) { e.header.Method = method }

// Size returns the uncompressed payload size recorded in the header.
func (e *Entry) Size() int { return int(e.header.Size) }

// CompressedSize returns the compressed payload size recorded in the
// header.
func (e *Entry) CompressedSize() int { return int(e.header.CompressedSize) }

// CRC returns the CRC-32 recorded in the header.
func (e *Entry) CRC() uint32 { return e.header.CRC }

// ModTime returns the entry's modification time.
func (e *Entry) ModTime() time.Time {
	return format.DosToTime(e.header.Date, e.header.Time)
}

// SetModTime sets the entry's modification time, at the two-second
// resolution the format allows.
func (e *Entry) SetModTime(t time.Time) {
	e.header.Date, e.header.Time = format.TimeToDos(t)
}

// SetData replaces the entry's uncompressed payload. The shared archive
// buffer, if any, is no longer consulted for this entry.
func (e *Entry) SetData(data []byte) {
	e.data = bytes.Clone(data)
	e.dirty = true
}

// Data returns the uncompressed payload, inflating from the shared
// archive buffer on demand and verifying the CRC-32. Concurrent calls
// for the same entry inflate once.
func (e *Entry) Data() ([]byte, error) {
	if e.dirty || e.buf == nil {
		return bytes.Clone(e.data), nil
	}
	if e.flight == nil {
		return e.inflate()
	}
	// Key by identity, not name: a parsed archive may hold duplicate
	// names, and a name-keyed flight would hand one entry the other's
	// payload.
	v, err, _ := e.flight.Do(fmt.Sprintf("%p", e), func() (any, error) {
		return e.inflate()
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// CompressedData returns the entry's compressed payload as it will
// appear in a serialized archive. For in-memory payloads this
// compresses now and populates the header's CRC and size fields as a
// side effect; callers must not read those fields before calling this.
// For payloads still backed by the shared buffer the stored bytes are
// returned as-is, whatever their method.
func (e *Entry) CompressedData() ([]byte, error) {
	if e.dirty || e.buf == nil {
		return e.compressLocal()
	}
	return e.rawFromBuffer()
}

// CompressedDataAsync invokes CompressedData off the calling goroutine
// and delivers the result to cb exactly once.
func (e *Entry) CompressedDataAsync(cb func(data []byte, err error)) {
	go func() {
		cb(e.CompressedData())
	}()
}

func (e *Entry) compressLocal() ([]byte, error) {
	data := e.data
	e.header.Size = uint32(len(data))
	e.header.CRC = crc32.ChecksumIEEE(data)
	if len(data) == 0 {
		e.header.Method = MethodStored
		e.header.CompressedSize = 0
		return nil, nil
	}
	if e.header.Method == MethodDeflated {
		comp, err := deflate.Compress(data)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.name, err)
		}
		e.header.CompressedSize = uint32(len(comp))
		return comp, nil
	}
	e.header.CompressedSize = uint32(len(data))
	return bytes.Clone(data), nil
}

// rawFromBuffer slices the stored payload out of the shared archive
// buffer. The data position comes from the local header's own name and
// extra lengths, which may differ from the central record's.
func (e *Entry) rawFromBuffer() ([]byte, error) {
	off := int(e.header.Offset)
	if off+format.LocalHeaderSize > len(e.buf) {
		return nil, fmt.Errorf("entry %s: local header: %w", e.name, ErrTruncated)
	}
	dh, err := format.ParseLocalHeader(e.buf[off:])
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", e.name, ErrInvalidFormat)
	}
	start := off + dh.DataOffset()
	end := start + int(e.header.CompressedSize)
	if end > len(e.buf) {
		return nil, fmt.Errorf("entry %s: data: %w", e.name, ErrTruncated)
	}
	return bytes.Clone(e.buf[start:end]), nil
}

func (e *Entry) inflate() ([]byte, error) {
	raw, err := e.rawFromBuffer()
	if err != nil {
		return nil, err
	}

	var data []byte
	switch e.header.Method {
	case MethodStored:
		data = raw
	case MethodDeflated:
		data, err = deflate.Decompress(raw, int(e.header.Size))
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.name, err)
		}
	default:
		return nil, fmt.Errorf("entry %s: method %d: %w", e.name, e.header.Method, ErrMethod)
	}

	if crc32.ChecksumIEEE(data) != e.header.CRC {
		return nil, fmt.Errorf("entry %s: %w", e.name, ErrChecksum)
	}
	return data, nil
}

// displayName is the name reported to pipeline progress callbacks: the
// entry name with the extra field text appended.
func (e *Entry) displayName() string {
	return e.name + string(e.extra)
}
