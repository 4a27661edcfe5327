package zipmem

import (
	"bytes"
	"fmt"

	"github.com/meigma/zipmem/internal/format"
)

// parse locates the end record and decodes the central directory into
// the entry collection.
func (a *Archive) parse() error {
	endOffset := format.FindEnd(a.buf)
	if endOffset < 0 {
		return fmt.Errorf("end record not found: %w", ErrInvalidFormat)
	}

	mh, err := format.ParseMainHeader(a.buf[endOffset:])
	if err != nil {
		return fmt.Errorf("end record: %w", ErrInvalidFormat)
	}
	a.mainHeader = mh

	// The archive comment is whatever trails the fixed end record; the
	// declared CommentLength is not validated against it.
	if mh.CommentLength > 0 {
		a.comment = bytes.Clone(a.buf[endOffset+format.EndHeaderSize:])
	}

	if err := a.readEntries(); err != nil {
		return err
	}

	a.log().Debug("archive parsed",
		"entries", len(a.entryList),
		"directoryOffset", mh.Offset,
		"directorySize", mh.Size,
		"commentLength", mh.CommentLength)
	return nil
}

// readEntries decodes exactly DiskEntries consecutive central directory
// records starting at the end record's directory offset. Name, extra
// field, and comment slices alias the shared archive buffer.
func (a *Archive) readEntries() error {
	count := int(a.mainHeader.DiskEntries)
	a.entryList = make([]*Entry, 0, count)
	a.entryTable = make(map[string]*Entry, count)

	index := int(a.mainHeader.Offset)
	for i := 0; i < count; i++ {
		if index < 0 || index+format.CentralHeaderSize > len(a.buf) {
			return fmt.Errorf("central record %d at offset %d: %w", i, index, ErrTruncated)
		}
		h, err := format.ParseCentralHeader(a.buf[index:])
		if err != nil {
			return fmt.Errorf("central record %d: %w", i, ErrInvalidFormat)
		}
		if index+h.EntryHeaderSize() > len(a.buf) {
			return fmt.Errorf("central record %d trailer: %w", i, ErrTruncated)
		}

		pos := index + format.CentralHeaderSize
		rawName := a.buf[pos : pos+int(h.FileNameLength)]
		pos += int(h.FileNameLength)

		e := &Entry{
			header:  h,
			rawName: rawName,
			name:    string(rawName),
			buf:     a.buf,
			flight:  &a.readGroup,
		}
		if h.ExtraLength > 0 {
			e.extra = a.buf[pos : pos+int(h.ExtraLength)]
			pos += int(h.ExtraLength)
		}
		if h.CommentLength > 0 {
			e.comment = a.buf[pos : pos+int(h.CommentLength)]
		}

		a.entryList = append(a.entryList, e)
		a.entryTable[e.name] = e
		index += h.EntryHeaderSize()
	}
	return nil
}
