package zipmem

import (
	"bytes"
	"io"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/zipmem/internal/format"
)

// Archive is the mutable container over a ZIP byte buffer.
//
// It owns the ordered entry list, a name-keyed lookup table, and the
// end record. List order is insertion order until a serialize operation
// imposes a sort order. The list and table must only be mutated by a
// single logical owner; mutating them while a serialize operation is in
// progress is not supported.
type Archive struct {
	entryList  []*Entry
	entryTable map[string]*Entry
	mainHeader format.MainHeader
	comment    []byte

	// buf is the shared archive buffer entries lazily read from.
	// Read-only after Open; nil for archives built in memory.
	buf []byte

	logger    *slog.Logger
	readGroup singleflight.Group
}

// New creates an empty archive.
func New(opts ...Option) *Archive {
	a := &Archive{entryTable: make(map[string]*Entry)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open parses buf as a complete ZIP file: it locates the end record,
// then decodes the central directory into the entry collection. buf is
// retained and must not be modified while the archive or any of its
// entries is in use.
//
// Open returns ErrInvalidFormat when no end record signature exists
// within the legal comment-length window, and ErrTruncated when a
// central directory record declares lengths past the end of buf.
func Open(buf []byte, opts ...Option) (*Archive, error) {
	a := New(opts...)
	a.buf = buf
	if err := a.parse(); err != nil {
		return nil, err
	}
	return a, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.logger
}

// Len returns the number of entries.
func (a *Archive) Len() int { return len(a.entryList) }

// Entries returns the entries in current list order. The slice is a
// copy; the entries are not.
func (a *Archive) Entries() []*Entry {
	return slices.Clone(a.entryList)
}

// Comment returns the archive-level comment.
func (a *Archive) Comment() []byte { return bytes.Clone(a.comment) }

// SetComment replaces the archive-level comment.
func (a *Archive) SetComment(comment []byte) {
	a.comment = bytes.Clone(comment)
	a.mainHeader.CommentLength = uint16(len(a.comment))
}

// GetEntry returns the entry with the exact name, or nil when absent.
func (a *Archive) GetEntry(name string) *Entry {
	return a.entryTable[name]
}

// SetEntry adds e to the collection. When an entry with the same name
// already exists it is replaced at its list position, keeping list and
// table membership consistent.
func (a *Archive) SetEntry(e *Entry) {
	if old, ok := a.entryTable[e.name]; ok {
		if i := slices.Index(a.entryList, old); i >= 0 {
			a.entryList[i] = e
		}
	} else {
		a.entryList = append(a.entryList, e)
	}
	a.entryTable[e.name] = e
	a.syncCounts()
}

// DeleteEntry removes the named entry. Deleting a directory first
// removes every entry whose name has the directory's name as a literal
// string prefix. This is a prefix match, not a path-segment match:
// deleting a directory named "foo" (no separator) also removes
// "foodir2/x".
func (a *Archive) DeleteEntry(name string) {
	e, ok := a.entryTable[name]
	if !ok {
		return
	}
	if e.IsDirectory() {
		for _, child := range a.EntryChildren(e) {
			if child == e {
				continue
			}
			a.DeleteEntry(child.name)
		}
	}
	if i := slices.Index(a.entryList, e); i >= 0 {
		a.entryList = slices.Delete(a.entryList, i, i+1)
	}
	delete(a.entryTable, name)
	a.syncCounts()
}

// EntryChildren returns every entry, e itself included, whose name has
// e's name as a string prefix, in current list order. For a
// non-directory entry it returns nil.
func (a *Archive) EntryChildren(e *Entry) []*Entry {
	if e == nil || !e.IsDirectory() {
		return nil
	}
	var children []*Entry
	for _, le := range a.entryList {
		if strings.HasPrefix(le.name, e.name) {
			children = append(children, le)
		}
	}
	return children
}

// syncCounts keeps the end record's entry counts equal to the list
// length. The container is single-disk, so both counts track together.
func (a *Archive) syncCounts() {
	n := uint16(len(a.entryList))
	a.mainHeader.DiskEntries = n
	a.mainHeader.TotalEntries = n
}
