package zipmem

import (
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Buffer serializes the collection into a complete, readable ZIP
// archive: local headers and data in entry order, then the central
// directory, then the end record with the archive comment.
//
// With more than one entry the list is first sorted in place by
// case-insensitive name, ascending. Each entry's compressed payload is
// obtained before its headers are encoded, since compression populates
// the CRC and size fields. The shared input buffer is never mutated;
// only a fresh output buffer is produced.
func (a *Archive) Buffer() ([]byte, error) {
	if len(a.entryList) > 1 {
		slices.SortFunc(a.entryList, compareEntryNames)
	}

	s := newSerializer(a)
	for _, e := range a.entryList {
		comp, err := e.CompressedData()
		if err != nil {
			return nil, err
		}
		s.add(e, comp)
	}

	out := s.finalize()
	a.log().Debug("archive serialized", "entries", len(a.entryList), "size", len(out))
	return out, nil
}

// Digest serializes the archive and returns the canonical digest of the
// resulting buffer, suitable for content addressing.
func (a *Archive) Digest() (digest.Digest, error) {
	buf, err := a.Buffer()
	if err != nil {
		return "", err
	}
	return digest.FromBytes(buf), nil
}

// compareEntryNames orders entries by case-insensitive name, ascending.
func compareEntryNames(a, b *Entry) int {
	return strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name))
}

// serializer accumulates per-entry blocks and builds the final archive
// buffer in one allocation. Shared by the synchronous and asynchronous
// paths so both produce the identical byte layout.
type serializer struct {
	a       *Archive
	data    [][]byte // [local header][name+extra][compressed data] per entry
	central [][]byte // one packed central record per entry
	dindex  int      // running offset within the data section
}

// newSerializer resets the end record's directory size and offset; they
// are recomputed while entries are added.
func newSerializer(a *Archive) serializer {
	a.mainHeader.Size = 0
	a.mainHeader.Offset = 0
	return serializer{a: a}
}

// add appends one entry's blocks. The entry's compressed payload must
// already have been materialized so its header fields are final.
func (s *serializer) add(e *Entry, comp []byte) {
	e.header.Offset = uint32(s.dindex)

	local := e.header.LocalToBinary()
	post := make([]byte, 0, len(e.rawName)+len(e.extra))
	post = append(post, e.rawName...)
	post = append(post, e.extra...)

	s.data = append(s.data, local, post, comp)
	s.dindex += len(local) + len(post) + len(comp)

	cen := e.header.CentralToBinary(e.rawName, e.extra, e.comment)
	s.central = append(s.central, cen)
	s.a.mainHeader.Size += uint32(len(cen))
}

// finalize writes data blocks, central records, and the end record into
// a single output buffer.
func (s *serializer) finalize() []byte {
	a := s.a
	a.syncCounts()
	a.mainHeader.Offset = uint32(s.dindex)

	end := a.mainHeader.ToBinary(a.comment)
	out := make([]byte, s.dindex+int(a.mainHeader.Size)+len(end))

	n := 0
	for _, b := range s.data {
		n += copy(out[n:], b)
	}
	for _, b := range s.central {
		n += copy(out[n:], b)
	}
	copy(out[n:], end)
	return out
}
