package zipmem

import "slices"

// AsyncCallbacks drive the incremental serialization pipeline.
// Exactly one of Success or Fail is invoked when the pipeline ends.
type AsyncCallbacks struct {
	// Success receives the completed archive buffer.
	Success func(buf []byte)

	// Fail receives the error that stopped the pipeline.
	Fail func(err error)

	// ItemStart is invoked immediately before an entry's compression
	// starts, with the entry's display name (entry name plus extra
	// field text).
	ItemStart func(name string)

	// ItemEnd is invoked immediately after an entry's compression
	// completes, with the entry's display name.
	ItemEnd func(name string)
}

// BufferAsync serializes the collection incrementally, one entry at a
// time: each entry's compression is requested asynchronously and the
// next entry starts only after the previous one's completion fires.
// There is no fan-out and no cancellation; a compression capability
// that never completes stalls the chain indefinitely.
//
// Entries are sorted in place by case-insensitive name in descending
// order and processed in that order, so the output entry ordering is
// the reverse of Buffer's. The byte layout is otherwise identical.
//
// The entry list and table must not be mutated until Success or Fail
// has fired.
func (a *Archive) BufferAsync(cb AsyncCallbacks) {
	if len(a.entryList) > 1 {
		slices.SortFunc(a.entryList, func(x, y *Entry) int {
			return compareEntryNames(y, x)
		})
	}
	working := slices.Clone(a.entryList)
	go a.serializeChain(working, cb)
}

// serializeChain is the sequential task chain behind BufferAsync: wait
// for one entry's compression, append its blocks, move to the next.
func (a *Archive) serializeChain(working []*Entry, cb AsyncCallbacks) {
	type result struct {
		data []byte
		err  error
	}

	s := newSerializer(a)
	for _, e := range working {
		if cb.ItemStart != nil {
			cb.ItemStart(e.displayName())
		}

		done := make(chan result, 1)
		e.CompressedDataAsync(func(data []byte, err error) {
			done <- result{data: data, err: err}
		})
		res := <-done
		if res.err != nil {
			a.log().Debug("incremental serialization failed", "entry", e.name, "error", res.err)
			if cb.Fail != nil {
				cb.Fail(res.err)
			}
			return
		}

		s.add(e, res.data)
		if cb.ItemEnd != nil {
			cb.ItemEnd(e.displayName())
		}
	}

	out := s.finalize()
	a.log().Debug("archive serialized", "entries", len(working), "size", len(out), "incremental", true)
	if cb.Success != nil {
		cb.Success(out)
	}
}
