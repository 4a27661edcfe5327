// Package zipmem is an in-memory ZIP archive container engine.
//
// Given a byte buffer holding a complete ZIP file, it locates the
// end-of-central-directory record, parses the central directory into a
// mutable collection of entries, and re-serializes the collection into
// a fresh, self-consistent archive buffer, either synchronously or
// through a strictly sequential per-entry asynchronous pipeline.
//
// # Quick start
//
// Open an archive, drop a subtree, rebuild it:
//
//	a, err := zipmem.Open(buf)
//	if err != nil {
//	    return err
//	}
//	a.DeleteEntry("vendor/")
//	out, err := a.Buffer()
//
// Build an archive from scratch:
//
//	a := zipmem.New()
//	a.SetEntry(zipmem.NewEntry("hello.txt", []byte("hello")))
//	out, err := a.Buffer()
//
// The whole archive buffer is assumed to be resident in memory;
// streaming archives larger than memory is out of scope, as are
// filesystem I/O and encryption.
package zipmem
