package zipmem

import "errors"

// Sentinel errors for container operations.
var (
	// ErrInvalidFormat is returned when no end-of-central-directory
	// signature exists within the legal comment-length window, or when
	// a central directory record carries a bad signature. Fatal; there
	// is no recovery or retry.
	ErrInvalidFormat = errors.New("zipmem: invalid or unsupported zip format")

	// ErrTruncated is returned when a declared length would read past
	// the end of the archive buffer.
	ErrTruncated = errors.New("zipmem: record extends past end of buffer")

	// ErrChecksum is returned when decompressed data does not match the
	// entry's CRC-32.
	ErrChecksum = errors.New("zipmem: crc-32 verification failed")

	// ErrMethod is returned when an entry uses a compression method the
	// capability does not implement.
	ErrMethod = errors.New("zipmem: unsupported compression method")
)
