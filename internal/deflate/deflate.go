// Package deflate is the compression capability entries use to
// materialize their payloads: raw DEFLATE streams as mandated by the
// ZIP format, without zlib or gzip framing.
package deflate

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Compress returns data as a raw DEFLATE stream.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("deflate: create writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("deflate: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a raw DEFLATE stream. size is the expected
// uncompressed length and is used only to presize the output.
func Decompress(data []byte, size int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("deflate: decompress: %w", err)
	}
	return buf.Bytes(), nil
}
