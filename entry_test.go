package zipmem

import (
	"bytes"
	"hash/crc32"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/zipmem/internal/deflate"
	"github.com/meigma/zipmem/internal/format"
)

func TestNewEntry(t *testing.T) {
	t.Parallel()

	t.Run("file defaults to deflate", func(t *testing.T) {
		t.Parallel()
		e := NewEntry("notes.txt", []byte("content"))
		assert.Equal(t, "notes.txt", e.Name())
		assert.Equal(t, MethodDeflated, e.Method())
		assert.False(t, e.IsDirectory())

		data, err := e.Data()
		require.NoError(t, err)
		assert.Equal(t, []byte("content"), data)
	})

	t.Run("trailing slash makes a directory", func(t *testing.T) {
		t.Parallel()
		e := NewEntry("assets/", nil)
		assert.True(t, e.IsDirectory())
		assert.Equal(t, MethodStored, e.Method())
	})

	t.Run("trailing backslash makes a directory", func(t *testing.T) {
		t.Parallel()
		assert.True(t, NewEntry(`assets\`, nil).IsDirectory())
	})
}

func TestEntryData(t *testing.T) {
	t.Parallel()

	t.Run("stored entry", func(t *testing.T) {
		t.Parallel()
		a := mustOpen(t, buildTestArchive(t, []testFile{
			{name: "s.txt", data: []byte("stored bytes")},
		}, nil))

		data, err := a.GetEntry("s.txt").Data()
		require.NoError(t, err)
		assert.Equal(t, []byte("stored bytes"), data)
	})

	t.Run("deflated entry", func(t *testing.T) {
		t.Parallel()
		raw := bytes.Repeat([]byte("deflate me "), 100)
		comp, err := deflate.Compress(raw)
		require.NoError(t, err)

		a := mustOpen(t, buildTestArchive(t, []testFile{
			{name: "d.txt", data: comp, method: MethodDeflated, mutate: func(h *format.EntryHeader) {
				h.CRC = crc32.ChecksumIEEE(raw)
				h.Size = uint32(len(raw))
			}},
		}, nil))

		data, err := a.GetEntry("d.txt").Data()
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("crc mismatch", func(t *testing.T) {
		t.Parallel()
		a := mustOpen(t, buildTestArchive(t, []testFile{
			{name: "bad.txt", data: []byte("payload"), mutate: func(h *format.EntryHeader) {
				h.CRC++
			}},
		}, nil))

		_, err := a.GetEntry("bad.txt").Data()
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("unsupported method", func(t *testing.T) {
		t.Parallel()
		a := mustOpen(t, buildTestArchive(t, []testFile{
			{name: "legacy.bin", data: []byte("whatever"), method: format.MethodBzip2},
		}, nil))

		_, err := a.GetEntry("legacy.bin").Data()
		assert.ErrorIs(t, err, ErrMethod)
	})

	t.Run("compressed size past buffer end", func(t *testing.T) {
		t.Parallel()
		a := mustOpen(t, buildTestArchive(t, []testFile{
			{name: "cut.bin", data: []byte("tiny"), mutate: func(h *format.EntryHeader) {
				h.CompressedSize = 100000
			}},
		}, nil))

		_, err := a.GetEntry("cut.bin").Data()
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("concurrent reads inflate once each", func(t *testing.T) {
		t.Parallel()
		a := mustOpen(t, buildTestArchive(t, []testFile{
			{name: "shared.txt", data: []byte("same bytes for everyone")},
		}, nil))
		e := a.GetEntry("shared.txt")

		var g errgroup.Group
		for n := 0; n < 8; n++ {
			g.Go(func() error {
				data, err := e.Data()
				if err != nil {
					return err
				}
				assert.Equal(t, []byte("same bytes for everyone"), data)
				return nil
			})
		}
		require.NoError(t, g.Wait())
	})

	t.Run("duplicate names inflate independently", func(t *testing.T) {
		t.Parallel()
		a := mustOpen(t, buildTestArchive(t, []testFile{
			{name: "dup.txt", data: []byte("payload of the first record")},
			{name: "dup.txt", data: []byte("payload of the second record")},
		}, nil))

		entries := a.Entries()
		require.Len(t, entries, 2)
		want := [][]byte{
			[]byte("payload of the first record"),
			[]byte("payload of the second record"),
		}

		// Concurrent reads of same-named entries must not share a
		// deduped result across entries.
		var g errgroup.Group
		for n := 0; n < 50; n++ {
			for i := range entries {
				e, exp := entries[i], want[i]
				g.Go(func() error {
					data, err := e.Data()
					if err != nil {
						return err
					}
					assert.Equal(t, exp, data)
					return nil
				})
			}
		}
		require.NoError(t, g.Wait())
	})
}

func TestEntrySetData(t *testing.T) {
	t.Parallel()

	a := mustOpen(t, buildTestArchive(t, []testFile{
		{name: "f.txt", data: []byte("original")},
	}, nil))

	e := a.GetEntry("f.txt")
	e.SetData([]byte("replaced"))

	data, err := e.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), data)
}

func TestEntryCompressedData(t *testing.T) {
	t.Parallel()

	t.Run("populates header fields", func(t *testing.T) {
		t.Parallel()
		raw := bytes.Repeat([]byte("compressible "), 200)
		e := NewEntry("big.txt", raw)

		comp, err := e.CompressedData()
		require.NoError(t, err)
		assert.Equal(t, len(raw), e.Size())
		assert.Equal(t, len(comp), e.CompressedSize())
		assert.Equal(t, crc32.ChecksumIEEE(raw), e.CRC())

		back, err := deflate.Decompress(comp, len(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, back)
	})

	t.Run("stored method keeps bytes", func(t *testing.T) {
		t.Parallel()
		e := NewEntry("plain.txt", []byte("as-is"))
		e.SetMethod(MethodStored)

		comp, err := e.CompressedData()
		require.NoError(t, err)
		assert.Equal(t, []byte("as-is"), comp)
		assert.Equal(t, 5, e.CompressedSize())
	})

	t.Run("empty payload falls back to stored", func(t *testing.T) {
		t.Parallel()
		e := NewEntry("empty.txt", nil)

		comp, err := e.CompressedData()
		require.NoError(t, err)
		assert.Empty(t, comp)
		assert.Equal(t, MethodStored, e.Method())
		assert.Equal(t, 0, e.Size())
	})

	t.Run("parsed entry returns stored bytes unchanged", func(t *testing.T) {
		t.Parallel()
		a := mustOpen(t, buildTestArchive(t, []testFile{
			{name: "raw.bin", data: []byte{1, 2, 3, 4}},
		}, nil))

		comp, err := a.GetEntry("raw.bin").CompressedData()
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3, 4}, comp)
	})
}

func TestEntryCompressedDataAsync(t *testing.T) {
	t.Parallel()

	type result struct {
		data []byte
		err  error
	}

	e := NewEntry("async.txt", []byte("deliver me"))
	done := make(chan result, 1)
	e.CompressedDataAsync(func(data []byte, err error) {
		done <- result{data: data, err: err}
	})

	res := <-done
	require.NoError(t, res.err)

	back, err := deflate.Decompress(res.data, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("deliver me"), back)
}

func TestEntryModTime(t *testing.T) {
	t.Parallel()

	e := NewEntry("t.txt", nil)
	want := time.Date(2023, time.March, 14, 15, 9, 26, 0, time.Local)
	e.SetModTime(want)
	assert.Equal(t, want, e.ModTime())
}

func TestEntryExtraAndComment(t *testing.T) {
	t.Parallel()

	e := NewEntry("meta.txt", []byte("m"))
	e.SetExtra([]byte{0x0A, 0x00, 0x02, 0x00, 0xFF, 0xFE})
	e.SetComment([]byte("remark"))

	assert.Equal(t, []byte{0x0A, 0x00, 0x02, 0x00, 0xFF, 0xFE}, e.Extra())
	assert.Equal(t, []byte("remark"), e.Comment())
}
