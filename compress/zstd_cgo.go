//go:build gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

const gozstdLevel = 3

type gozstdWriter struct {
	*gozstd.Writer
}

// Close ends the frame and releases the cgo encoder.
func (w gozstdWriter) Close() error {
	err := w.Writer.Close()
	w.Release()

	return err
}

// newZstdWriter creates a zstd frame writer backed by the reference C library.
func newZstdWriter(w io.Writer) (io.WriteCloser, error) {
	return gozstdWriter{gozstd.NewWriterLevel(w, gozstdLevel)}, nil
}

// newZstdReader creates a streaming zstd decoder. The returned func releases it.
func newZstdReader(r io.Reader) (io.Reader, func(), error) {
	dec := gozstd.NewReader(r)

	return dec, dec.Release, nil
}
