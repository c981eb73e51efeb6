package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// newLZ4Writer creates an LZ4 frame writer.
func newLZ4Writer(w io.Writer) io.WriteCloser {
	return lz4.NewWriter(w)
}

// newLZ4Reader reads LZ4 frames.
func newLZ4Reader(r io.Reader) io.Reader {
	return lz4.NewReader(r)
}
