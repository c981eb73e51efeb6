package compress

import (
	"io"

	"github.com/klauspost/compress/s2"
)

// newS2Writer creates an S2 stream writer. The stream format is a superset of the
// Snappy framing format.
func newS2Writer(w io.Writer) io.WriteCloser {
	return s2.NewWriter(w, s2.WriterConcurrency(1))
}

// newS2Reader reads S2 and Snappy framed streams.
func newS2Reader(r io.Reader) io.Reader {
	return s2.NewReader(r)
}
