//go:build !gozstd

package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// newZstdWriter creates a zstd frame writer backed by klauspost/compress.
func newZstdWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
}

// newZstdReader creates a streaming zstd decoder. The returned func releases it.
func newZstdReader(r io.Reader) (io.Reader, func(), error) {
	dec, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		return nil, nil, err
	}

	return dec, dec.Close, nil
}
