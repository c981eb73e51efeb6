package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

// frame magic numbers used for sniffing
var (
	zstdMagic   = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic    = []byte{0x04, 0x22, 0x4D, 0x18}
	s2Magic     = []byte("\xff\x06\x00\x00S2sTwO")
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// sniffSize is the longest magic prefix.
const sniffSize = 10

// Detect returns the compression type of a stream from its first bytes.
// Anything that is not a known frame, including a plain transport file, is
// CompressionNone.
func Detect(head []byte) format.CompressionType {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return format.CompressionZstd
	case bytes.HasPrefix(head, lz4Magic):
		return format.CompressionLZ4
	case bytes.HasPrefix(head, s2Magic), bytes.HasPrefix(head, snappyMagic):
		return format.CompressionS2
	default:
		return format.CompressionNone
	}
}

// Stats reports the sizes seen by a Writer.
type Stats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the number of bytes written to the Writer
	OriginalSize int64

	// CompressedSize is the number of bytes the Writer emitted
	CompressedSize int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s Stats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s Stats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}

// Writer compresses everything written to it into an underlying writer.
//
// Close flushes the final frame but does not close the underlying writer.
type Writer struct {
	algorithm format.CompressionType
	dst       *countingWriter
	enc       io.WriteCloser
	written   int64
}

var _ io.WriteCloser = (*Writer)(nil)

// NewWriter creates a Writer for the given compression type.
//
// Returns:
//   - *Writer: Compressing writer
//   - error: ErrUnsupportedCompression for unknown types
func NewWriter(w io.Writer, algorithm format.CompressionType) (*Writer, error) {
	dst := &countingWriter{w: w}

	var (
		enc io.WriteCloser
		err error
	)
	switch algorithm {
	case format.CompressionNone:
		enc = newNoOpWriter(dst)
	case format.CompressionZstd:
		enc, err = newZstdWriter(dst)
	case format.CompressionS2:
		enc = newS2Writer(dst)
	case format.CompressionLZ4:
		enc = newLZ4Writer(dst)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s writer: %w", algorithm, err)
	}

	return &Writer{algorithm: algorithm, dst: dst, enc: enc}, nil
}

// Write compresses p.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.enc.Write(p)
	w.written += int64(n)

	return n, err
}

// Close flushes buffered data and ends the compressed stream.
func (w *Writer) Close() error {
	return w.enc.Close()
}

// Algorithm returns the compression type of the writer.
func (w *Writer) Algorithm() format.CompressionType {
	return w.algorithm
}

// Stats returns the sizes seen so far. The compressed size is final after Close.
func (w *Writer) Stats() Stats {
	return Stats{
		Algorithm:      w.algorithm,
		OriginalSize:   w.written,
		CompressedSize: w.dst.n,
	}
}

// Reader decompresses a stream whose compression type is detected from its magic
// bytes. Plain input is passed through unchanged.
//
// Close releases decoder resources but does not close the underlying reader.
type Reader struct {
	algorithm format.CompressionType
	dec       io.Reader
	release   func()
}

var _ io.ReadCloser = (*Reader)(nil)

// NewReader sniffs the first bytes of r and wraps it in the matching decoder.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("sniff compression: %w", err)
	}

	algorithm := Detect(head)
	rd := &Reader{algorithm: algorithm, release: func() {}}

	switch algorithm {
	case format.CompressionZstd:
		rd.dec, rd.release, err = newZstdReader(br)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
	case format.CompressionS2:
		rd.dec = newS2Reader(br)
	case format.CompressionLZ4:
		rd.dec = newLZ4Reader(br)
	default:
		rd.dec = br
	}

	return rd, nil
}

// Read reads decompressed bytes.
func (r *Reader) Read(p []byte) (int, error) {
	return r.dec.Read(p)
}

// Algorithm returns the detected compression type.
func (r *Reader) Algorithm() format.CompressionType {
	return r.algorithm
}

// Close releases the decoder.
func (r *Reader) Close() error {
	r.release()
	r.release = func() {}

	return nil
}
