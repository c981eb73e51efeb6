// Package compress wraps transport files in a compressed stream for archival.
//
// A transport file is a plain byte stream, so compression is applied to the whole
// file rather than to individual records:
//   - None: No compression; the stream is passed through
//   - Zstd: Best compression ratio, the usual choice for archives
//   - S2: Fast compression, reads Snappy framed streams as well
//   - LZ4: Fastest decompression
//
// NewWriter wraps a destination writer. NewReader sniffs the first bytes of a source
// and picks the decoder, so a reader can open plain and compressed files alike:
//
//	zw, _ := compress.NewWriter(f, format.CompressionZstd)
//	// write the transport file to zw
//	_ = zw.Close()
//
//	zr, _ := compress.NewReader(f)
//	defer zr.Close()
//	// read the transport file from zr
//
// Zstandard uses klauspost/compress by default. Building with the gozstd tag switches
// to valyala/gozstd, which wraps the reference C library and requires cgo.
//
// Compressed files are not valid FDA submissions; the validator reports
// FDA_COMPRESSION for them.
package compress
