// Package transport reads and writes SAS transport files.
//
// # Streaming
//
// Reader and Writer process one observation at a time with a single record buffer,
// so memory use is bounded by the column count, not by the number of rows:
//
//	w, err := transport.NewWriter(f, format.V5, member)
//	if err != nil {
//		return err
//	}
//	if err := w.WriteHeader(); err != nil {
//		return err
//	}
//	for _, row := range rows {
//		if err := w.WriteRow(row); err != nil {
//			return err
//		}
//	}
//	return w.Finish()
//
// # Batch
//
// WriteDataset, WriteLibrary, ReadDataset and ReadMembers work on whole datasets held
// in memory. The batch writer validates every row before it writes the first byte.
//
// # Capabilities
//
// Readers implement ObservationReader and writers implement ObservationWriter, so
// streaming and batch implementations can be swapped; Copy moves rows between any
// pair of them.
//
// # Padding
//
// The data section is padded with blanks to a multiple of 80 bytes. A V5 reader
// cannot always tell those blanks from all-blank observations: trailing all-blank
// rows that fit in the final 80-byte block are treated as padding. V8 files that
// carry an observation count are read exactly.
//
// # Compression
//
// WithCompression wraps the output in a zstd, S2 or LZ4 stream. NewReader detects
// compressed input from its magic bytes and decompresses it transparently.
package transport
