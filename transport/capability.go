package transport

import "github.com/arloliu/xport/dataset"

// ObservationReader yields the rows of one member in file order.
//
// Reader streams them from a transport file; DatasetReader walks a Dataset held in
// memory. Code written against ObservationReader works with either.
type ObservationReader interface {
	Columns() []dataset.Column
	Next() bool
	Row() dataset.Row
	Err() error
}

// ObservationWriter accepts the rows of one member.
//
// Writer streams them to the destination as they arrive; DatasetWriter collects them
// and writes the whole member on Finish.
type ObservationWriter interface {
	WriteHeader() error
	WriteRow(row dataset.Row) error
	Finish() error
}

// Copy writes every row of src to dst and finishes dst.
//
// Returns:
//   - int64: Number of rows copied
//   - error: The first read or write error
func Copy(dst ObservationWriter, src ObservationReader) (int64, error) {
	if err := dst.WriteHeader(); err != nil {
		return 0, err
	}

	var n int64
	for src.Next() {
		if err := dst.WriteRow(src.Row()); err != nil {
			return n, err
		}
		n++
	}
	if err := src.Err(); err != nil {
		return n, err
	}

	return n, dst.Finish()
}
