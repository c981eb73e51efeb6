// Package xport reads, writes and validates SAS transport (XPT) files, the format
// regulators use for clinical trial data submissions.
//
// Versions 5 and 8 of the format are supported. A file holds one or more members
// (datasets); each member is a list of fixed-width columns and a sequence of
// fixed-length observations stored in 80-byte records. Numbers are IBM System/360
// floating point, with 28 distinct missing values.
//
// # Basic Usage
//
// Building and writing a dataset:
//
//	ds := dataset.New("DM",
//		dataset.CharacterColumn("USUBJID", "Unique Subject Identifier", 20),
//		dataset.NumericColumn("AGE", "Age"),
//	)
//	_ = ds.AddRow(dataset.Character("STUDY1-001"), dataset.Numeric(34))
//
//	if err := xport.Write("dm.xpt", ds, format.V5); err != nil {
//		log.Fatal(err)
//	}
//
// Reading it back, all at once or one row at a time:
//
//	ds, err := xport.Read("dm.xpt")
//
//	f, err := xport.ReadStreaming("dm.xpt")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer func() { _ = f.Close() }()
//	for row, err := range f.All() {
//		// ...
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the transport package,
// which works with io.Reader and io.Writer and exposes the streaming and batch
// implementations directly.
package xport

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/transport"
	"github.com/arloliu/xport/validate"
)

// Read reads the first member of the transport file at path.
//
// Returns:
//   - *dataset.Dataset: The member with all of its rows
//   - error: ErrFileNotFound, or a parse error from the transport package
func Read(path string, opts ...transport.ReaderOption) (*dataset.Dataset, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return transport.ReadDataset(f, opts...)
}

// ReadMembers reads every member of the transport file at path.
func ReadMembers(path string, opts ...transport.ReaderOption) ([]*dataset.Dataset, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return transport.ReadMembers(f, opts...)
}

// StreamingFile is an open transport file read one row at a time.
// It must be closed.
type StreamingFile struct {
	*transport.Reader
	f *os.File
}

// ReadStreaming opens the transport file at path for streaming.
//
// The returned file is positioned before the first row of the first member. Closing
// it releases the file handle and stops any iteration in progress.
//
// Returns:
//   - *StreamingFile: Open file; the caller must Close it
//   - error: ErrFileNotFound, or a parse error from the transport package
func ReadStreaming(path string, opts ...transport.ReaderOption) (*StreamingFile, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}

	rd, err := transport.NewReader(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &StreamingFile{Reader: rd, f: f}, nil
}

// Close releases the reader and closes the file. A row loop still running sees
// Next return false and Err report ErrReaderClosed. Closing twice is a no-op.
func (s *StreamingFile) Close() error {
	if s.f == nil {
		return nil
	}
	err := errors.Join(s.Reader.Close(), s.f.Close())
	s.f = nil

	return err
}

// Write writes ds to path as a single-member transport file.
//
// The dataset is validated first; on a validation error no file is created. The file
// is written next to path and renamed into place only once it is complete.
//
// Returns:
//   - error: *errs.ValidationError (matching ErrValidationFailed), or an I/O error
func Write(path string, ds *dataset.Dataset, v format.Version, opts ...transport.WriterOption) error {
	return atomicWrite(path, func(w io.Writer) error {
		return transport.WriteDataset(w, ds, v, opts...)
	})
}

// WriteLibrary writes several datasets to path as members of one transport file.
func WriteLibrary(path string, datasets []*dataset.Dataset, v format.Version, opts ...transport.WriterOption) error {
	return atomicWrite(path, func(w io.Writer) error {
		return transport.WriteLibrary(w, datasets, v, opts...)
	})
}

// WriteStreaming writes the rows produced by rows to path without holding them in
// memory.
//
// The member metadata is validated before anything is written. Each row is checked
// as it arrives; the first rejected row stops the write and no file is created.
//
// Parameters:
//   - path: Destination file
//   - member: Dataset name, label and columns; character columns need a Length
//   - v: Transport version
//   - rows: Row source, consumed once in order
//   - opts: Writer options
//
// Returns:
//   - int64: Number of rows written
//   - error: Validation, encoding or I/O errors
func WriteStreaming(path string, member dataset.Member, v format.Version, rows iter.Seq[dataset.Row], opts ...transport.WriterOption) (int64, error) {
	var n int64
	err := atomicWrite(path, func(w io.Writer) error {
		sw, err := transport.NewWriter(w, v, member, opts...)
		if err != nil {
			return err
		}
		if err := sw.WriteHeader(); err != nil {
			return err
		}
		for row := range rows {
			if err := sw.WriteRow(row); err != nil {
				return err
			}
		}
		if err := sw.Finish(); err != nil {
			return err
		}
		n = sw.Rows()

		return nil
	})
	if err != nil {
		return 0, err
	}

	return n, nil
}

// Validate checks ds against the rules of the given version and mode without
// writing anything.
func Validate(ds *dataset.Dataset, v format.Version, mode validate.Mode) validate.Result {
	return validate.Validate(ds, v, mode)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, path)
		}

		return nil, err
	}

	return f, nil
}

// atomicWrite runs write against a temporary file in the directory of path and
// renames it to path when write succeeds. The temporary file is seekable, so
// streamed V8 members get their observation count.
func atomicWrite(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
