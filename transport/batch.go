package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/section"
	"github.com/arloliu/xport/validate"
)

// WriteDataset writes a dataset as a single-member transport file.
//
// The whole dataset, rows included, is validated before anything is written: on a
// validation error w receives zero bytes. Character columns of Length 0 are sized
// from their longest value.
//
// Returns:
//   - error: *errs.ValidationError (matching ErrValidationFailed), or a write error
func WriteDataset(w io.Writer, ds *dataset.Dataset, v format.Version, opts ...WriterOption) error {
	return WriteLibrary(w, []*dataset.Dataset{ds}, v, opts...)
}

// WriteLibrary writes several datasets as members of one transport file, in order.
//
// Every member is validated before anything is written.
func WriteLibrary(w io.Writer, datasets []*dataset.Dataset, v format.Version, opts ...WriterOption) error {
	cfg, err := newWriterConfig(opts...)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		return fmt.Errorf("%w: library has no members", errs.ErrValidationFailed)
	}
	if !v.IsValid() {
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedVersion, v)
	}

	enc := encoding.NewTextEncoder(cfg.charset)
	target := cfg.target(v)
	target.RequireLengths = false
	target.Members = len(datasets)

	if !cfg.skipValidation {
		var result validate.Result
		for _, ds := range datasets {
			result.Merge(validate.Check(ds, target, cfg.mode))
		}
		logFindings(cfg.logger, result)
		if err := result.Err(); err != nil {
			return err
		}
	}

	var first *Writer
	for i, ds := range datasets {
		member := ds.Member
		member.Columns = section.ResolveColumns(ds.Columns, ds.Rows, v, enc)

		memberCfg := *cfg
		memberCfg.count = int64(len(ds.Rows))
		memberCfg.prevalidated = true

		mw, err := newWriter(w, v, member, &memberCfg)
		if err != nil {
			return err
		}
		mw.owned = false
		if i == 0 {
			first = mw
		} else {
			mw.library = false
			mw.out = first.out
			mw.zw = first.zw
		}

		if err := mw.WriteHeader(); err != nil {
			return err
		}
		if err := mw.WriteRows(ds.Rows); err != nil {
			return err
		}
		if err := mw.Finish(); err != nil {
			return err
		}
	}

	if first.zw != nil {
		if err := first.zw.Close(); err != nil {
			return fmt.Errorf("close %s stream: %w", cfg.compression, err)
		}
	}
	if cfg.stats != nil {
		*cfg.stats = first.Stats()
	}

	return nil
}

// DatasetWriter collects rows in memory and writes the complete member on Finish,
// so character columns may be declared with Length 0 and sized from the data.
type DatasetWriter struct {
	w       io.Writer
	version format.Version
	opts    []WriterOption
	ds      *dataset.Dataset

	headerWritten bool
	finished      bool
}

var _ ObservationWriter = (*DatasetWriter)(nil)

// NewDatasetWriter creates a buffering writer for one member.
func NewDatasetWriter(w io.Writer, v format.Version, member dataset.Member, opts ...WriterOption) *DatasetWriter {
	member.Columns = append([]dataset.Column(nil), member.Columns...)

	return &DatasetWriter{
		w:       w,
		version: v,
		opts:    opts,
		ds:      &dataset.Dataset{Member: member},
	}
}

// WriteHeader marks the start of the rows. Nothing is written until Finish.
func (d *DatasetWriter) WriteHeader() error {
	if d.finished {
		return errs.ErrWriterFinished
	}
	d.headerWritten = true

	return nil
}

// WriteRow buffers one row.
func (d *DatasetWriter) WriteRow(row dataset.Row) error {
	if d.finished {
		return errs.ErrWriterFinished
	}
	if !d.headerWritten {
		return errs.ErrHeaderNotWritten
	}

	return d.ds.AddRow(row...)
}

// Finish validates and writes the buffered member.
func (d *DatasetWriter) Finish() error {
	if d.finished {
		return errs.ErrWriterFinished
	}
	if !d.headerWritten {
		return errs.ErrHeaderNotWritten
	}
	d.finished = true

	return WriteDataset(d.w, d.ds, d.version, d.opts...)
}

// Dataset returns the rows collected so far.
func (d *DatasetWriter) Dataset() *dataset.Dataset {
	return d.ds
}

// ReadDataset reads the first member of a transport file into memory.
func ReadDataset(r io.Reader, opts ...ReaderOption) (*dataset.Dataset, error) {
	rd, err := NewReader(r, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rd.Close() }()

	return collect(rd)
}

// ReadMembers reads every member of a transport file into memory, in file order.
func ReadMembers(r io.Reader, opts ...ReaderOption) ([]*dataset.Dataset, error) {
	rd, err := NewReader(r, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rd.Close() }()

	var out []*dataset.Dataset
	for {
		ds, err := collect(rd)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)

		if err := rd.NextMember(); err != nil {
			if errors.Is(err, errs.ErrNoMoreMembers) {
				return out, nil
			}

			return nil, err
		}
	}
}

func collect(rd *Reader) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{Member: *rd.Member()}
	if n := rd.ObservationCount(); n > 0 {
		ds.Rows = make([]dataset.Row, 0, n)
	}

	for rd.Next() {
		ds.Rows = append(ds.Rows, rd.Row())
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}

	return ds, nil
}

// DatasetReader iterates the rows of a Dataset held in memory.
type DatasetReader struct {
	ds  *dataset.Dataset
	pos int
}

var _ ObservationReader = (*DatasetReader)(nil)

// NewDatasetReader creates a reader positioned before the first row of ds.
func NewDatasetReader(ds *dataset.Dataset) *DatasetReader {
	return &DatasetReader{ds: ds, pos: -1}
}

// Columns returns the dataset columns.
func (d *DatasetReader) Columns() []dataset.Column {
	return d.ds.Columns
}

// Next advances to the next row.
func (d *DatasetReader) Next() bool {
	if d.pos+1 >= len(d.ds.Rows) {
		d.pos = len(d.ds.Rows)
		return false
	}
	d.pos++

	return true
}

// Row returns the current row.
func (d *DatasetReader) Row() dataset.Row {
	if d.pos < 0 || d.pos >= len(d.ds.Rows) {
		return nil
	}

	return d.ds.Rows[d.pos]
}

// Err always returns nil.
func (d *DatasetReader) Err() error {
	return nil
}

func logFindings(logger *slog.Logger, r validate.Result) {
	for _, f := range r.Findings {
		level := slog.LevelWarn
		if f.IsError() {
			level = slog.LevelError
		}
		logger.Log(context.Background(), level, f.Message,
			"code", f.Code,
			"column", f.Column,
			"row", f.Row,
		)
	}
}
