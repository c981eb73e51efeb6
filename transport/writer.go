package transport

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/xport/compress"
	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/internal/pool"
	"github.com/arloliu/xport/section"
	"github.com/arloliu/xport/validate"
)

// countingWriter tracks the offset of the uncompressed stream.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}

// Writer streams one member to a transport file.
//
// Headers are written by WriteHeader, each row is encoded into one pooled record
// buffer by WriteRow, and Finish pads the data section. Rows are written in the
// order they arrive and are never buffered, so memory use does not grow with the
// row count.
//
// Column metadata is validated before the first byte is written. Rows are checked
// one at a time; a row with errors is rejected and the writer stays usable.
//
// The V8 observation count is unknown while streaming. When the destination is an
// io.WriteSeeker and the output is not compressed, Finish seeks back and records it;
// otherwise the header keeps 0, which readers treat as unknown.
type Writer struct {
	cfg     *WriterConfig
	logger  *slog.Logger
	version format.Version
	member  dataset.Member
	layout  *section.Layout
	enc     encoding.TextEncoder
	checker *validate.RowChecker

	sink    io.Writer
	zw      *compress.Writer
	out     *countingWriter
	library bool // write the library header before the member
	owned   bool // the writer created out and closes the compressor

	startPos  int64 // position of the sink when the header was written, -1 if not seekable
	obsOffset int64 // offset of the observation header within the uncompressed stream
	rec       *pool.ByteBuffer
	rows      int64

	headerWritten bool
	finished      bool
}

var _ ObservationWriter = (*Writer)(nil)

// NewWriter creates a streaming writer for one member.
//
// Parameters:
//   - w: Destination; not closed by the writer
//   - v: Transport version
//   - member: Dataset name, label and columns; character columns need a Length
//   - opts: Writer options
//
// Returns:
//   - *Writer: Writer ready for WriteHeader
//   - error: ErrUnsupportedVersion or an invalid option
func NewWriter(w io.Writer, v format.Version, member dataset.Member, opts ...WriterOption) (*Writer, error) {
	cfg, err := newWriterConfig(opts...)
	if err != nil {
		return nil, err
	}

	return newWriter(w, v, member, cfg)
}

func newWriter(w io.Writer, v format.Version, member dataset.Member, cfg *WriterConfig) (*Writer, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedVersion, v)
	}

	wr := &Writer{
		cfg:      cfg,
		logger:   cfg.logger,
		version:  v,
		member:   member,
		enc:      encoding.NewTextEncoder(cfg.charset),
		sink:     w,
		library:  true,
		owned:    true,
		startPos: -1,
	}
	wr.member.Columns = append([]dataset.Column(nil), member.Columns...)

	return wr, nil
}

// Columns returns the columns as written.
func (w *Writer) Columns() []dataset.Column {
	return w.member.Columns
}

// Rows returns the number of rows written so far.
func (w *Writer) Rows() int64 {
	return w.rows
}

// WriteHeader validates the column metadata and writes the library header, the
// member header, the namestrs, the label extensions and the observation header.
//
// Returns:
//   - error: *errs.ValidationError (matching ErrValidationFailed) when validation
//     fails, in which case nothing is written; write errors otherwise
func (w *Writer) WriteHeader() error {
	if w.finished {
		return errs.ErrWriterFinished
	}
	if w.headerWritten {
		return nil
	}

	if !w.cfg.skipValidation && !w.cfg.prevalidated {
		result := validate.CheckMember(&w.member, w.cfg.target(w.version), w.cfg.mode)
		logFindings(w.logger, result)
		if err := result.Err(); err != nil {
			return err
		}
	}

	// numeric columns are always written with 8 bytes
	w.member.Columns = section.ResolveColumns(w.member.Columns, nil, w.version, w.enc)
	if !w.cfg.skipValidation && !w.cfg.prevalidated {
		w.checker = validate.NewRowChecker(w.member.Columns, w.cfg.target(w.version), w.cfg.mode)
	}

	if w.out == nil {
		if seeker, ok := w.sink.(io.Seeker); ok && w.cfg.compression == format.CompressionNone {
			if pos, err := seeker.Seek(0, io.SeekCurrent); err == nil {
				w.startPos = pos
			}
		}

		dst := w.sink
		if w.cfg.compression != format.CompressionNone {
			zw, err := compress.NewWriter(w.sink, w.cfg.compression)
			if err != nil {
				return err
			}
			w.zw = zw
			dst = zw
		}
		w.out = &countingWriter{w: dst}
	}

	head, err := w.encodeHeader()
	if err != nil {
		return err
	}
	if _, err := head.WriteTo(w.out); err != nil {
		pool.PutSectionBuffer(head)
		return fmt.Errorf("write header: %w", err)
	}
	pool.PutSectionBuffer(head)

	w.layout = section.NewLayout(w.member.Columns)
	w.rec = pool.GetRecordBuffer()
	w.headerWritten = true

	w.logger.Debug("member header written",
		"member", w.member.Name,
		"version", w.version,
		"columns", len(w.member.Columns),
		"record_length", w.layout.RecordLength(),
	)

	return nil
}

// encodeHeader serializes every section that precedes the observations.
func (w *Writer) encodeHeader() (*pool.ByteBuffer, error) {
	buf := pool.GetSectionBuffer()

	if w.library {
		lib := section.LibraryHeader{
			Version:    w.version,
			SASVersion: w.cfg.sasVersion,
			OS:         w.cfg.os,
			Created:    w.cfg.created,
			Modified:   w.cfg.modified,
		}
		_, _ = buf.Write(lib.Bytes())
	}

	memberType := w.member.Type
	if memberType == "" {
		memberType = section.DefaultMemberType
	}
	mh := section.MemberHeader{
		Version:     w.version,
		NamestrSize: section.NamestrSize,
		Name:        w.member.Name,
		Label:       w.member.Label,
		Type:        memberType,
		SASVersion:  w.cfg.sasVersion,
		OS:          w.cfg.os,
		Created:     w.cfg.created,
		Modified:    w.cfg.modified,
	}
	if !w.member.Created.IsZero() {
		mh.Created = w.member.Created
	}
	if !w.member.Modified.IsZero() {
		mh.Modified = w.member.Modified
	}
	b, err := mh.Bytes(w.enc)
	if err != nil {
		pool.PutSectionBuffer(buf)
		return nil, fmt.Errorf("member header: %w", err)
	}
	_, _ = buf.Write(b)

	namestrs := buildNamestrs(w.member.Columns)
	_, _ = buf.Write(section.NamestrHeader{Version: w.version, VariableCount: len(namestrs)}.Bytes())

	b, err = section.EncodeNamestrs(namestrs, w.version, w.enc)
	if err != nil {
		pool.PutSectionBuffer(buf)
		return nil, err
	}
	_, _ = buf.Write(b)

	if entries, v9 := labelEntries(namestrs, w.version, w.enc); len(entries) > 0 {
		b, err = section.EncodeLabelSection(entries, v9, w.enc)
		if err != nil {
			pool.PutSectionBuffer(buf)
			return nil, err
		}
		_, _ = buf.Write(b)
	}

	count := max(w.cfg.count, 0)
	w.obsOffset = w.out.n + int64(buf.Len())
	_, _ = buf.Write(section.ObservationHeader{Version: w.version, Count: count}.Bytes())

	return buf, nil
}

// WriteRow encodes and writes one row.
//
// Returns:
//   - error: ErrHeaderNotWritten, ErrWriterFinished, a *errs.ValidationError for a
//     rejected row, encoding errors, or write errors
func (w *Writer) WriteRow(row dataset.Row) error {
	if w.finished {
		return errs.ErrWriterFinished
	}
	if !w.headerWritten {
		return errs.ErrHeaderNotWritten
	}

	if w.checker != nil {
		result := w.checker.Check(int(w.rows)+1, row)
		logFindings(w.logger, result)
		if err := result.Err(); err != nil {
			return err
		}
	}

	rec := w.rec.Resize(w.layout.RecordLength())
	if err := w.layout.EncodeRow(rec, row, w.enc); err != nil {
		return fmt.Errorf("row %d: %w", w.rows+1, err)
	}
	if _, err := w.out.Write(rec); err != nil {
		return fmt.Errorf("write row %d: %w", w.rows+1, err)
	}
	w.rows++

	return nil
}

// WriteRows writes rows in order and stops at the first error.
func (w *Writer) WriteRows(rows []dataset.Row) error {
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}

	return nil
}

// Finish pads the data section, records the V8 observation count when possible and
// ends the compressed stream. The destination is not closed.
func (w *Writer) Finish() error {
	if w.finished {
		return errs.ErrWriterFinished
	}
	if !w.headerWritten {
		return errs.ErrHeaderNotWritten
	}
	w.finished = true
	defer func() {
		pool.PutRecordBuffer(w.rec)
		w.rec = nil
	}()

	data := w.rows * int64(w.layout.RecordLength())
	if pad := section.PaddingLen(data); pad > 0 {
		rec := w.rec.Resize(pad)
		encoding.PadBlank(rec)
		if _, err := w.out.Write(rec); err != nil {
			return fmt.Errorf("write padding: %w", err)
		}
	}

	if w.version == format.V8 && w.cfg.count < 0 {
		if err := w.patchCount(); err != nil {
			return err
		}
	}

	if w.zw != nil && w.owned {
		if err := w.zw.Close(); err != nil {
			return fmt.Errorf("close %s stream: %w", w.cfg.compression, err)
		}
		stats := w.zw.Stats()
		w.logger.Debug("compressed stream closed",
			"algorithm", stats.Algorithm,
			"original_bytes", stats.OriginalSize,
			"compressed_bytes", stats.CompressedSize,
		)
	}

	if w.owned && w.cfg.stats != nil {
		*w.cfg.stats = w.Stats()
	}

	w.logger.Debug("member finished", "member", w.member.Name, "rows", w.rows, "bytes", w.out.n)

	return nil
}

// Stats returns the sizes written so far. The compressed size is final after Finish.
func (w *Writer) Stats() compress.Stats {
	if w.zw != nil {
		return w.zw.Stats()
	}

	var n int64
	if w.out != nil {
		n = w.out.n
	}

	return compress.Stats{
		Algorithm:      format.CompressionNone,
		OriginalSize:   n,
		CompressedSize: n,
	}
}

// patchCount rewrites the V8 observation header with the final row count.
func (w *Writer) patchCount() error {
	ws, ok := w.sink.(io.WriteSeeker)
	if !ok || w.startPos < 0 || w.rows == 0 {
		return nil
	}

	end, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("patch observation count: %w", err)
	}
	if _, err := ws.Seek(w.startPos+w.obsOffset, io.SeekStart); err != nil {
		return fmt.Errorf("patch observation count: %w", err)
	}
	if _, err := ws.Write(section.ObservationHeader{Version: w.version, Count: w.rows}.Bytes()); err != nil {
		return fmt.Errorf("patch observation count: %w", err)
	}
	if _, err := ws.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("patch observation count: %w", err)
	}

	return nil
}
