package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/arloliu/xport/compress"
	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/internal/pool"
	"github.com/arloliu/xport/section"
)

// readBufferSize is the default read-ahead of the streaming reader.
const readBufferSize = 64 * 1024

// Reader streams the members of a transport file.
//
// Rows are decoded lazily, one observation at a time, with a single record buffer:
// memory use depends on the column count, not on the file size. The reader is
// forward only. Use Next and Row to iterate, or All for range-over-func:
//
//	r, err := transport.NewReader(f)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	for r.Next() {
//		row := r.Row()
//		// ...
//	}
//	if err := r.Err(); err != nil {
//		return err
//	}
//
// Libraries with several members are read with NextMember.
//
// Closing the Reader cancels an iteration in progress: Next returns false and Err
// reports ErrReaderClosed. Closing the underlying reader also cancels it; the next
// read fails and Err reports that error.
type Reader struct {
	cfg     *ReaderConfig
	logger  *slog.Logger
	zr      *compress.Reader
	src     *bufio.Reader
	offset  int64
	library section.LibraryHeader

	header     section.MemberHeader
	member     *dataset.Member
	layout     *section.Layout
	decodeOpts section.DecodeOptions
	recLen     int
	count      int64 // V8 observation count, 0 when unknown
	rowsRead   int64
	rec        *pool.ByteBuffer

	pending    int         // blank records not yet known to be rows or padding
	emitBlanks int         // blank rows confirmed as data and not yet returned
	held       dataset.Row // decoded row waiting behind emitBlanks
	memberDone bool
	memberNum  int

	row dataset.Row
	err error
}

var _ ObservationReader = (*Reader)(nil)

// NewReader parses the library header and the first member header of a transport
// file. Compressed input is detected and decompressed transparently.
//
// Returns:
//   - *Reader: Reader positioned before the first row of the first member
//   - error: ErrInvalidHeaderSignature, ErrTruncatedRecord, ErrInvalidNamestr,
//     or ErrNoMoreMembers for a library without members
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	cfg, err := newReaderConfig(opts...)
	if err != nil {
		return nil, err
	}

	zr, err := compress.NewReader(r)
	if err != nil {
		return nil, err
	}

	rd := &Reader{
		cfg:    cfg,
		logger: cfg.logger,
		zr:     zr,
		src:    bufio.NewReaderSize(zr, readBufferSize),
		rec:    pool.GetRecordBuffer(),
		decodeOpts: section.DecodeOptions{
			Text:           encoding.NewTextDecoder(cfg.charset, cfg.preserveSpaces),
			BlankAsMissing: cfg.blankAsMissing,
		},
	}

	if err := rd.readLibrary(); err != nil {
		_ = rd.Close()
		return nil, err
	}
	if err := rd.readMember(); err != nil {
		_ = rd.Close()
		if errors.Is(err, errs.ErrNoMoreMembers) {
			return nil, fmt.Errorf("%w: library has no members", err)
		}

		return nil, err
	}

	return rd, nil
}

// Close releases the buffers of the reader. It does not close the underlying reader.
// Later calls to Next and NextMember fail with ErrReaderClosed.
func (r *Reader) Close() error {
	if r.rec == nil {
		return nil
	}

	pool.PutRecordBuffer(r.rec)
	r.rec = nil
	r.row, r.held = nil, nil
	if r.err == nil {
		r.err = errs.ErrReaderClosed
	}

	return r.zr.Close()
}

// Library returns the library header.
func (r *Reader) Library() section.LibraryHeader {
	return r.library
}

// Version returns the transport version of the file.
func (r *Reader) Version() format.Version {
	return r.library.Version
}

// Compression returns the compression detected on the input.
func (r *Reader) Compression() format.CompressionType {
	return r.zr.Algorithm()
}

// Member returns the metadata of the current member.
func (r *Reader) Member() *dataset.Member {
	return r.member
}

// MemberHeader returns the raw header of the current member.
func (r *Reader) MemberHeader() section.MemberHeader {
	return r.header
}

// Columns returns the columns of the current member.
func (r *Reader) Columns() []dataset.Column {
	return r.member.Columns
}

// RecordLength returns the observation length of the current member.
func (r *Reader) RecordLength() int {
	return r.recLen
}

// ObservationCount returns the observation count stored in a V8 header, or 0 when
// the file does not record it.
func (r *Reader) ObservationCount() int64 {
	return r.count
}

// Offset returns the number of uncompressed bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Row returns the row decoded by the last successful call to Next.
// The row is not reused by later calls.
func (r *Reader) Row() dataset.Row {
	return r.row
}

// Err returns the first error met by Next or NextMember.
func (r *Reader) Err() error {
	return r.err
}

// All returns an iterator over the remaining rows of the current member. Iteration
// stops after the first error, which is yielded with a nil row.
func (r *Reader) All() iter.Seq2[dataset.Row, error] {
	return func(yield func(dataset.Row, error) bool) {
		for r.Next() {
			if !yield(r.row, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}

// Next advances to the next row of the current member.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	if r.emitBlanks > 0 {
		r.emitBlanks--
		return r.setBlankRow()
	}
	if r.held != nil {
		r.row, r.held = r.held, nil
		return true
	}
	if r.memberDone {
		return false
	}

	if r.count > 0 {
		return r.nextCounted()
	}

	return r.nextUncounted()
}

// nextCounted reads rows of a member whose V8 header states the count.
func (r *Reader) nextCounted() bool {
	if r.rowsRead == r.count {
		if err := r.discard(section.PaddingLen(r.offset)); err != nil && !errors.Is(err, io.EOF) {
			return r.fail(err)
		}
		r.finishMember(0)

		return false
	}

	rec := r.rec.Resize(r.recLen)
	if _, err := r.readFull(rec); err != nil {
		return r.fail(fmt.Errorf("%w: observation %d of %d", errs.ErrTruncatedRecord, r.rowsRead+1, r.count))
	}

	row, err := r.layout.DecodeRow(rec, r.decodeOpts)
	if err != nil {
		return r.fail(fmt.Errorf("observation %d: %w", r.rowsRead+1, err))
	}
	r.rowsRead++
	r.row = row

	return true
}

// nextUncounted reads rows when the end of the member is only known from the data:
// end of input or a member header on a record boundary. All-blank records are held
// back until a later non-blank record proves they are data; the ones left at the
// end that fit in the final 80-byte block are padding.
func (r *Reader) nextUncounted() bool {
	for {
		rec, tail, end, err := r.readObservation()
		if err != nil {
			return r.fail(err)
		}

		if end {
			padding := 0
			if r.recLen > 0 {
				padding = min(r.pending, max(0, (section.RecordSize-1-tail)/r.recLen))
			}
			r.emitBlanks = r.pending - padding
			r.rowsRead += int64(r.emitBlanks)
			r.pending = 0
			r.finishMember(padding)

			if r.emitBlanks > 0 {
				r.emitBlanks--
				return r.setBlankRow()
			}

			return false
		}

		if encoding.IsBlank(rec) {
			r.pending++
			continue
		}

		row, err := r.layout.DecodeRow(rec, r.decodeOpts)
		if err != nil {
			return r.fail(fmt.Errorf("observation %d: %w", r.rowsRead+int64(r.pending)+1, err))
		}
		r.rowsRead += int64(r.pending) + 1

		if r.pending > 0 {
			r.emitBlanks = r.pending - 1
			r.pending = 0
			r.held = row

			return r.setBlankRow()
		}

		r.row = row

		return true
	}
}

// readObservation reads one observation of an uncounted member.
//
// Returns:
//   - []byte: The observation, valid until the next call
//   - int: Bytes between the last full observation and the end of the section
//   - bool: Whether the section ended instead
//   - error: ErrTruncatedRecord if the input ends inside a non-blank observation,
//     or read errors other than end of input
func (r *Reader) readObservation() ([]byte, int, bool, error) {
	if r.recLen == 0 {
		return nil, 0, true, r.skipToMember()
	}

	// an observation reaching the next record boundary may collide with a member header
	dist := section.PaddingLen(r.offset)
	if dist < r.recLen {
		peek, _ := r.src.Peek(dist + section.RecordSize)
		if len(peek) == dist+section.RecordSize && encoding.IsBlank(peek[:dist]) {
			if kind, ok := section.HeaderKind(peek[dist:]); ok && kind.IsMember() {
				if err := r.discard(dist); err != nil {
					return nil, 0, false, err
				}

				return nil, dist, true, nil
			}
		}
	}

	rec := r.rec.Resize(r.recLen)
	n, err := r.readFull(rec)
	switch {
	case err == nil:
		return rec, 0, false, nil
	case errors.Is(err, io.EOF):
		return nil, 0, true, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		// only blank padding may follow the last observation
		if !encoding.IsBlank(rec[:n]) {
			return nil, 0, false, fmt.Errorf("%w: observation %d has %d of %d bytes",
				errs.ErrTruncatedRecord, r.rowsRead+int64(r.pending)+1, n, r.recLen)
		}

		return nil, n, true, nil
	default:
		return nil, 0, false, err
	}
}

// skipToMember skips records until the next member header or the end of input.
func (r *Reader) skipToMember() error {
	if err := r.discard(section.PaddingLen(r.offset)); err != nil {
		return ignoreEOF(err)
	}

	for {
		peek, err := r.src.Peek(section.RecordSize)
		if len(peek) < section.RecordSize {
			return ignoreEOF(err)
		}
		if kind, ok := section.HeaderKind(peek); ok && kind.IsMember() {
			return nil
		}
		if err := r.discard(section.RecordSize); err != nil {
			return ignoreEOF(err)
		}
	}
}

func (r *Reader) setBlankRow() bool {
	rec := r.rec.Resize(r.recLen)
	encoding.PadBlank(rec)

	row, err := r.layout.DecodeRow(rec, r.decodeOpts)
	if err != nil {
		return r.fail(err)
	}
	r.row = row

	return true
}

func (r *Reader) finishMember(padding int) {
	r.memberDone = true
	r.logger.Debug("member finished",
		"member", r.member.Name,
		"rows", r.rowsRead,
		"padding_rows", padding,
		"offset", r.offset,
	)
}

func (r *Reader) fail(err error) bool {
	r.err = err
	r.row = nil

	return false
}

// NextMember skips the remaining rows of the current member and parses the header
// of the next one.
//
// Returns:
//   - error: ErrNoMoreMembers at the end of the library, or a parse error
func (r *Reader) NextMember() error {
	for r.Next() {
	}
	if r.err != nil {
		return r.err
	}

	if err := r.readMember(); err != nil {
		if !errors.Is(err, errs.ErrNoMoreMembers) {
			r.err = err
		}

		return err
	}

	return nil
}

func (r *Reader) readLibrary() error {
	buf := make([]byte, section.LibraryHeaderSize)
	if _, err := r.readFull(buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: library header", errs.ErrTruncatedRecord)
		}

		return err
	}

	lib, err := section.ParseLibraryHeader(buf)
	if err != nil {
		return err
	}
	r.library = lib
	r.logger.Debug("library header parsed",
		"version", lib.Version,
		"sas_version", lib.SASVersion,
		"os", lib.OS,
	)

	return nil
}

// readMember parses member header, namestrs, label extensions and observation header.
func (r *Reader) readMember() error {
	// some writers close the library with blank records
	for {
		head, err := r.src.Peek(section.RecordSize)
		if len(head) < section.RecordSize {
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			if len(head) == 0 || encoding.IsBlank(head) {
				return errs.ErrNoMoreMembers
			}

			return fmt.Errorf("%w: member header", errs.ErrTruncatedRecord)
		}
		if !encoding.IsBlank(head) {
			break
		}
		if err := r.discard(section.RecordSize); err != nil {
			return err
		}
	}

	buf := make([]byte, section.MemberHeaderSize)
	if _, err := r.readFull(buf); err != nil {
		return truncated(err, "member header")
	}

	dec := r.decodeOpts.Text
	header, err := section.ParseMemberHeader(buf, dec)
	if err != nil {
		return err
	}
	v := header.Version

	rec := buf[:section.RecordSize]
	if _, err := r.readFull(rec); err != nil {
		return truncated(err, "namestr header")
	}
	nsHeader, err := section.ParseNamestrHeader(rec, v)
	if err != nil {
		return err
	}

	block := nsHeader.VariableCount * header.NamestrSize
	data := make([]byte, block+section.PaddingLen(int64(block)))
	if _, err := r.readFull(data); err != nil {
		return truncated(err, "namestr records")
	}
	namestrs, err := section.ParseNamestrs(data, nsHeader.VariableCount, header.NamestrSize, v, dec)
	if err != nil {
		return err
	}
	if err := checkFieldLimits(namestrs, v); err != nil {
		return err
	}

	if _, err := r.readFull(rec); err != nil {
		return truncated(err, "observation header")
	}

	var entries []section.LabelEntry
	if kind, ok := section.HeaderKind(rec); ok && (kind == section.KindLabelV8 || kind == section.KindLabelV9) {
		v9, count, err := section.ParseLabelHeader(rec)
		if err != nil {
			return err
		}
		if count > nsHeader.VariableCount {
			return fmt.Errorf("%w: %d label entries for %d variables", errs.ErrInvalidNamestr, count, nsHeader.VariableCount)
		}
		var consumed int64
		entries, consumed, err = section.ReadLabelEntries(r.src, count, v9, dec)
		r.offset += consumed
		if err != nil {
			return err
		}
		if err := r.discard(section.PaddingLen(consumed)); err != nil {
			return truncated(err, "label section")
		}
		if _, err := r.readFull(rec); err != nil {
			return truncated(err, "observation header")
		}
	}

	obs, err := section.ParseObservationHeader(rec, v)
	if err != nil {
		return err
	}

	layout, err := section.NewLayoutFromNamestrs(namestrs)
	if err != nil {
		return err
	}

	r.header = header
	r.member = &dataset.Member{
		Name:     header.Name,
		Label:    header.Label,
		Type:     header.Type,
		Created:  header.Created,
		Modified: header.Modified,
		Columns:  buildColumns(namestrs, entries),
	}
	r.layout = layout
	r.recLen = layout.RecordLength()
	r.count = obs.Count
	r.rowsRead = 0
	r.pending, r.emitBlanks, r.held = 0, 0, nil
	r.memberDone = false
	r.memberNum++

	// a peek at the boundary after an observation needs recLen plus one record
	if need := r.recLen + 2*section.RecordSize; need > r.src.Size() {
		r.src = bufio.NewReaderSize(r.src, need)
	}

	r.logger.Debug("member header parsed",
		"member", header.Name,
		"number", r.memberNum,
		"version", v,
		"columns", len(namestrs),
		"record_length", r.recLen,
		"observations", obs.Count,
		"label_entries", len(entries),
	)

	return nil
}

// checkFieldLimits rejects namestrs whose length or position exceed the version
// limits, before any buffer is sized from them.
func checkFieldLimits(namestrs []section.Namestr, v format.Version) error {
	limits := v.Limits()
	for i, n := range namestrs {
		if n.Type == format.Character && n.Length > limits.CharacterLength {
			return fmt.Errorf("%w: variable %d has length %d, limit %d",
				errs.ErrFieldTooLong, i+1, n.Length, limits.CharacterLength)
		}
		if end := n.Position + n.Length; n.Position < 0 || end > limits.RecordLength {
			return fmt.Errorf("%w: variable %d ends at byte %d, observation limit %d",
				errs.ErrFieldTooLong, i+1, end, limits.RecordLength)
		}
	}

	return nil
}

func (r *Reader) readFull(buf []byte) (int, error) {
	n, err := io.ReadFull(r.src, buf)
	r.offset += int64(n)

	return n, err
}

func (r *Reader) discard(n int) error {
	d, err := r.src.Discard(n)
	r.offset += int64(d)
	if err != nil && d < n {
		return err
	}

	return nil
}

func truncated(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", errs.ErrTruncatedRecord, what)
	}

	return err
}

func ignoreEOF(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	return err
}
