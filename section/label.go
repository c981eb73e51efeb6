package section

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/endian"
	"github.com/arloliu/xport/errs"
)

// LabelEntry is one variable of the V8 label extension section.
//
// The LABELV8 form carries the full name and label. The LABELV9 form also carries
// full format and informat names.
type LabelEntry struct {
	VarNum   int
	Name     string
	Label    string
	Format   string
	Informat string
}

// EncodeLabelSection serializes the LABELV8 (or LABELV9 when v9 is set) header record
// and its entries, padded to a record boundary.
//
// Layout of each entry:
//
//	LABELV8: varnum(2) | name length(2) | label length(2) | name | label
//	LABELV9: varnum(2) | name length(2) | label length(2) | format length(2) | informat length(2) |
//	         name | label | format | informat
func EncodeLabelSection(entries []LabelEntry, v9 bool, enc encoding.TextEncoder) ([]byte, error) {
	kind := KindLabelV8
	if v9 {
		kind = KindLabelV9
	}

	b := appendHeaderRecord(make([]byte, 0, RecordSize*2), kind, fmt.Sprintf("%-32d", len(entries)))
	engine := endian.GetTransportEngine()

	var body int64
	for _, e := range entries {
		label, err := enc.Bytes(e.Label)
		if err != nil {
			return nil, fmt.Errorf("label of %s: %w", e.Name, err)
		}

		b = engine.AppendUint16(b, uint16(e.VarNum))
		b = engine.AppendUint16(b, uint16(len(e.Name)))
		b = engine.AppendUint16(b, uint16(len(label)))
		body += LabelEntrySizeV8
		if v9 {
			b = engine.AppendUint16(b, uint16(len(e.Format)))
			b = engine.AppendUint16(b, uint16(len(e.Informat)))
			body += LabelEntrySizeV9 - LabelEntrySizeV8
		}

		b = append(b, e.Name...)
		b = append(b, label...)
		body += int64(len(e.Name) + len(label))
		if v9 {
			b = append(b, e.Format...)
			b = append(b, e.Informat...)
			body += int64(len(e.Format) + len(e.Informat))
		}
	}

	return AppendPadding(b, body), nil
}

// ParseLabelHeader parses a LABELV8 or LABELV9 header record.
//
// Returns:
//   - bool: Whether the entries use the LABELV9 form
//   - int: Number of entries
//   - error: ErrInvalidHeaderSignature if rec is not a label header
func ParseLabelHeader(rec []byte) (bool, int, error) {
	kind, ok := HeaderKind(rec)
	if !ok || (kind != KindLabelV8 && kind != KindLabelV9) {
		return false, 0, fmt.Errorf("%w: expected label header", errs.ErrInvalidHeaderSignature)
	}

	countField := strings.TrimSpace(string(rec[headerTailOffset:]))
	count, err := strconv.Atoi(countField)
	if err != nil || count < 0 {
		return false, 0, fmt.Errorf("%w: label count %q", errs.ErrInvalidNamestr, countField)
	}

	return kind == KindLabelV9, count, nil
}

// ReadLabelEntries reads count entries following a label header.
//
// The trailing padding of the section is not consumed; the returned byte count lets
// the caller skip to the next record boundary.
//
// Returns:
//   - []LabelEntry: Parsed entries
//   - int64: Number of bytes consumed from r
//   - error: ErrTruncatedRecord if r ends inside an entry
func ReadLabelEntries(r io.Reader, count int, v9 bool, dec encoding.TextDecoder) ([]LabelEntry, int64, error) {
	engine := endian.GetTransportEngine()

	fixed := LabelEntrySizeV8
	if v9 {
		fixed = LabelEntrySizeV9
	}
	head := make([]byte, fixed)

	var (
		consumed int64
		entries  []LabelEntry
	)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, head); err != nil {
			return nil, consumed, fmt.Errorf("%w: label entry %d", errs.ErrTruncatedRecord, i+1)
		}
		consumed += int64(fixed)

		lengths := []int{int(engine.Uint16(head[2:])), int(engine.Uint16(head[4:]))}
		if v9 {
			lengths = append(lengths, int(engine.Uint16(head[6:])), int(engine.Uint16(head[8:])))
		}

		total := 0
		for _, l := range lengths {
			total += l
		}
		text := make([]byte, total)
		if _, err := io.ReadFull(r, text); err != nil {
			return nil, consumed, fmt.Errorf("%w: label entry %d", errs.ErrTruncatedRecord, i+1)
		}
		consumed += int64(total)

		e := LabelEntry{VarNum: int(engine.Uint16(head[0:]))}
		off := 0
		e.Name = strings.TrimRight(string(text[off:off+lengths[0]]), " ")
		off += lengths[0]
		e.Label = dec.String(text[off : off+lengths[1]])
		off += lengths[1]
		if v9 {
			e.Format = strings.TrimRight(string(text[off:off+lengths[2]]), " ")
			off += lengths[2]
			e.Informat = strings.TrimRight(string(text[off:off+lengths[3]]), " ")
		}
		entries = append(entries, e)
	}

	return entries, consumed, nil
}
