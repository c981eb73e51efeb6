package section

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

// obsCountDigits is the width of the V8 observation count field.
const obsCountDigits = 15

// ObservationHeader represents the record that precedes the observation data.
//
// V5 carries no count. V8 stores the number of observations in 15 digits after the
// header literals; zero means the writer did not know the count.
type ObservationHeader struct {
	Version format.Version
	Count   int64
}

// Bytes serializes the ObservationHeader into one record.
func (h ObservationHeader) Bytes() []byte {
	tail := zeroTail
	if h.Version == format.V8 {
		tail = fmt.Sprintf("%0*d", obsCountDigits, h.Count)
	}

	return appendHeaderRecord(make([]byte, 0, RecordSize), obsKind(h.Version), tail)
}

// ParseObservationHeader parses the observation header record of the given version.
func ParseObservationHeader(rec []byte, v format.Version) (ObservationHeader, error) {
	kind, ok := HeaderKind(rec)
	if !ok || kind != obsKind(v) {
		return ObservationHeader{}, fmt.Errorf("%w: expected observation header", errs.ErrInvalidHeaderSignature)
	}

	h := ObservationHeader{Version: v}
	if v == format.V8 {
		countField := strings.TrimSpace(string(rec[headerTailOffset : headerTailOffset+obsCountDigits]))
		count, err := strconv.ParseInt(countField, 10, 64)
		if err == nil && count > 0 {
			h.Count = count
		}
	}

	return h, nil
}

// Field is the placement of one column inside an observation.
type Field struct {
	Type   format.ColumnType
	Offset int
	Width  int
}

// Layout maps columns to fixed-width fields of an observation record.
//
// An observation is the concatenation of every field: 2..8 bytes per numeric column
// (IBM float or missing marker) and Length bytes per character column.
type Layout struct {
	fields       []Field
	recordLength int
}

// NewLayout assigns consecutive offsets to the columns in order.
func NewLayout(columns []dataset.Column) *Layout {
	l := &Layout{fields: make([]Field, len(columns))}
	for i, c := range columns {
		w := c.Width()
		l.fields[i] = Field{Type: c.Type, Offset: l.recordLength, Width: w}
		l.recordLength += w
	}

	return l
}

// NewLayoutFromNamestrs builds the layout described by namestr positions and lengths.
//
// Returns:
//   - *Layout: The layout
//   - error: ErrInvalidNamestr if a field lies outside the record or fields overlap
func NewLayoutFromNamestrs(namestrs []Namestr) (*Layout, error) {
	l := &Layout{fields: make([]Field, len(namestrs))}

	end := 0
	for i, n := range namestrs {
		l.fields[i] = Field{Type: n.Type, Offset: n.Position, Width: n.Length}
		if n.Position+n.Length > end {
			end = n.Position + n.Length
		}
	}
	l.recordLength = end

	// positions may appear in any order but may not overlap
	used := make([]bool, end)
	for i, f := range l.fields {
		for j := f.Offset; j < f.Offset+f.Width; j++ {
			if used[j] {
				return nil, fmt.Errorf("%w: variable %d overlaps another at byte %d", errs.ErrInvalidNamestr, i+1, j)
			}
			used[j] = true
		}
	}

	return l, nil
}

// RecordLength returns the byte length of one observation.
func (l *Layout) RecordLength() int {
	return l.recordLength
}

// Fields returns the fields in column order.
func (l *Layout) Fields() []Field {
	return l.fields
}

// EncodeRow writes row into dst, which must be RecordLength bytes.
//
// NaN encodes as the standard missing value. A Missing value in a character column
// encodes as blanks. Over-length strings are truncated.
//
// Returns:
//   - error: ErrRowWidthMismatch, ErrTypeMismatch, ErrNumericOverflow or ErrNotEncodable
func (l *Layout) EncodeRow(dst []byte, row dataset.Row, enc encoding.TextEncoder) error {
	if len(dst) != l.recordLength {
		return errs.ErrInvalidRecordSize
	}
	if len(row) != len(l.fields) {
		return fmt.Errorf("%w: got %d values for %d columns", errs.ErrRowWidthMismatch, len(row), len(l.fields))
	}

	for i, f := range l.fields {
		out := dst[f.Offset : f.Offset+f.Width]
		v := row[i]

		if f.Type == format.Character {
			if err := encodeCharacter(out, v, enc); err != nil {
				return fmt.Errorf("column %d: %w", i+1, err)
			}

			continue
		}

		if err := encodeNumeric(out, v); err != nil {
			return fmt.Errorf("column %d: %w", i+1, err)
		}
	}

	return nil
}

func encodeCharacter(out []byte, v dataset.Value, enc encoding.TextEncoder) error {
	switch v.Kind() {
	case dataset.KindCharacter:
		s, _ := v.Str()
		_, err := enc.Put(out, s)

		return err
	case dataset.KindMissing:
		encoding.PadBlank(out)
		return nil
	default:
		return fmt.Errorf("%w: %s value in character column", errs.ErrTypeMismatch, v.Kind())
	}
}

func encodeNumeric(out []byte, v dataset.Value) error {
	var b [8]byte

	switch v.Kind() {
	case dataset.KindNumeric:
		x, _ := v.Float()
		if math.IsNaN(x) {
			b = encoding.EncodeMissing(format.MissingStandard)
			break
		}

		var err error
		b, err = encoding.EncodeIBM(x)
		if err != nil {
			return fmt.Errorf("%w: %v", err, x)
		}
	case dataset.KindMissing:
		m, _ := v.MissingValue()
		b = encoding.EncodeMissing(m)
	default:
		return fmt.Errorf("%w: %s value in numeric column", errs.ErrTypeMismatch, v.Kind())
	}

	copy(out, b[:])

	return nil
}

// DecodeOptions controls how observation fields are turned into values.
type DecodeOptions struct {
	Text encoding.TextDecoder
	// BlankAsMissing decodes all-blank character fields as the standard missing value.
	BlankAsMissing bool
}

// DecodeRow decodes one observation into a newly allocated row.
//
// Returns:
//   - dataset.Row: Decoded values in column order
//   - error: ErrInvalidRecordSize if src is not RecordLength bytes
func (l *Layout) DecodeRow(src []byte, opts DecodeOptions) (dataset.Row, error) {
	if len(src) != l.recordLength {
		return nil, errs.ErrInvalidRecordSize
	}

	row := make(dataset.Row, len(l.fields))
	for i, f := range l.fields {
		in := src[f.Offset : f.Offset+f.Width]

		if f.Type == format.Character {
			if opts.BlankAsMissing && encoding.IsBlank(in) {
				row[i] = dataset.Missing(format.MissingStandard)
				continue
			}
			row[i] = dataset.Character(opts.Text.String(in))

			continue
		}

		x, m, missing, err := encoding.DecodeNumeric(in)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		if missing {
			row[i] = dataset.Missing(m)
		} else {
			row[i] = dataset.Numeric(x)
		}
	}

	return row, nil
}

// ResolveColumns returns a copy of columns as they will be written.
//
// Numeric columns get NumericLength. Character columns with Length 0 are sized from
// the longest encoded value in rows, at least 1 and at most the version limit.
// Values that cannot be encoded count as their UTF-8 length.
func ResolveColumns(columns []dataset.Column, rows []dataset.Row, v format.Version, enc encoding.TextEncoder) []dataset.Column {
	out := make([]dataset.Column, len(columns))
	copy(out, columns)

	limit := v.Limits().CharacterLength
	for j := range out {
		c := &out[j]
		if c.Type == format.Numeric {
			c.Length = dataset.NumericLength
			continue
		}
		if c.Length != 0 {
			continue
		}

		longest := 1
		for _, row := range rows {
			if j >= len(row) {
				continue
			}
			s, ok := row[j].Str()
			if !ok {
				continue
			}
			n, err := enc.EncodedLen(s)
			if err != nil {
				n = len(s)
			}
			longest = max(longest, n)
		}
		c.Length = min(longest, limit)
	}

	return out
}
