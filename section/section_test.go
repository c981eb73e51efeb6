package section

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

var (
	testCreated = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	asciiEnc    = encoding.NewTextEncoder(format.CharsetASCII)
	asciiDec    = encoding.NewTextDecoder(format.CharsetASCII, false)
)

func TestTimestamp(t *testing.T) {
	s := FormatTimestamp(testCreated)
	assert.Equal(t, "15MAR24:10:30:00", s)
	assert.Len(t, s, TimestampSize)

	got, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.Equal(t, testCreated, got)

	assert.Equal(t, "                ", FormatTimestamp(time.Time{}))
	got, err = ParseTimestamp("                ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = ParseTimestamp("01JAN85:00:00:00")
	require.NoError(t, err)
	assert.Equal(t, 1985, got.Year())

	_, err = ParseTimestamp("15XYZ24:10:30:00")
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSignature)

	_, err = ParseTimestamp("15MAR24")
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSignature)
}

func TestHeaderKind(t *testing.T) {
	rec := appendHeaderRecord(nil, KindNamestrV8, zeroTail)
	require.Len(t, rec, RecordSize)

	kind, ok := HeaderKind(rec)
	require.True(t, ok)
	assert.Equal(t, KindNamestrV8, kind)
	assert.False(t, kind.IsMember())

	_, ok = HeaderKind(rec[:40])
	assert.False(t, ok)

	_, ok = HeaderKind(bytes.Repeat([]byte{' '}, RecordSize))
	assert.False(t, ok)

	assert.True(t, KindMember.IsMember())
	assert.True(t, KindMemberV8.IsMember())
}

func TestPaddingLen(t *testing.T) {
	tests := []struct {
		n    int64
		want int
	}{
		{0, 0},
		{1, 79},
		{80, 0},
		{140, 20},
		{420, 60},
		{160, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PaddingLen(tt.n), "n=%d", tt.n)
		assert.Len(t, AppendPadding(nil, tt.n), tt.want)
	}
}

func TestLibraryHeader_RoundTrip(t *testing.T) {
	for _, v := range []format.Version{format.V5, format.V8} {
		t.Run(v.String(), func(t *testing.T) {
			h := NewLibraryHeader(v, testCreated)
			h.Modified = testCreated.Add(time.Hour)

			b := h.Bytes()
			require.Len(t, b, LibraryHeaderSize)

			kind, ok := HeaderKind(b)
			require.True(t, ok)
			assert.Equal(t, libraryKind(v), kind)
			assert.Equal(t, "SAS     SAS     SASLIB  9.4     X64_10PR", string(b[RecordSize:RecordSize+40]))

			got, err := ParseLibraryHeader(b)
			require.NoError(t, err)
			assert.Equal(t, *h, got)
		})
	}
}

func TestLibraryHeader_Errors(t *testing.T) {
	_, err := ParseLibraryHeader(make([]byte, 100))
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)

	_, err = ParseLibraryHeader(bytes.Repeat([]byte("x"), LibraryHeaderSize))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSignature)

	b := NewLibraryHeader(format.V5, testCreated).Bytes()
	copy(b, appendHeaderRecord(nil, KindMember, zeroTail))
	_, err = ParseLibraryHeader(b)
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestMemberHeader_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		version format.Version
		member  string
		size    int
	}{
		{"V5", format.V5, "DM", NamestrSize},
		{"V8LongName", format.V8, "ADVERSE_EVENTS_ANALYSIS", NamestrSize},
		{"V5VAX", format.V5, "VITALS", NamestrSizeVAX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMemberHeader(tt.version, tt.member, "Demographics", testCreated)
			h.NamestrSize = tt.size

			b, err := h.Bytes(asciiEnc)
			require.NoError(t, err)
			require.Len(t, b, MemberHeaderSize)
			assert.Equal(t, "0000000000000000016000000001", string(b[headerTailOffset:namestrSizeOffset+2]))

			kind, ok := HeaderKind(b[RecordSize:])
			require.True(t, ok)
			assert.Equal(t, descriptorKind(tt.version), kind)

			got, err := ParseMemberHeader(b, asciiDec)
			require.NoError(t, err)
			assert.Equal(t, *h, got)
		})
	}
}

func TestMemberHeader_Errors(t *testing.T) {
	h := NewMemberHeader(format.V5, "DM", "", testCreated)
	b, err := h.Bytes(asciiEnc)
	require.NoError(t, err)

	_, err = ParseMemberHeader(b[:RecordSize], asciiDec)
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)

	bad := bytes.Clone(b)
	copy(bad[namestrSizeOffset:], "0150")
	_, err = ParseMemberHeader(bad, asciiDec)
	require.ErrorIs(t, err, errs.ErrInvalidNamestr)

	bad = bytes.Clone(b)
	copy(bad[RecordSize:], appendHeaderRecord(nil, KindDescriptorV8, zeroTail))
	_, err = ParseMemberHeader(bad, asciiDec)
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSignature)

	_, err = NewMemberHeader(format.V5, "DM", "Über", testCreated).Bytes(asciiEnc)
	require.ErrorIs(t, err, errs.ErrNotEncodable)
}

func TestNamestrHeader(t *testing.T) {
	for _, v := range []format.Version{format.V5, format.V8} {
		t.Run(v.String(), func(t *testing.T) {
			b := NamestrHeader{Version: v, VariableCount: 12}.Bytes()
			require.Len(t, b, RecordSize)
			assert.Equal(t, "000000001200000000000000000000  ", string(b[headerTailOffset:]))

			got, err := ParseNamestrHeader(b, v)
			require.NoError(t, err)
			assert.Equal(t, 12, got.VariableCount)

			other := format.V8
			if v == format.V8 {
				other = format.V5
			}
			_, err = ParseNamestrHeader(b, other)
			require.ErrorIs(t, err, errs.ErrInvalidHeaderSignature)
		})
	}
}

func sampleNamestrs() []Namestr {
	return []Namestr{
		{
			Type: format.Character, Length: 20, VarNum: 1, Name: "USUBJID",
			Label: "Unique Subject Identifier", Position: 0,
		},
		{
			Type: format.Numeric, Length: 8, VarNum: 2, Name: "BRTHDT", Label: "Date of Birth",
			Format:   FormatField{Name: "DATE", Width: 9},
			Informat: FormatField{Name: "DATE", Width: 9},
			Justify:  format.JustifyRight,
			Position: 20,
		},
	}
}

func TestNamestr_RoundTrip(t *testing.T) {
	for _, v := range []format.Version{format.V5, format.V8} {
		t.Run(v.String(), func(t *testing.T) {
			namestrs := sampleNamestrs()
			b, err := EncodeNamestrs(namestrs, v, asciiEnc)
			require.NoError(t, err)
			require.Len(t, b, 320)

			got, err := ParseNamestrs(b, len(namestrs), NamestrSize, v, asciiDec)
			require.NoError(t, err)

			for i := range namestrs {
				if v == format.V8 {
					namestrs[i].LabelLength = len(namestrs[i].Label)
				}
				assert.Equal(t, namestrs[i], got[i])
			}
		})
	}
}

func TestNamestr_LongNameV8(t *testing.T) {
	n := Namestr{Type: format.Numeric, Length: 8, VarNum: 1, Name: "TREATMENT_EMERGENT_FLAG"}

	b, err := n.Bytes(format.V8, asciiEnc)
	require.NoError(t, err)
	assert.Equal(t, "TREATMEN", string(b[nsName:nsLabel]))

	var got Namestr
	require.NoError(t, got.Parse(b, format.V8, asciiDec))
	assert.Equal(t, "TREATMENT_EMERGENT_FLAG", got.Name)

	// V5 readers only see the short name
	require.NoError(t, got.Parse(b, format.V5, asciiDec))
	assert.Equal(t, "TREATMEN", got.Name)
}

func TestNamestr_VAXSize(t *testing.T) {
	namestrs := sampleNamestrs()

	var block []byte
	for i := range namestrs {
		b, err := namestrs[i].Bytes(format.V5, asciiEnc)
		require.NoError(t, err)
		block = append(block, b[:NamestrSizeVAX]...)
	}

	got, err := ParseNamestrs(block, len(namestrs), NamestrSizeVAX, format.V5, asciiDec)
	require.NoError(t, err)
	assert.Equal(t, namestrs, got)
}

func TestNamestr_Invalid(t *testing.T) {
	n := sampleNamestrs()[1]
	b, err := n.Bytes(format.V5, asciiEnc)
	require.NoError(t, err)

	t.Run("UnknownType", func(t *testing.T) {
		bad := bytes.Clone(b)
		bad[nsType+1] = 7
		var got Namestr
		require.ErrorIs(t, got.Parse(bad, format.V5, asciiDec), errs.ErrInvalidNamestr)
	})

	t.Run("NumericTooWide", func(t *testing.T) {
		bad := bytes.Clone(b)
		bad[nsLength+1] = 9
		var got Namestr
		require.ErrorIs(t, got.Parse(bad, format.V5, asciiDec), errs.ErrInvalidNamestr)
	})

	t.Run("WrongSize", func(t *testing.T) {
		var got Namestr
		require.ErrorIs(t, got.Parse(b[:100], format.V5, asciiDec), errs.ErrInvalidRecordSize)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := ParseNamestrs(b, 2, NamestrSize, format.V5, asciiDec)
		require.ErrorIs(t, err, errs.ErrTruncatedRecord)
	})
}

func TestNamestr_Extensions(t *testing.T) {
	n := Namestr{Label: "short"}
	assert.False(t, n.NeedsLabelExtension(asciiEnc))

	n.Label = string(bytes.Repeat([]byte("L"), 41))
	assert.True(t, n.NeedsLabelExtension(asciiEnc))
	assert.False(t, n.NeedsFormatExtension())

	n = Namestr{Format: FormatField{Name: "E8601DATETIME", Width: 19}}
	assert.True(t, n.NeedsLabelExtension(asciiEnc))
	assert.True(t, n.NeedsFormatExtension())
}

func TestLabelSection(t *testing.T) {
	entries := []LabelEntry{
		{VarNum: 1, Name: "AETERM", Label: "Reported Term for the Adverse Event, as collected on the case report form"},
		{VarNum: 3, Name: "AESTDTC", Label: "Start Date/Time", Format: "E8601DATETIME", Informat: "E8601DT"},
	}

	for _, v9 := range []bool{false, true} {
		name := "LABELV8"
		if v9 {
			name = "LABELV9"
		}
		t.Run(name, func(t *testing.T) {
			b, err := EncodeLabelSection(entries, v9, asciiEnc)
			require.NoError(t, err)
			require.Zero(t, len(b)%RecordSize)

			gotV9, count, err := ParseLabelHeader(b[:RecordSize])
			require.NoError(t, err)
			assert.Equal(t, v9, gotV9)
			assert.Equal(t, len(entries), count)

			got, consumed, err := ReadLabelEntries(bytes.NewReader(b[RecordSize:]), count, v9, asciiDec)
			require.NoError(t, err)
			assert.Equal(t, len(b)-RecordSize, int(consumed)+PaddingLen(consumed))

			for i, e := range entries {
				if !v9 {
					e.Format, e.Informat = "", ""
				}
				assert.Equal(t, e, got[i])
			}
		})
	}
}

func TestLabelSection_Errors(t *testing.T) {
	_, _, err := ParseLabelHeader(ObservationHeader{Version: format.V8}.Bytes())
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSignature)

	b, err := EncodeLabelSection([]LabelEntry{{VarNum: 1, Name: "X", Label: "A label"}}, false, asciiEnc)
	require.NoError(t, err)

	_, _, err = ReadLabelEntries(bytes.NewReader(b[RecordSize:RecordSize+8]), 1, false, asciiDec)
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)

	_, err = EncodeLabelSection([]LabelEntry{{VarNum: 1, Name: "X", Label: "Größe"}}, false, asciiEnc)
	require.ErrorIs(t, err, errs.ErrNotEncodable)
}

func TestObservationHeader(t *testing.T) {
	t.Run("V5", func(t *testing.T) {
		b := ObservationHeader{Version: format.V5, Count: 99}.Bytes()
		assert.Equal(t, zeroTail, string(b[headerTailOffset:]))

		h, err := ParseObservationHeader(b, format.V5)
		require.NoError(t, err)
		assert.Zero(t, h.Count)
	})

	t.Run("V8Count", func(t *testing.T) {
		b := ObservationHeader{Version: format.V8, Count: 42}.Bytes()
		assert.Equal(t, "000000000000042", string(b[headerTailOffset:headerTailOffset+obsCountDigits]))

		h, err := ParseObservationHeader(b, format.V8)
		require.NoError(t, err)
		assert.Equal(t, int64(42), h.Count)
	})

	t.Run("V8Unknown", func(t *testing.T) {
		h, err := ParseObservationHeader(ObservationHeader{Version: format.V8}.Bytes(), format.V8)
		require.NoError(t, err)
		assert.Zero(t, h.Count)
	})

	t.Run("WrongVersion", func(t *testing.T) {
		_, err := ParseObservationHeader(ObservationHeader{Version: format.V8}.Bytes(), format.V5)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSignature)
	})
}

func testColumns() []dataset.Column {
	return []dataset.Column{
		dataset.CharacterColumn("USUBJID", "", 10),
		dataset.NumericColumn("AGE", ""),
		dataset.CharacterColumn("SEX", "", 1),
	}
}

func TestLayout_EncodeDecode(t *testing.T) {
	l := NewLayout(testColumns())
	require.Equal(t, 19, l.RecordLength())
	assert.Equal(t, []Field{
		{Type: format.Character, Offset: 0, Width: 10},
		{Type: format.Numeric, Offset: 10, Width: 8},
		{Type: format.Character, Offset: 18, Width: 1},
	}, l.Fields())

	opts := DecodeOptions{Text: asciiDec}
	rec := make([]byte, l.RecordLength())

	tests := []struct {
		name string
		row  dataset.Row
		want dataset.Row
	}{
		{
			name: "Values",
			row:  dataset.Row{dataset.Character("01-001"), dataset.Numeric(35), dataset.Character("F")},
			want: dataset.Row{dataset.Character("01-001"), dataset.Numeric(35), dataset.Character("F")},
		},
		{
			name: "Missing",
			row:  dataset.Row{dataset.Missing(format.MissingStandard), dataset.Missing(format.MissingK), dataset.Character("")},
			want: dataset.Row{dataset.Character(""), dataset.Missing(format.MissingK), dataset.Character("")},
		},
		{
			name: "NaNIsStandardMissing",
			row:  dataset.Row{dataset.Character("x"), dataset.Numeric(math.NaN()), dataset.Character("M")},
			want: dataset.Row{dataset.Character("x"), dataset.Missing(format.MissingStandard), dataset.Character("M")},
		},
		{
			name: "Truncated",
			row:  dataset.Row{dataset.Character("0123456789ABC"), dataset.Numeric(-1), dataset.Character("MF")},
			want: dataset.Row{dataset.Character("0123456789"), dataset.Numeric(-1), dataset.Character("M")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, l.EncodeRow(rec, tt.row, asciiEnc))
			got, err := l.DecodeRow(rec, opts)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	t.Run("BlankAsMissing", func(t *testing.T) {
		row := dataset.Row{dataset.Character(""), dataset.Numeric(1), dataset.Character("F")}
		require.NoError(t, l.EncodeRow(rec, row, asciiEnc))

		got, err := l.DecodeRow(rec, DecodeOptions{Text: asciiDec, BlankAsMissing: true})
		require.NoError(t, err)
		assert.Equal(t, dataset.Missing(format.MissingStandard), got[0])
	})
}

func TestLayout_EncodeErrors(t *testing.T) {
	l := NewLayout(testColumns())
	rec := make([]byte, l.RecordLength())

	err := l.EncodeRow(rec, dataset.Row{dataset.Character("a")}, asciiEnc)
	require.ErrorIs(t, err, errs.ErrRowWidthMismatch)

	err = l.EncodeRow(rec, dataset.Row{dataset.Numeric(1), dataset.Numeric(1), dataset.Character("F")}, asciiEnc)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	err = l.EncodeRow(rec, dataset.Row{dataset.Character("a"), dataset.Character("1"), dataset.Character("F")}, asciiEnc)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	err = l.EncodeRow(rec, dataset.Row{dataset.Character("a"), dataset.Numeric(1e300), dataset.Character("F")}, asciiEnc)
	require.ErrorIs(t, err, errs.ErrNumericOverflow)

	err = l.EncodeRow(rec, dataset.Row{dataset.Character("é"), dataset.Numeric(1), dataset.Character("F")}, asciiEnc)
	require.ErrorIs(t, err, errs.ErrNotEncodable)

	err = l.EncodeRow(rec[:5], dataset.Row{}, asciiEnc)
	require.ErrorIs(t, err, errs.ErrInvalidRecordSize)

	_, err = l.DecodeRow(rec[:5], DecodeOptions{Text: asciiDec})
	require.ErrorIs(t, err, errs.ErrInvalidRecordSize)
}

func TestNewLayoutFromNamestrs(t *testing.T) {
	t.Run("OutOfOrderPositions", func(t *testing.T) {
		l, err := NewLayoutFromNamestrs([]Namestr{
			{Type: format.Numeric, Length: 8, Position: 4},
			{Type: format.Character, Length: 4, Position: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, 12, l.RecordLength())
		assert.Equal(t, 4, l.Fields()[0].Offset)
	})

	t.Run("Overlap", func(t *testing.T) {
		_, err := NewLayoutFromNamestrs([]Namestr{
			{Type: format.Numeric, Length: 8, Position: 0},
			{Type: format.Character, Length: 4, Position: 6},
		})
		require.ErrorIs(t, err, errs.ErrInvalidNamestr)
	})
}

func TestResolveColumns(t *testing.T) {
	columns := []dataset.Column{
		dataset.CharacterColumn("A", "", 0),
		{Name: "N", Type: format.Numeric, Length: 3},
		dataset.CharacterColumn("B", "", 5),
		dataset.CharacterColumn("E", "", 0),
	}
	rows := []dataset.Row{
		{dataset.Character("abc"), dataset.Numeric(1), dataset.Character("x"), dataset.Missing(format.MissingStandard)},
		{dataset.Character("abcdefg"), dataset.Numeric(2), dataset.Character("y"), dataset.Missing(format.MissingStandard)},
	}

	got := ResolveColumns(columns, rows, format.V5, asciiEnc)
	assert.Equal(t, 7, got[0].Length)
	assert.Equal(t, dataset.NumericLength, got[1].Length)
	assert.Equal(t, 5, got[2].Length)
	assert.Equal(t, 1, got[3].Length)

	// the input is not modified
	assert.Equal(t, 0, columns[0].Length)

	long := []dataset.Row{{dataset.Character(string(bytes.Repeat([]byte("z"), 300)))}}
	got = ResolveColumns(columns[:1], long, format.V5, asciiEnc)
	assert.Equal(t, 200, got[0].Length)
}
