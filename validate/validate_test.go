package validate

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

func demographics(t *testing.T) *dataset.Dataset {
	t.Helper()

	ds := dataset.New("DM",
		dataset.CharacterColumn("USUBJID", "Unique Subject Identifier", 20),
		dataset.NumericColumn("AGE", "Age").WithFormat(dataset.MustParseFormat("8.")),
		dataset.CharacterColumn("SEX", "Sex", 1),
	)
	require.NoError(t, ds.AddRow(dataset.Character("STUDY1-001"), dataset.Numeric(34), dataset.Character("F")))
	require.NoError(t, ds.AddRow(dataset.Character("STUDY1-002"), dataset.Missing(format.MissingStandard), dataset.Character("M")))

	return ds
}

func TestValidate_CleanDataset(t *testing.T) {
	ds := demographics(t)

	for _, mode := range []Mode{ModeStandard, ModeFDA} {
		t.Run(mode.String(), func(t *testing.T) {
			r := Validate(ds, format.V5, mode)
			require.False(t, r.HasErrors(), r.Findings)
			require.NoError(t, r.Err())
		})
	}
}

func TestValidate_VersionNameLimits(t *testing.T) {
	ds := demographics(t)
	ds.Rows = nil
	require.NoError(t, ds.AddColumn(dataset.NumericColumn("TENCHARNAM", "")))

	v8 := Validate(ds, format.V8, ModeStandard)
	assert.False(t, v8.HasErrors(), v8.Findings)

	v5 := Validate(ds, format.V5, ModeStandard)
	require.True(t, v5.HasErrors())
	require.True(t, v5.Has(CodeColumnNameTooLong))
	require.Len(t, v5.Errors(), 1)
	assert.Equal(t, "TENCHARNAM", v5.Errors()[0].Column)
}

func TestValidate_FDARules(t *testing.T) {
	tests := []struct {
		name   string
		target func(*dataset.Dataset) (Target, *dataset.Dataset)
		code   Code
	}{
		{
			name: "V8Dataset",
			target: func(ds *dataset.Dataset) (Target, *dataset.Dataset) {
				return Target{Version: format.V8}, ds
			},
			code: CodeFDAVersion,
		},
		{
			name: "SplitFile",
			target: func(ds *dataset.Dataset) (Target, *dataset.Dataset) {
				return Target{Version: format.V5, Parts: 2}, ds
			},
			code: CodeFDASplitFile,
		},
		{
			name: "CustomFormat",
			target: func(ds *dataset.Dataset) (Target, *dataset.Dataset) {
				ds.Columns[2] = ds.Columns[2].WithFormat(dataset.MustParseFormat("$SEXF."))
				return Target{Version: format.V5}, ds
			},
			code: CodeFDACustomFormat,
		},
		{
			name: "MultipleMembers",
			target: func(ds *dataset.Dataset) (Target, *dataset.Dataset) {
				return Target{Version: format.V5, Members: 3}, ds
			},
			code: CodeFDAMultipleFiles,
		},
		{
			name: "Compressed",
			target: func(ds *dataset.Dataset) (Target, *dataset.Dataset) {
				return Target{Version: format.V5, Compression: format.CompressionZstd}, ds
			},
			code: CodeFDACompression,
		},
		{
			name: "NonASCIIData",
			target: func(ds *dataset.Dataset) (Target, *dataset.Dataset) {
				ds.Rows[0][0] = dataset.Character("SUJET-é")
				return Target{Version: format.V5, Charset: format.CharsetLatin1}, ds
			},
			code: CodeFDANonASCII,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ds := tt.target(demographics(t))

			fda := Check(ds, target, ModeFDA)
			require.True(t, fda.HasErrors())
			require.True(t, fda.Has(tt.code), fda.Findings)

			std := Check(ds, target, ModeStandard)
			require.Empty(t, std.Errors(), std.Findings)
		})
	}
}

func TestValidate_CollectsAllFindings(t *testing.T) {
	ds := dataset.New("",
		dataset.CharacterColumn("", "", 10),
		dataset.NumericColumn("X", strings.Repeat("L", 41)),
		dataset.NumericColumn("x", ""),
		dataset.CharacterColumn("BIG", "", 300),
	)

	r := Validate(ds, format.V5, ModeStandard)

	for _, code := range []Code{
		CodeDatasetNameEmpty,
		CodeColumnNameEmpty,
		CodeLabelTooLong,
		CodeDuplicateColumn,
		CodeLengthTooLong,
	} {
		assert.True(t, r.Has(code), "missing %s", code)
	}

	err := r.Err()
	require.ErrorIs(t, err, errs.ErrValidationFailed)

	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Findings, len(r.Findings))
}

func TestValidate_Values(t *testing.T) {
	tests := []struct {
		name     string
		value    dataset.Value
		column   int
		code     Code
		severity Severity
	}{
		{"NaN", dataset.Numeric(math.NaN()), 1, CodeNumericNaN, SeverityWarning},
		{"Infinity", dataset.Numeric(math.Inf(1)), 1, CodeNumericOutOfRange, SeverityError},
		{"TooLarge", dataset.Numeric(1e300), 1, CodeNumericOutOfRange, SeverityError},
		{"StringInNumeric", dataset.Character("34"), 1, CodeTypeMismatch, SeverityError},
		{"NumberInCharacter", dataset.Numeric(1), 2, CodeTypeMismatch, SeverityError},
		{"Truncated", dataset.Character("FEMALE"), 2, CodeValueTruncated, SeverityWarning},
		{"NotEncodable", dataset.Character("日本"), 0, CodeValueNotEncodable, SeverityError},
		{"BadMissing", dataset.Missing(format.MissingValue(40)), 1, CodeInvalidMissing, SeverityError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := demographics(t)
			ds.Rows[1][tt.column] = tt.value

			r := Validate(ds, format.V5, ModeStandard)

			require.Len(t, r.Findings, 1, r.Findings)
			f := r.Findings[0]
			assert.Equal(t, tt.code, f.Code)
			assert.Equal(t, tt.severity, f.Severity)
			assert.Equal(t, 2, f.Row)
			assert.Equal(t, ds.Columns[tt.column].Name, f.Column)
		})
	}
}

func TestValidate_RowWidth(t *testing.T) {
	ds := demographics(t)
	ds.Rows = append(ds.Rows, dataset.Row{dataset.Character("STUDY1-003")})

	r := Validate(ds, format.V5, ModeStandard)

	require.True(t, r.Has(CodeRowWidthMismatch))
	assert.Equal(t, 3, r.Errors()[0].Row)
}

func TestValidate_AutoSizedColumn(t *testing.T) {
	ds := dataset.New("AE", dataset.CharacterColumn("AETERM", "Reported Term", 0))
	require.NoError(t, ds.AddRow(dataset.Character("HEADACHE")))

	r := Validate(ds, format.V5, ModeStandard)
	require.Empty(t, r.Findings)

	member := ds.Member
	streaming := CheckMember(&member, Target{Version: format.V5, RequireLengths: true}, ModeStandard)
	require.True(t, streaming.Has(CodeInvalidLength))
}

func TestValidate_LabelsAndFormats(t *testing.T) {
	ds := demographics(t)
	ds.Columns[0].Label = strings.Repeat("x", 200)
	ds.Columns[1] = ds.Columns[1].WithFormat(dataset.MustParseFormat("E8601DATETIME20."))

	v8 := Validate(ds, format.V8, ModeStandard)
	assert.False(t, v8.HasErrors(), v8.Findings)

	v5 := Validate(ds, format.V5, ModeStandard)
	assert.True(t, v5.Has(CodeLabelTooLong))
	assert.True(t, v5.Has(CodeFormatNameTooLong))
}

func TestValidate_NameSyntax(t *testing.T) {
	ds := demographics(t)
	ds.Columns[2].Name = "1SEX"

	std := Validate(ds, format.V5, ModeStandard)
	require.False(t, std.HasErrors())
	require.Len(t, std.Warnings(), 1)
	assert.Equal(t, CodeColumnNameSyntax, std.Warnings()[0].Code)

	fda := Validate(ds, format.V5, ModeFDA)
	require.True(t, fda.Has(CodeColumnNameSyntax))
	require.True(t, fda.HasErrors())
}

func TestIsValidName(t *testing.T) {
	for _, name := range []string{"A", "_X", "USUBJID", "var_1", "AE2"} {
		assert.True(t, IsValidName(name), name)
	}
	for _, name := range []string{"", "1A", "A-B", "A B", "é"} {
		assert.False(t, IsValidName(name), name)
	}
}

func TestIsBuiltinFormat(t *testing.T) {
	for _, name := range []string{"", "DATE", "date", "$CHAR", "BEST", "E8601DA", "YYMMDD"} {
		assert.True(t, IsBuiltinFormat(name), name)
	}
	for _, name := range []string{"$SEXF", "AGEGRP", "YESNO"} {
		assert.False(t, IsBuiltinFormat(name), name)
	}
}

func TestFinding_String(t *testing.T) {
	f := Finding{Code: CodeValueTruncated, Severity: SeverityWarning, Message: "too long", Column: "SEX", Row: 4}
	assert.Equal(t, "[VALUE_TRUNCATED] too long (column SEX, row 4)", f.String())

	f = Finding{Code: CodeRowWidthMismatch, Severity: SeverityError, Message: "short row", Row: 2}
	assert.Equal(t, "[ROW_WIDTH_MISMATCH] short row (row 2)", f.String())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("FDA")
	require.NoError(t, err)
	assert.Equal(t, ModeFDA, m)

	m, err = ParseMode("standard")
	require.NoError(t, err)
	assert.Equal(t, ModeStandard, m)

	_, err = ParseMode("strict")
	require.Error(t, err)
}
