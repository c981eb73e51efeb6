package validate

import (
	"errors"
	"math"

	"github.com/arloliu/xport/dataset"
	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/internal/collision"
	"github.com/arloliu/xport/section"
)

// Target describes the file a dataset is about to be written to.
type Target struct {
	Version     format.Version
	Charset     format.Charset         // zero means CharsetASCII
	Compression format.CompressionType // zero means CompressionNone
	Members     int                    // members in the file, zero means one
	Parts       int                    // files the dataset is split across, zero means one

	// RequireLengths rejects character columns of Length 0. The streaming writer
	// sets it because it cannot size columns from data it has not seen.
	RequireLengths bool
}

func (t Target) encoder() encoding.TextEncoder {
	return encoding.NewTextEncoder(t.Charset)
}

// Validate checks a dataset, including every row, for a single-member file of the
// given version.
func Validate(ds *dataset.Dataset, v format.Version, mode Mode) Result {
	return Check(ds, Target{Version: v}, mode)
}

// Check checks a dataset, including every row, against a target.
//
// Character columns of Length 0 are sized from the data first, the way the batch
// writer sizes them, so truncation warnings reflect the bytes that will be written.
func Check(ds *dataset.Dataset, t Target, mode Mode) Result {
	member := ds.Member
	member.Columns = section.ResolveColumns(ds.Columns, ds.Rows, t.Version, t.encoder())

	r := CheckMember(&member, t, mode)

	rc := NewRowChecker(member.Columns, t, mode)
	for i, row := range ds.Rows {
		rc.checkInto(&r, i+1, row)
	}

	return r
}

// CheckMember checks dataset metadata without looking at rows.
func CheckMember(m *dataset.Member, t Target, mode Mode) Result {
	var r Result

	limits := t.Version.Limits()
	enc := t.encoder()
	fda := mode == ModeFDA

	if !t.Version.IsValid() {
		r.add(CodeUnsupportedVersion, SeverityError, "", 0, "unsupported transport version %s", t.Version)
	}

	checkDataset(&r, m, limits, enc, fda)
	if fda {
		checkFDATarget(&r, m, t)
	}

	if len(m.Columns) == 0 {
		r.add(CodeNoColumns, SeverityWarning, "", 0, "dataset %s has no columns", m.Name)
	}
	if len(m.Columns) > limits.VariableCount {
		r.add(CodeTooManyColumns, SeverityError, "", 0,
			"dataset has %d columns, limit is %d", len(m.Columns), limits.VariableCount)
	}

	names := collision.NewTracker()
	recordLength := 0
	for i := range m.Columns {
		c := &m.Columns[i]
		checkColumnName(&r, i, c, names, limits, fda)
		checkColumnLabel(&r, c, limits, enc, fda)
		checkColumnLength(&r, c, limits, t.RequireLengths)
		checkColumnFormats(&r, c, limits, fda)
		recordLength += max(c.Width(), 1)
	}

	if recordLength > limits.RecordLength {
		r.add(CodeRecordTooLong, SeverityError, "", 0,
			"observation length %d exceeds %d bytes", recordLength, limits.RecordLength)
	}

	return r
}

func checkDataset(r *Result, m *dataset.Member, limits format.Limits, enc encoding.TextEncoder, fda bool) {
	switch {
	case m.Name == "":
		r.add(CodeDatasetNameEmpty, SeverityError, "", 0, "dataset name is empty")
	case len(m.Name) > limits.DatasetName:
		r.add(CodeDatasetNameTooLong, SeverityError, "", 0,
			"dataset name %q is %d characters, limit is %d", m.Name, len(m.Name), limits.DatasetName)
	}
	if m.Name != "" && !IsValidName(m.Name) {
		r.add(CodeDatasetNameSyntax, syntaxSeverity(fda), "", 0,
			"dataset name %q is not a valid SAS name", m.Name)
	}

	if n, err := enc.EncodedLen(m.Label); err != nil {
		r.add(CodeLabelNotEncodable, SeverityError, "", 0, "dataset label is not representable in %s", enc.Charset())
	} else if n > limits.DatasetLabel {
		r.add(CodeDatasetLabelTooLong, SeverityError, "", 0,
			"dataset label is %d bytes, limit is %d", n, limits.DatasetLabel)
	}
	if fda && (!isASCII(m.Name) || !isASCII(m.Label)) {
		r.add(CodeFDANonASCII, SeverityError, "", 0, "dataset name and label must be ASCII")
	}
}

func checkFDATarget(r *Result, m *dataset.Member, t Target) {
	if t.Version != format.V5 {
		r.add(CodeFDAVersion, SeverityError, "", 0, "FDA submissions require transport version 5, got %s", t.Version)
	}
	if len(m.Name) > format.V5.Limits().DatasetName {
		r.add(CodeFDADatasetName, SeverityError, "", 0, "FDA dataset names are limited to 8 characters")
	}
	if t.Charset == format.CharsetUTF8 {
		r.add(CodeFDACharset, SeverityError, "", 0, "FDA submissions require ASCII text, got %s", t.Charset)
	}
	if t.Members > 1 {
		r.add(CodeFDAMultipleFiles, SeverityError, "", 0, "FDA files hold exactly one dataset, got %d", t.Members)
	}
	if t.Parts > 1 {
		r.add(CodeFDASplitFile, SeverityError, "", 0, "dataset is split across %d files", t.Parts)
	}
	if t.Compression != 0 && t.Compression != format.CompressionNone {
		r.add(CodeFDACompression, SeverityError, "", 0, "FDA files must not be compressed, got %s", t.Compression)
	}
}

func checkColumnName(r *Result, idx int, c *dataset.Column, names *collision.Tracker, limits format.Limits, fda bool) {
	if c.Type != format.Numeric && c.Type != format.Character {
		r.add(CodeInvalidType, SeverityError, c.Name, 0, "unknown column type %d", c.Type)
	}

	switch err := names.Track(c.Name); {
	case errors.Is(err, errs.ErrInvalidName):
		r.add(CodeColumnNameEmpty, SeverityError, "", 0, "column %d has an empty name", idx+1)
		return
	case errors.Is(err, errs.ErrDuplicateName):
		r.add(CodeDuplicateColumn, SeverityError, c.Name, 0, "column name %q is used more than once", c.Name)
	}

	if len(c.Name) > limits.VariableName {
		r.add(CodeColumnNameTooLong, SeverityError, c.Name, 0,
			"column name is %d characters, limit is %d", len(c.Name), limits.VariableName)
	}
	if !IsValidName(c.Name) {
		r.add(CodeColumnNameSyntax, syntaxSeverity(fda), c.Name, 0, "%q is not a valid SAS name", c.Name)
	}
}

func checkColumnLabel(r *Result, c *dataset.Column, limits format.Limits, enc encoding.TextEncoder, fda bool) {
	n, err := enc.EncodedLen(c.Label)
	if err != nil {
		r.add(CodeLabelNotEncodable, SeverityError, c.Name, 0, "label is not representable in %s", enc.Charset())
	} else if n > limits.VariableLabel {
		r.add(CodeLabelTooLong, SeverityError, c.Name, 0,
			"label is %d bytes, limit is %d", n, limits.VariableLabel)
	}
	if fda && !isASCII(c.Label) {
		r.add(CodeFDANonASCII, SeverityError, c.Name, 0, "label must be ASCII")
	}
}

func checkColumnLength(r *Result, c *dataset.Column, limits format.Limits, requireLengths bool) {
	if c.Type == format.Numeric {
		if c.Length != 0 && (c.Length < 2 || c.Length > dataset.NumericLength) {
			r.add(CodeInvalidLength, SeverityWarning, c.Name, 0,
				"numeric length %d is written as %d", c.Length, dataset.NumericLength)
		}

		return
	}

	switch {
	case c.Length < 0 || (c.Length == 0 && requireLengths):
		r.add(CodeInvalidLength, SeverityError, c.Name, 0, "character length must be at least 1, got %d", c.Length)
	case c.Length > limits.CharacterLength:
		r.add(CodeLengthTooLong, SeverityError, c.Name, 0,
			"character length %d exceeds %d", c.Length, limits.CharacterLength)
	}
}

func checkColumnFormats(r *Result, c *dataset.Column, limits format.Limits, fda bool) {
	for _, f := range []struct {
		kind string
		spec dataset.FormatSpec
	}{{"format", c.Format}, {"informat", c.Informat}} {
		if f.spec.IsZero() {
			continue
		}

		if len(f.spec.Name) > limits.FormatName {
			r.add(CodeFormatNameTooLong, SeverityError, c.Name, 0,
				"%s name %q exceeds %d characters", f.kind, f.spec.Name, limits.FormatName)
		}
		if f.spec.Name != "" && f.spec.IsCharacter() != (c.Type == format.Character) {
			r.add(CodeFormatTypeMismatch, SeverityWarning, c.Name, 0,
				"%s %s does not match a %s column", f.kind, f.spec, c.Type)
		}
		if fda && !IsBuiltinFormat(f.spec.Name) {
			r.add(CodeFDACustomFormat, SeverityError, c.Name, 0,
				"%s %s is not a built-in SAS %s", f.kind, f.spec, f.kind)
		}
	}
}

// RowChecker checks rows against resolved column metadata.
type RowChecker struct {
	columns []dataset.Column
	enc     encoding.TextEncoder
	fda     bool
}

// NewRowChecker creates a RowChecker. Columns must carry their final lengths.
func NewRowChecker(columns []dataset.Column, t Target, mode Mode) *RowChecker {
	return &RowChecker{columns: columns, enc: t.encoder(), fda: mode == ModeFDA}
}

// Check returns the findings of one row. rowNum is 1-based and only used in findings.
func (c *RowChecker) Check(rowNum int, row dataset.Row) Result {
	var r Result
	c.checkInto(&r, rowNum, row)

	return r
}

func (c *RowChecker) checkInto(r *Result, rowNum int, row dataset.Row) {
	if len(row) != len(c.columns) {
		r.add(CodeRowWidthMismatch, SeverityError, "", rowNum,
			"row has %d values for %d columns", len(row), len(c.columns))

		return
	}

	for j, v := range row {
		col := &c.columns[j]
		switch v.Kind() {
		case dataset.KindMissing:
			if m, _ := v.MissingValue(); !m.IsValid() {
				r.add(CodeInvalidMissing, SeverityError, col.Name, rowNum, "unknown missing value code %d", m)
			}
		case dataset.KindNumeric:
			c.checkNumeric(r, col, rowNum, v)
		case dataset.KindCharacter:
			c.checkCharacter(r, col, rowNum, v)
		}
	}
}

func (c *RowChecker) checkNumeric(r *Result, col *dataset.Column, rowNum int, v dataset.Value) {
	if col.Type != format.Numeric {
		r.add(CodeTypeMismatch, SeverityError, col.Name, rowNum, "numeric value in character column")
		return
	}

	x, _ := v.Float()
	switch {
	case math.IsNaN(x):
		r.add(CodeNumericNaN, SeverityWarning, col.Name, rowNum, "NaN is written as the standard missing value")
	case math.Abs(x) > encoding.MaxIBM:
		r.add(CodeNumericOutOfRange, SeverityError, col.Name, rowNum, "%g is outside the IBM floating point range", x)
	}
}

func (c *RowChecker) checkCharacter(r *Result, col *dataset.Column, rowNum int, v dataset.Value) {
	if col.Type != format.Character {
		r.add(CodeTypeMismatch, SeverityError, col.Name, rowNum, "character value in numeric column")
		return
	}

	s, _ := v.Str()
	n, err := c.enc.EncodedLen(s)
	if err != nil {
		r.add(CodeValueNotEncodable, SeverityError, col.Name, rowNum, "value is not representable in %s", c.enc.Charset())
		return
	}
	if c.fda && !isASCII(s) {
		r.add(CodeFDANonASCII, SeverityError, col.Name, rowNum, "value must be ASCII")
	}
	if n > col.Length {
		r.add(CodeValueTruncated, SeverityWarning, col.Name, rowNum,
			"value of %d bytes is truncated to %d", n, col.Length)
	}
}

// IsValidName reports whether s is a SAS name: an ASCII letter or underscore
// followed by letters, digits and underscores.
func IsValidName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '_', ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z':
		case ch >= '0' && ch <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}

func syntaxSeverity(fda bool) Severity {
	if fda {
		return SeverityError
	}

	return SeverityWarning
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
