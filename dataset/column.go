package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/xport/format"
)

// NumericLength is the byte width of every numeric column written by xport.
const NumericLength = 8

// FormatSpec is a SAS format or informat reference such as DATE9. or 8.2.
type FormatSpec struct {
	Name     string
	Width    int
	Decimals int
}

// ParseFormat parses the SAS notation NAMEw.d, where the name, width and decimals are
// each optional: "DATE9.", "8.2", "$CHAR20.", "BEST." and "E8601DA10." are all valid.
// An empty string yields the zero FormatSpec.
func ParseFormat(s string) (FormatSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FormatSpec{}, nil
	}

	head, decimals, hasDot := strings.Cut(s, ".")

	// width is the run of digits closing the head; the name keeps inner digits (E8601DA)
	i := len(head)
	for i > 0 && head[i-1] >= '0' && head[i-1] <= '9' {
		i--
	}
	spec := FormatSpec{Name: strings.ToUpper(head[:i])}

	if i < len(head) {
		w, err := strconv.Atoi(head[i:])
		if err != nil {
			return FormatSpec{}, fmt.Errorf("invalid format width in %q: %w", s, err)
		}
		spec.Width = w
	}

	if hasDot && decimals != "" {
		d, err := strconv.Atoi(decimals)
		if err != nil {
			return FormatSpec{}, fmt.Errorf("invalid format decimals in %q: %w", s, err)
		}
		spec.Decimals = d
	}

	return spec, nil
}

// MustParseFormat is like ParseFormat but panics on error.
func MustParseFormat(s string) FormatSpec {
	f, err := ParseFormat(s)
	if err != nil {
		panic(err)
	}

	return f
}

// IsZero reports whether f references no format.
func (f FormatSpec) IsZero() bool {
	return f.Name == "" && f.Width == 0 && f.Decimals == 0
}

// IsCharacter reports whether f is a character format ($ prefix).
func (f FormatSpec) IsCharacter() bool {
	return strings.HasPrefix(f.Name, "$")
}

// String renders f in SAS notation.
func (f FormatSpec) String() string {
	if f.IsZero() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(f.Name)
	if f.Width > 0 {
		sb.WriteString(strconv.Itoa(f.Width))
	}
	sb.WriteByte('.')
	if f.Decimals > 0 {
		sb.WriteString(strconv.Itoa(f.Decimals))
	}

	return sb.String()
}

// Column describes one variable of a dataset.
//
// Position (NPOS) is the byte offset of the column within an observation. Readers
// populate it; writers compute their own layout and never read or modify it.
type Column struct {
	Name     string
	Label    string
	Type     format.ColumnType
	Length   int
	Format   FormatSpec
	Informat FormatSpec
	Justify  format.Justification
	Position int
}

// NumericColumn returns a numeric column.
func NumericColumn(name, label string) Column {
	return Column{Name: name, Label: label, Type: format.Numeric, Length: NumericLength}
}

// CharacterColumn returns a character column of the given byte length.
// A length of 0 lets the batch writer size the column from its longest value.
func CharacterColumn(name, label string, length int) Column {
	return Column{Name: name, Label: label, Type: format.Character, Length: length}
}

// WithFormat returns a copy of c with the given display format.
func (c Column) WithFormat(f FormatSpec) Column {
	c.Format = f
	return c
}

// WithInformat returns a copy of c with the given input format.
func (c Column) WithInformat(f FormatSpec) Column {
	c.Informat = f
	return c
}

// Width returns the byte width of the column in an observation record.
func (c Column) Width() int {
	if c.Type == format.Numeric {
		if c.Length >= 2 && c.Length <= NumericLength {
			return c.Length
		}

		return NumericLength
	}

	return c.Length
}

// IsNumeric reports whether c is a numeric column.
func (c Column) IsNumeric() bool {
	return c.Type == format.Numeric
}
