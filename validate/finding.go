package validate

import (
	"fmt"
	"strings"

	"github.com/arloliu/xport/errs"
)

// Mode selects the rule set.
type Mode uint8

const (
	ModeStandard Mode = 0x1 // ModeStandard checks the hard format constraints of the version.
	ModeFDA      Mode = 0x2 // ModeFDA adds the FDA submission constraints.
)

func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "Standard"
	case ModeFDA:
		return "FDA"
	default:
		return "Unknown"
	}
}

// ParseMode parses "standard" or "fda", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "standard", "std", "":
		return ModeStandard, nil
	case "fda", "fda-compliant":
		return ModeFDA, nil
	default:
		return 0, fmt.Errorf("unknown validation mode %q", s)
	}
}

// Severity classifies a finding.
type Severity uint8

const (
	SeverityError   Severity = 0x1 // SeverityError blocks the write.
	SeverityWarning Severity = 0x2 // SeverityWarning is reported but does not block.
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// Code is the machine-readable identifier of a rule.
type Code string

const (
	CodeDatasetNameEmpty    Code = "DATASET_NAME_EMPTY"
	CodeDatasetNameTooLong  Code = "DATASET_NAME_TOO_LONG"
	CodeDatasetNameSyntax   Code = "DATASET_NAME_SYNTAX"
	CodeDatasetLabelTooLong Code = "DATASET_LABEL_TOO_LONG"
	CodeNoColumns           Code = "NO_COLUMNS"
	CodeTooManyColumns      Code = "TOO_MANY_COLUMNS"
	CodeColumnNameEmpty     Code = "COLUMN_NAME_EMPTY"
	CodeColumnNameTooLong   Code = "COLUMN_NAME_TOO_LONG"
	CodeColumnNameSyntax    Code = "COLUMN_NAME_SYNTAX"
	CodeDuplicateColumn     Code = "DUPLICATE_COLUMN"
	CodeLabelTooLong        Code = "LABEL_TOO_LONG"
	CodeLabelNotEncodable   Code = "LABEL_NOT_ENCODABLE"
	CodeInvalidType         Code = "INVALID_COLUMN_TYPE"
	CodeInvalidLength       Code = "INVALID_LENGTH"
	CodeLengthTooLong       Code = "LENGTH_TOO_LONG"
	CodeFormatNameTooLong   Code = "FORMAT_NAME_TOO_LONG"
	CodeFormatTypeMismatch  Code = "FORMAT_TYPE_MISMATCH"
	CodeRecordTooLong       Code = "RECORD_TOO_LONG"
	CodeRowWidthMismatch    Code = "ROW_WIDTH_MISMATCH"
	CodeTypeMismatch        Code = "TYPE_MISMATCH"
	CodeValueNotEncodable   Code = "VALUE_NOT_ENCODABLE"
	CodeValueTruncated      Code = "VALUE_TRUNCATED"
	CodeNumericOutOfRange   Code = "NUMERIC_OUT_OF_RANGE"
	CodeNumericNaN          Code = "NUMERIC_NAN"
	CodeInvalidMissing      Code = "INVALID_MISSING_VALUE"
	CodeUnsupportedVersion  Code = "UNSUPPORTED_VERSION"

	CodeFDAVersion       Code = "FDA_VERSION"
	CodeFDADatasetName   Code = "FDA_DATASET_NAME"
	CodeFDACharset       Code = "FDA_CHARSET"
	CodeFDANonASCII      Code = "FDA_NON_ASCII"
	CodeFDAMultipleFiles Code = "FDA_MULTIPLE_MEMBERS"
	CodeFDASplitFile     Code = "FDA_SPLIT_FILE"
	CodeFDACompression   Code = "FDA_COMPRESSION"
	CodeFDACustomFormat  Code = "FDA_CUSTOM_FORMAT"
)

// Finding is one rule violation.
//
// Column is empty for dataset-level findings. Row is the 1-based row number for
// value findings and 0 otherwise.
type Finding struct {
	Code     Code
	Severity Severity
	Message  string
	Column   string
	Row      int
}

// IsError reports whether the finding blocks a write.
func (f Finding) IsError() bool {
	return f.Severity == SeverityError
}

// String renders the finding on one line.
func (f Finding) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", f.Code, f.Message)
	if f.Column != "" {
		fmt.Fprintf(&sb, " (column %s", f.Column)
		if f.Row > 0 {
			fmt.Fprintf(&sb, ", row %d", f.Row)
		}
		sb.WriteByte(')')
	} else if f.Row > 0 {
		fmt.Fprintf(&sb, " (row %d)", f.Row)
	}

	return sb.String()
}

// Result holds every finding of a validation run in discovery order.
type Result struct {
	Findings []Finding
}

// Errors returns the error-level findings.
func (r Result) Errors() []Finding {
	return r.filter(SeverityError)
}

// Warnings returns the warning-level findings.
func (r Result) Warnings() []Finding {
	return r.filter(SeverityWarning)
}

// HasErrors reports whether any finding blocks a write.
func (r Result) HasErrors() bool {
	for _, f := range r.Findings {
		if f.IsError() {
			return true
		}
	}

	return false
}

// Has reports whether a finding with the given code exists.
func (r Result) Has(code Code) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}

	return false
}

// Err returns a *errs.ValidationError when the result has errors, nil otherwise.
// The error matches errs.ErrValidationFailed.
func (r Result) Err() error {
	if !r.HasErrors() {
		return nil
	}

	findings := make([]errs.Finding, len(r.Findings))
	for i, f := range r.Findings {
		findings[i] = f
	}

	return errs.NewValidationError(findings)
}

// Merge appends the findings of o.
func (r *Result) Merge(o Result) {
	r.Findings = append(r.Findings, o.Findings...)
}

func (r Result) filter(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}

	return out
}

func (r *Result) add(code Code, sev Severity, column string, row int, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Column:   column,
		Row:      row,
	})
}
