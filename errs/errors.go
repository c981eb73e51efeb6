// Package errs defines the error values returned by the xport packages.
//
// Structural errors are sentinel values that callers match with errors.Is. Most call
// sites wrap them with additional context using fmt.Errorf and the %w verb.
// Validation failures are reported as a *ValidationError that carries every finding
// collected by the validator and matches ErrValidationFailed.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound is returned when the input path does not exist.
	ErrFileNotFound = errors.New("xport: file not found")
	// ErrInvalidHeaderSignature is returned when a header record does not carry the expected literal.
	ErrInvalidHeaderSignature = errors.New("xport: invalid header signature")
	// ErrUnsupportedVersion is returned for transport versions other than V5 and V8.
	ErrUnsupportedVersion = errors.New("xport: unsupported transport version")
	// ErrFieldTooLong is returned when a name, label or length exceeds the version limit.
	ErrFieldTooLong = errors.New("xport: field too long")
	// ErrValidationFailed is matched by *ValidationError.
	ErrValidationFailed = errors.New("xport: validation failed")
	// ErrTruncatedRecord is returned when the input ends inside a record.
	ErrTruncatedRecord = errors.New("xport: truncated record")
	// ErrInvalidNamestr is returned for inconsistent variable descriptor records.
	ErrInvalidNamestr = errors.New("xport: invalid namestr record")
	// ErrInvalidRecordSize is returned when a record buffer is not of the expected size.
	ErrInvalidRecordSize = errors.New("xport: invalid record size")
	// ErrNumericOverflow is returned for values outside the IBM floating point range.
	ErrNumericOverflow = errors.New("xport: numeric value out of IBM range")
	// ErrNotANumber is returned when NaN is passed to the IBM encoder.
	ErrNotANumber = errors.New("xport: NaN is not representable")
	// ErrRowWidthMismatch is returned when a row does not have one value per column.
	ErrRowWidthMismatch = errors.New("xport: row width does not match column count")
	// ErrTypeMismatch is returned when a value type does not match its column type.
	ErrTypeMismatch = errors.New("xport: value type does not match column type")
	// ErrNotEncodable is returned when text cannot be represented in the selected charset.
	ErrNotEncodable = errors.New("xport: text not representable in charset")
	// ErrWriterFinished is returned when a writer is used after Finish.
	ErrWriterFinished = errors.New("xport: writer already finished")
	// ErrHeaderNotWritten is returned when rows are written before the header.
	ErrHeaderNotWritten = errors.New("xport: header not written")
	// ErrUnsupportedCompression is returned for unknown compression types.
	ErrUnsupportedCompression = errors.New("xport: unsupported compression type")
	// ErrInvalidName is returned when a dataset or column name is empty.
	ErrInvalidName = errors.New("xport: invalid name")
	// ErrDuplicateName is returned when two columns share a name, compared case-insensitively.
	ErrDuplicateName = errors.New("xport: duplicate name")
	// ErrNoMoreMembers is returned by NextMember when the library has no further members.
	ErrNoMoreMembers = errors.New("xport: no more members")
	// ErrReaderClosed is reported by a reader that was closed during iteration.
	ErrReaderClosed = errors.New("xport: reader closed")
)

// Finding is the minimal view of a validation finding needed to format errors.
// validate.Finding implements it.
type Finding interface {
	IsError() bool
	String() string
}

// ValidationError reports every finding collected by a failed validation.
type ValidationError struct {
	Findings []Finding
}

// NewValidationError creates a ValidationError from the given findings.
func NewValidationError(findings []Finding) *ValidationError {
	return &ValidationError{Findings: findings}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var errCount int
	for _, f := range e.Findings {
		if f.IsError() {
			errCount++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d error(s)", ErrValidationFailed.Error(), errCount)
	for _, f := range e.Findings {
		if f.IsError() {
			sb.WriteString("; ")
			sb.WriteString(f.String())
		}
	}

	return sb.String()
}

// Is makes errors.Is(err, ErrValidationFailed) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
