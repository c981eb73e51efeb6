package section

import (
	"fmt"
	"time"

	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

// Default values of the software identification fields.
const (
	DefaultSASVersion = "9.4"
	DefaultOS         = "X64_10PR"
)

const (
	librarySymbols = "SAS     SAS     SASLIB  "
	memberSymbol   = "SAS     "
	memberDataTag  = "SASDATA "
	versionWidth   = 8
	osWidth        = 8
	reservedWidth  = 24
)

// LibraryHeader represents the three records that open every transport file.
//
// Layout:
//
//	Record 1: HEADER RECORD*******LIBRARY HEADER RECORD!!!!!!!000...000 (LIBV8 for V8)
//	Record 2: SAS     SAS     SASLIB  | version(8) | OS(8) | 24 blanks | created(16)
//	Record 3: modified(16) | 64 blanks
type LibraryHeader struct {
	Version    format.Version
	SASVersion string
	OS         string
	Created    time.Time
	Modified   time.Time
}

// NewLibraryHeader creates a LibraryHeader with default software fields.
func NewLibraryHeader(v format.Version, created time.Time) *LibraryHeader {
	return &LibraryHeader{
		Version:    v,
		SASVersion: DefaultSASVersion,
		OS:         DefaultOS,
		Created:    created,
		Modified:   created,
	}
}

// Bytes serializes the LibraryHeader into LibraryHeaderSize bytes.
func (h *LibraryHeader) Bytes() []byte {
	b := make([]byte, 0, LibraryHeaderSize)

	b = appendHeaderRecord(b, libraryKind(h.Version), zeroTail)

	b = append(b, librarySymbols...)
	b = appendField(b, h.SASVersion, versionWidth)
	b = appendField(b, h.OS, osWidth)
	b = appendField(b, "", reservedWidth)
	b = appendField(b, FormatTimestamp(h.Created), TimestampSize)

	b = appendField(b, FormatTimestamp(h.Modified), TimestampSize)
	b = appendField(b, "", RecordSize-TimestampSize)

	return b
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly LibraryHeaderSize bytes)
//
// Returns:
//   - error: ErrInvalidRecordSize, ErrInvalidHeaderSignature for a foreign file
func (h *LibraryHeader) Parse(data []byte) error {
	if len(data) != LibraryHeaderSize {
		return errs.ErrInvalidRecordSize
	}

	kind, ok := HeaderKind(data[:RecordSize])
	if !ok {
		return fmt.Errorf("%w: not a SAS transport file", errs.ErrInvalidHeaderSignature)
	}

	switch kind {
	case KindLibrary:
		h.Version = format.V5
	case KindLibraryV8:
		h.Version = format.V8
	default:
		return fmt.Errorf("%w: unexpected %q header", errs.ErrUnsupportedVersion, kind)
	}

	rec := data[RecordSize : 2*RecordSize]
	if string(rec[:len(librarySymbols)]) != librarySymbols {
		return fmt.Errorf("%w: library record", errs.ErrInvalidHeaderSignature)
	}

	off := len(librarySymbols)
	h.SASVersion = field(rec, off, versionWidth)
	off += versionWidth
	h.OS = field(rec, off, osWidth)
	off += osWidth + reservedWidth

	created, err := ParseTimestamp(string(rec[off : off+TimestampSize]))
	if err != nil {
		return err
	}
	h.Created = created

	modified, err := ParseTimestamp(string(data[2*RecordSize : 2*RecordSize+TimestampSize]))
	if err != nil {
		return err
	}
	h.Modified = modified

	return nil
}

// ParseLibraryHeader parses a LibraryHeader from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be at least LibraryHeaderSize bytes)
//
// Returns:
//   - LibraryHeader: Parsed header struct
//   - error: ErrTruncatedRecord or signature errors
func ParseLibraryHeader(data []byte) (LibraryHeader, error) {
	if len(data) < LibraryHeaderSize {
		return LibraryHeader{}, errs.ErrTruncatedRecord
	}

	h := LibraryHeader{}
	if err := h.Parse(data[:LibraryHeaderSize]); err != nil {
		return LibraryHeader{}, err
	}

	return h, nil
}
