package section

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

// DefaultMemberType is the member type of ordinary datasets.
const DefaultMemberType = "DATA"

const (
	memberNameWidthV5  = 8
	memberNameWidthV8  = 32
	memberLabelWidth   = 40
	memberTypeWidth    = 8
	memberLabelOffset  = TimestampSize + 16
	namestrSizeOffset  = 74 // position of the 4-digit namestr size in the member header tail
	namestrSizeDigits  = 4
	memberHeaderPrefix = "00000000000000000160000000"
)

// MemberHeader represents the four records that open each member (dataset).
//
// Layout:
//
//	Record 1: HEADER RECORD*******MEMBER  HEADER RECORD!!!!!!!...0140 (MEMBV8 for V8)
//	Record 2: HEADER RECORD*******DSCRPTR HEADER RECORD!!!!!!!000...000 (DSCPTV8 for V8)
//	Record 3: SAS     | name(8) | SASDATA | version(8) | OS(8) | 24 blanks | created(16)
//	          V8: SAS     | name(32) | SASDATA | version(8) | OS(8) | created(16)
//	Record 4: modified(16) | 16 blanks | label(40) | type(8)
type MemberHeader struct {
	Version     format.Version
	NamestrSize int
	Name        string
	Label       string
	Type        string
	SASVersion  string
	OS          string
	Created     time.Time
	Modified    time.Time
}

// NewMemberHeader creates a MemberHeader for a dataset with default software fields.
func NewMemberHeader(v format.Version, name, label string, created time.Time) *MemberHeader {
	return &MemberHeader{
		Version:     v,
		NamestrSize: NamestrSize,
		Name:        name,
		Label:       label,
		Type:        DefaultMemberType,
		SASVersion:  DefaultSASVersion,
		OS:          DefaultOS,
		Created:     created,
		Modified:    created,
	}
}

func memberNameWidth(v format.Version) int {
	if v == format.V8 {
		return memberNameWidthV8
	}

	return memberNameWidthV5
}

// Bytes serializes the MemberHeader into MemberHeaderSize bytes.
//
// Names longer than the version field are truncated; the validator rejects them
// before a write unless validation is bypassed.
//
// Returns:
//   - []byte: Serialized header
//   - error: ErrNotEncodable if the label cannot be represented by enc
func (h *MemberHeader) Bytes(enc encoding.TextEncoder) ([]byte, error) {
	b := make([]byte, 0, MemberHeaderSize)

	size := h.NamestrSize
	if size == 0 {
		size = NamestrSize
	}
	b = appendHeaderRecord(b, memberKind(h.Version), memberHeaderPrefix+fmt.Sprintf("%04d", size)+"  ")
	b = appendHeaderRecord(b, descriptorKind(h.Version), zeroTail)

	b = append(b, memberSymbol...)
	b = appendField(b, h.Name, memberNameWidth(h.Version))
	b = append(b, memberDataTag...)
	b = appendField(b, h.SASVersion, versionWidth)
	b = appendField(b, h.OS, osWidth)
	if h.Version != format.V8 {
		b = appendField(b, "", reservedWidth)
	}
	b = appendField(b, FormatTimestamp(h.Created), TimestampSize)

	b = appendField(b, FormatTimestamp(h.Modified), TimestampSize)
	b = appendField(b, "", 16)
	start := len(b)
	b = b[:start+memberLabelWidth]
	if _, err := enc.Put(b[start:], h.Label); err != nil {
		return nil, err
	}

	memberType := h.Type
	if memberType == "" {
		memberType = DefaultMemberType
	}
	b = appendField(b, memberType, memberTypeWidth)

	return b, nil
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly MemberHeaderSize bytes)
//   - dec: Decoder for the dataset label
//
// Returns:
//   - error: ErrInvalidRecordSize, ErrInvalidHeaderSignature or ErrUnsupportedVersion
func (h *MemberHeader) Parse(data []byte, dec encoding.TextDecoder) error {
	if len(data) != MemberHeaderSize {
		return errs.ErrInvalidRecordSize
	}

	kind, ok := HeaderKind(data[:RecordSize])
	if !ok || !kind.IsMember() {
		return fmt.Errorf("%w: expected member header", errs.ErrInvalidHeaderSignature)
	}
	h.Version = format.V5
	if kind == KindMemberV8 {
		h.Version = format.V8
	}

	sizeField := strings.TrimSpace(string(data[namestrSizeOffset : namestrSizeOffset+namestrSizeDigits]))
	size, err := strconv.Atoi(sizeField)
	if err != nil || (size != NamestrSize && size != NamestrSizeVAX) {
		return fmt.Errorf("%w: namestr size %q", errs.ErrInvalidNamestr, sizeField)
	}
	h.NamestrSize = size

	kind, ok = HeaderKind(data[RecordSize : 2*RecordSize])
	if !ok || kind != descriptorKind(h.Version) {
		return fmt.Errorf("%w: expected descriptor header", errs.ErrInvalidHeaderSignature)
	}

	rec := data[2*RecordSize : 3*RecordSize]
	if string(rec[:len(memberSymbol)]) != memberSymbol {
		return fmt.Errorf("%w: member record", errs.ErrInvalidHeaderSignature)
	}
	off := len(memberSymbol)
	nameWidth := memberNameWidth(h.Version)
	h.Name = field(rec, off, nameWidth)
	off += nameWidth + len(memberDataTag)
	h.SASVersion = field(rec, off, versionWidth)
	off += versionWidth
	h.OS = field(rec, off, osWidth)
	off += osWidth
	if h.Version != format.V8 {
		off += reservedWidth
	}

	created, err := ParseTimestamp(string(rec[off : off+TimestampSize]))
	if err != nil {
		return err
	}
	h.Created = created

	rec = data[3*RecordSize:]
	modified, err := ParseTimestamp(string(rec[:TimestampSize]))
	if err != nil {
		return err
	}
	h.Modified = modified
	h.Label = dec.String(rec[memberLabelOffset : memberLabelOffset+memberLabelWidth])
	h.Type = field(rec, memberLabelOffset+memberLabelWidth, memberTypeWidth)

	return nil
}

// ParseMemberHeader parses a MemberHeader from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be at least MemberHeaderSize bytes)
//   - dec: Decoder for the dataset label
//
// Returns:
//   - MemberHeader: Parsed header struct
//   - error: ErrTruncatedRecord or signature errors
func ParseMemberHeader(data []byte, dec encoding.TextDecoder) (MemberHeader, error) {
	if len(data) < MemberHeaderSize {
		return MemberHeader{}, errs.ErrTruncatedRecord
	}

	h := MemberHeader{}
	if err := h.Parse(data[:MemberHeaderSize], dec); err != nil {
		return MemberHeader{}, err
	}

	return h, nil
}

// NamestrHeader represents the record announcing the variable descriptors.
//
// Layout:
//
//	HEADER RECORD*******NAMESTR HEADER RECORD!!!!!!!000000 | count(4) | 20 zeros | 2 blanks
type NamestrHeader struct {
	Version       format.Version
	VariableCount int
}

const namestrCountOffset = headerTailOffset + 6

// Bytes serializes the NamestrHeader into one record.
func (h NamestrHeader) Bytes() []byte {
	tail := fmt.Sprintf("000000%04d00000000000000000000  ", h.VariableCount)

	return appendHeaderRecord(make([]byte, 0, RecordSize), namestrKind(h.Version), tail)
}

// ParseNamestrHeader parses the namestr header record of the given version.
func ParseNamestrHeader(rec []byte, v format.Version) (NamestrHeader, error) {
	kind, ok := HeaderKind(rec)
	if !ok || kind != namestrKind(v) {
		return NamestrHeader{}, fmt.Errorf("%w: expected namestr header", errs.ErrInvalidHeaderSignature)
	}

	countField := strings.TrimSpace(string(rec[namestrCountOffset : namestrCountOffset+4]))
	count, err := strconv.Atoi(countField)
	if err != nil || count < 0 {
		return NamestrHeader{}, fmt.Errorf("%w: variable count %q", errs.ErrInvalidNamestr, countField)
	}

	return NamestrHeader{Version: v, VariableCount: count}, nil
}
