package section

import (
	"bytes"

	"github.com/arloliu/xport/format"
)

// offset and section sizes in the transport file
const (
	RecordSize        = 80             // every physical record is 80 bytes
	NamestrSize       = 140            // namestr size written by all modern hosts
	NamestrSizeVAX    = 136            // namestr size written by VAX/VMS hosts
	LibraryHeaderSize = 3 * RecordSize // header record, real header, modified record
	MemberHeaderSize  = 4 * RecordSize // member and descriptor headers, two member records
	TimestampSize     = 16             // ddMMMyy:hh:mm:ss
	LabelEntrySizeV8  = 6              // varnum, name length, label length
	LabelEntrySizeV9  = 10             // LabelEntrySizeV8 plus format and informat lengths
)

// header record framing: prefix, 8-byte kind, suffix, 32-byte tail
const (
	headerPrefix     = "HEADER RECORD*******"
	headerSuffix     = "HEADER RECORD!!!!!!!"
	headerKindOffset = len(headerPrefix)
	headerKindSize   = 8
	headerTailOffset = headerKindOffset + headerKindSize + len(headerSuffix)
	headerTailSize   = RecordSize - headerTailOffset
	zeroTail         = "000000000000000000000000000000  "
)

// Kind identifies a header record by the 8-byte tag between its fixed literals.
type Kind string

const (
	KindLibrary      Kind = "LIBRARY "
	KindLibraryV8    Kind = "LIBV8   "
	KindMember       Kind = "MEMBER  "
	KindMemberV8     Kind = "MEMBV8  "
	KindDescriptor   Kind = "DSCRPTR "
	KindDescriptorV8 Kind = "DSCPTV8 "
	KindNamestr      Kind = "NAMESTR "
	KindNamestrV8    Kind = "NAMSTV8 "
	KindLabelV8      Kind = "LABELV8 "
	KindLabelV9      Kind = "LABELV9 "
	KindObs          Kind = "OBS     "
	KindObsV8        Kind = "OBSV8   "
)

// IsMember reports whether k starts a new member.
func (k Kind) IsMember() bool {
	return k == KindMember || k == KindMemberV8
}

// libraryKind and the helpers below return the header kind of each section for a version.
func libraryKind(v format.Version) Kind {
	if v == format.V8 {
		return KindLibraryV8
	}

	return KindLibrary
}

func memberKind(v format.Version) Kind {
	if v == format.V8 {
		return KindMemberV8
	}

	return KindMember
}

func descriptorKind(v format.Version) Kind {
	if v == format.V8 {
		return KindDescriptorV8
	}

	return KindDescriptor
}

func namestrKind(v format.Version) Kind {
	if v == format.V8 {
		return KindNamestrV8
	}

	return KindNamestr
}

func obsKind(v format.Version) Kind {
	if v == format.V8 {
		return KindObsV8
	}

	return KindObs
}

// HeaderKind returns the kind of a header record.
// ok is false when rec is not an 80-byte record framed by the header literals.
func HeaderKind(rec []byte) (Kind, bool) {
	if len(rec) < RecordSize {
		return "", false
	}
	if !bytes.HasPrefix(rec, []byte(headerPrefix)) {
		return "", false
	}
	if string(rec[headerKindOffset+headerKindSize:headerTailOffset]) != headerSuffix {
		return "", false
	}

	return Kind(rec[headerKindOffset : headerKindOffset+headerKindSize]), true
}

// appendHeaderRecord appends a header record of the given kind with a 32-byte tail.
func appendHeaderRecord(dst []byte, kind Kind, tail string) []byte {
	dst = append(dst, headerPrefix...)
	dst = append(dst, kind...)
	dst = append(dst, headerSuffix...)

	return appendField(dst, tail, headerTailSize)
}

// PaddingLen returns the number of blanks that complete an n-byte section to a record boundary.
func PaddingLen(n int64) int {
	return int((RecordSize - n%RecordSize) % RecordSize)
}

// AppendPadding pads dst with blanks so that a section of n bytes ends on a record boundary.
func AppendPadding(dst []byte, n int64) []byte {
	for range PaddingLen(n) {
		dst = append(dst, ' ')
	}

	return dst
}

// appendField appends s truncated or blank-padded to width bytes.
func appendField(dst []byte, s string, width int) []byte {
	if len(s) > width {
		s = s[:width]
	}
	dst = append(dst, s...)
	for i := len(s); i < width; i++ {
		dst = append(dst, ' ')
	}

	return dst
}

// field returns the blank-trimmed text of rec[start:start+width].
func field(rec []byte, start, width int) string {
	return string(bytes.TrimRight(rec[start:start+width], " \x00"))
}
