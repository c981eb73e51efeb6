package format

type (
	Version         uint8
	ColumnType      uint8
	CompressionType uint8
	Charset         uint8
	Justification   uint8
)

const (
	V5 Version = 0x5 // V5 represents the SAS Transport version 5 layout.
	V8 Version = 0x8 // V8 represents the SAS Transport version 8 layout (long names and labels).

	Numeric   ColumnType = 0x1 // Numeric is the NTYPE code of numeric variables.
	Character ColumnType = 0x2 // Character is the NTYPE code of character variables.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	CharsetASCII  Charset = 0x1 // CharsetASCII encodes 7-bit ASCII only; high bytes decode as ISO-8859-1.
	CharsetLatin1 Charset = 0x2 // CharsetLatin1 encodes ISO-8859-1 (extended ASCII).
	CharsetUTF8   Charset = 0x3 // CharsetUTF8 stores UTF-8 bytes unchanged.

	JustifyLeft  Justification = 0x0 // JustifyLeft is the NFJ code for left justification.
	JustifyRight Justification = 0x1 // JustifyRight is the NFJ code for right justification.
)

// Limits groups the field-width limits of one transport version.
type Limits struct {
	DatasetName     int
	DatasetLabel    int
	VariableName    int
	VariableLabel   int
	FormatName      int
	CharacterLength int
	RecordLength    int
	VariableCount   int
}

var (
	v5Limits = Limits{
		DatasetName:     8,
		DatasetLabel:    40,
		VariableName:    8,
		VariableLabel:   40,
		FormatName:      8,
		CharacterLength: 200,
		RecordLength:    8192,
		VariableCount:   9999,
	}
	v8Limits = Limits{
		DatasetName:     32,
		DatasetLabel:    40,
		VariableName:    32,
		VariableLabel:   256,
		FormatName:      32,
		CharacterLength: 32767,
		RecordLength:    131072,
		VariableCount:   9999,
	}
)

// Limits returns the field-width limits of the version.
// Unknown versions get the stricter V5 limits.
func (v Version) Limits() Limits {
	if v == V8 {
		return v8Limits
	}

	return v5Limits
}

// IsValid reports whether v is a supported transport version.
func (v Version) IsValid() bool {
	return v == V5 || v == V8
}

func (v Version) String() string {
	switch v {
	case V5:
		return "V5"
	case V8:
		return "V8"
	default:
		return "Unknown"
	}
}

func (t ColumnType) String() string {
	switch t {
	case Numeric:
		return "Numeric"
	case Character:
		return "Character"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (c Charset) String() string {
	switch c {
	case CharsetASCII:
		return "ASCII"
	case CharsetLatin1:
		return "Latin1"
	case CharsetUTF8:
		return "UTF8"
	default:
		return "Unknown"
	}
}
