package format

// MissingValue identifies one of the 28 SAS numeric missing value codes.
//
// The zero value is the standard missing value ".".
type MissingValue uint8

const (
	MissingStandard   MissingValue = iota // .
	MissingUnderscore                     // ._
	MissingA                              // .A
	MissingB
	MissingC
	MissingD
	MissingE
	MissingF
	MissingG
	MissingH
	MissingI
	MissingJ
	MissingK
	MissingL
	MissingM
	MissingN
	MissingO
	MissingP
	MissingQ
	MissingR
	MissingS
	MissingT
	MissingU
	MissingV
	MissingW
	MissingX
	MissingY
	MissingZ // .Z
)

// MissingValueCount is the number of distinct missing value codes.
const MissingValueCount = 28

// SpecialMissing returns the special missing value .A through .Z for letter.
// Lower-case letters are accepted. ok is false for any other rune.
func SpecialMissing(letter rune) (MissingValue, bool) {
	switch {
	case letter >= 'A' && letter <= 'Z':
		return MissingA + MissingValue(letter-'A'), true
	case letter >= 'a' && letter <= 'z':
		return MissingA + MissingValue(letter-'a'), true
	default:
		return 0, false
	}
}

// IsValid reports whether m is one of the 28 defined codes.
func (m MissingValue) IsValid() bool {
	return m < MissingValueCount
}

// Letter returns the special missing letter, '_' for MissingUnderscore and 0 for MissingStandard.
func (m MissingValue) Letter() byte {
	switch {
	case m == MissingStandard:
		return 0
	case m == MissingUnderscore:
		return '_'
	case m.IsValid():
		return 'A' + byte(m-MissingA)
	default:
		return 0
	}
}

// String returns the SAS notation of the missing value: ".", "._" or ".A" to ".Z".
func (m MissingValue) String() string {
	if !m.IsValid() {
		return "Unknown"
	}
	if m == MissingStandard {
		return "."
	}

	return "." + string(m.Letter())
}
