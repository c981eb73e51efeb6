package encoding

import (
	"github.com/arloliu/xport/format"
)

// missingMarkers maps each missing value code to the byte stored in position 0 of
// the numeric field. Bytes 1..7 of a missing value are always zero.
var missingMarkers = [format.MissingValueCount]byte{
	format.MissingStandard:   '.',
	format.MissingUnderscore: '_',
	format.MissingA:          'A',
	format.MissingB:          'B',
	format.MissingC:          'C',
	format.MissingD:          'D',
	format.MissingE:          'E',
	format.MissingF:          'F',
	format.MissingG:          'G',
	format.MissingH:          'H',
	format.MissingI:          'I',
	format.MissingJ:          'J',
	format.MissingK:          'K',
	format.MissingL:          'L',
	format.MissingM:          'M',
	format.MissingN:          'N',
	format.MissingO:          'O',
	format.MissingP:          'P',
	format.MissingQ:          'Q',
	format.MissingR:          'R',
	format.MissingS:          'S',
	format.MissingT:          'T',
	format.MissingU:          'U',
	format.MissingV:          'V',
	format.MissingW:          'W',
	format.MissingX:          'X',
	format.MissingY:          'Y',
	format.MissingZ:          'Z',
}

// noMissing marks bytes of markerIndex that are not a missing value marker.
const noMissing = 0xFF

// markerIndex is the reverse of missingMarkers, built once at init and never mutated.
var markerIndex = func() [256]uint8 {
	var idx [256]uint8
	for i := range idx {
		idx[i] = noMissing
	}
	for m, b := range missingMarkers {
		idx[b] = uint8(m)
	}

	return idx
}()

// MissingMarker returns the first-byte marker of a missing value code.
func MissingMarker(m format.MissingValue) byte {
	if !m.IsValid() {
		return missingMarkers[format.MissingStandard]
	}

	return missingMarkers[m]
}

// EncodeMissing returns the 8-byte numeric pattern of a missing value.
// Invalid codes encode as the standard missing value.
func EncodeMissing(m format.MissingValue) [8]byte {
	var out [8]byte
	out[0] = MissingMarker(m)

	return out
}

// IsMissing reports whether a numeric field holds one of the 28 missing patterns.
// Short numeric fields (2..7 bytes) are checked the same way.
func IsMissing(field []byte) (format.MissingValue, bool) {
	if len(field) == 0 {
		return 0, false
	}

	m := markerIndex[field[0]]
	if m == noMissing {
		return 0, false
	}

	for _, b := range field[1:] {
		if b != 0 {
			return 0, false
		}
	}

	return format.MissingValue(m), true
}

// DecodeNumeric decodes a numeric field of length 2..8.
//
// Missing patterns are recognized before the IBM conversion, so a missing value is
// never conflated with a real number.
//
// Returns:
//   - float64: The decoded value (0 when missing)
//   - format.MissingValue: The missing code, valid only when missing is true
//   - bool: Whether the field holds a missing value
//   - error: ErrInvalidRecordSize for fields shorter than 2 bytes
func DecodeNumeric(field []byte) (float64, format.MissingValue, bool, error) {
	if m, ok := IsMissing(field); ok {
		return 0, m, true, nil
	}

	if len(field) == NumericWidth {
		return DecodeIBM([8]byte(field)), 0, false, nil
	}

	b, err := DecodeIBMShort(field)
	if err != nil {
		return 0, 0, false, err
	}

	return DecodeIBM(b), 0, false, nil
}
