package dataset

import (
	"strconv"

	"github.com/arloliu/xport/format"
)

// Kind is the discriminant of a Value.
type Kind uint8

const (
	KindMissing   Kind = iota // KindMissing is a missing value of either column type.
	KindNumeric               // KindNumeric is a float64 value.
	KindCharacter             // KindCharacter is a string value.
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "Missing"
	case KindNumeric:
		return "Numeric"
	case KindCharacter:
		return "Character"
	default:
		return "Unknown"
	}
}

// Value is one cell of a row: a number, a string, or a missing value.
//
// The zero Value is the standard missing value ".".
type Value struct {
	num     float64
	str     string
	kind    Kind
	missing format.MissingValue
}

// Numeric returns a numeric value.
func Numeric(v float64) Value {
	return Value{kind: KindNumeric, num: v}
}

// Character returns a character value.
func Character(s string) Value {
	return Value{kind: KindCharacter, str: s}
}

// Missing returns a missing value with the given code.
func Missing(m format.MissingValue) Value {
	return Value{kind: KindMissing, missing: m}
}

// Kind returns the discriminant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether v is a missing value.
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Float returns the numeric payload; ok is false for other kinds.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumeric
}

// Str returns the character payload; ok is false for other kinds.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindCharacter
}

// MissingValue returns the missing code; ok is false for non-missing values.
func (v Value) MissingValue() (format.MissingValue, bool) {
	return v.missing, v.kind == KindMissing
}

// Equal reports whether v and o have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNumeric:
		return v.num == o.num
	case KindCharacter:
		return v.str == o.str
	default:
		return v.missing == o.missing
	}
}

// String renders v for display: numbers in shortest form, missing values in SAS notation.
func (v Value) String() string {
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindCharacter:
		return v.str
	default:
		return v.missing.String()
	}
}

// Row is one observation, aligned positionally with the dataset columns.
type Row []Value

// Equal reports whether r and o hold equal values in the same order.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}

	return true
}
