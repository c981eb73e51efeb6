package encoding

import (
	"math"
	"math/bits"

	"github.com/arloliu/xport/endian"
	"github.com/arloliu/xport/errs"
)

// IBM hexadecimal floating point, as stored in transport files:
//
//	bit  63     sign
//	bits 56-62  base-16 exponent, excess 64
//	bits 0-55   fraction, normalized so the leading hex digit is non-zero
//
// value = (-1)^sign * 0.fraction * 16^(exponent-64)
const (
	ibmFracBits = 56
	ibmFracMask = uint64(1)<<ibmFracBits - 1
	ibmExpBias  = 64
	ibmExpMax   = 127

	ieeeFracBits = 52
	ieeeFracMask = uint64(1)<<ieeeFracBits - 1
	ieeeExpBias  = 1023
	ieeeExpMask  = 0x7ff
)

// NumericWidth is the width of a full-precision numeric field.
const NumericWidth = 8

// MaxIBM is the largest float64 that EncodeIBM accepts, just below 16^63.
const MaxIBM = (1 - 0x1p-53) * 0x1p252

// EncodeIBM converts an IEEE 754 double to the 8-byte big-endian IBM layout.
//
// Zero (either sign) encodes to eight zero bytes. Aligning the 53-bit IEEE significand
// to a base-16 exponent needs at most three leading zero bits, so it always fits in the
// 56-bit fraction. Magnitudes below the smallest normalized IBM value are stored
// denormalized, rounded half-to-even, and flush to zero once no fraction bit survives.
//
// Returns:
//   - [8]byte: Encoded value
//   - error: ErrNotANumber for NaN, ErrNumericOverflow for infinities and magnitudes above MaxIBM
func EncodeIBM(v float64) ([8]byte, error) {
	var out [8]byte

	if v == 0 {
		return out, nil
	}
	if math.IsNaN(v) {
		return out, errs.ErrNotANumber
	}
	if math.IsInf(v, 0) {
		return out, errs.ErrNumericOverflow
	}

	ieee := math.Float64bits(v)
	sign := ieee >> 63
	exp := int((ieee >> ieeeFracBits) & ieeeExpMask)
	mant := ieee & ieeeFracMask

	if exp == 0 {
		// subnormal: normalize so bit 52 is set
		shift := ieeeFracBits + 1 - bits.Len64(mant)
		mant <<= shift
		exp = 1 - shift
	} else {
		mant |= 1 << ieeeFracBits
	}

	// v = 0.1xxx (53 bits) * 2^e2
	e2 := exp - ieeeExpBias + 1
	// e2 = 4*e16 - r with r in [0, 3]
	e16 := ceilDiv4(e2)
	r := uint(4*e16 - e2)

	frac := mant << (ibmFracBits - ieeeFracBits - 1 - r)

	biased := e16 + ibmExpBias
	if biased > ibmExpMax {
		return out, errs.ErrNumericOverflow
	}
	if biased < 0 {
		frac = roundShift(frac, uint(-4*biased))
		biased = 0
		if frac == 0 {
			return out, nil
		}
	}

	endian.GetTransportEngine().PutUint64(out[:], sign<<63|uint64(biased)<<ibmFracBits|frac)

	return out, nil
}

// DecodeIBM converts an 8-byte big-endian IBM double to IEEE 754.
//
// A zero fraction decodes to 0 regardless of sign and exponent bits. The 56-bit IBM
// fraction is rounded half-to-even into the 53-bit IEEE significand.
func DecodeIBM(b [8]byte) float64 {
	u := endian.GetTransportEngine().Uint64(b[:])

	frac := u & ibmFracMask
	if frac == 0 {
		return 0
	}

	sign := u >> 63
	e16 := int((u>>ibmFracBits)&0x7f) - ibmExpBias

	// v = frac * 2^e2
	e2 := 4*e16 - ibmFracBits

	shift := bits.Len64(frac) - (ieeeFracBits + 1)
	if shift > 0 {
		frac = roundShift(frac, uint(shift))
		e2 += shift
		if frac>>(ieeeFracBits+1) != 0 {
			frac >>= 1
			e2++
		}
	} else if shift < 0 {
		frac <<= uint(-shift)
		e2 += shift
	}

	// frac is in [2^52, 2^53); the IBM range always maps to a normal IEEE exponent.
	biased := uint64(e2 + ieeeFracBits + ieeeExpBias)

	return math.Float64frombits(sign<<63 | biased<<ieeeFracBits | frac&ieeeFracMask)
}

// DecodeIBMShort decodes a numeric field stored with fewer than 8 bytes.
//
// SAS drops the low-order fraction bytes of short numerics; they are restored as zeros.
// Fields longer than 8 bytes use their first 8 bytes.
//
// Returns:
//   - [8]byte: Zero-extended IBM value
//   - error: ErrInvalidRecordSize if the field is shorter than 2 bytes
func DecodeIBMShort(field []byte) ([8]byte, error) {
	var b [8]byte
	if len(field) < 2 {
		return b, errs.ErrInvalidRecordSize
	}
	copy(b[:], field)

	return b, nil
}

// roundShift shifts v right by n bits, rounding half to even.
func roundShift(v uint64, n uint) uint64 {
	if n == 0 {
		return v
	}
	if n >= 64 {
		return 0
	}

	q := v >> n
	rem := v & (uint64(1)<<n - 1)
	half := uint64(1) << (n - 1)
	if rem > half || (rem == half && q&1 == 1) {
		q++
	}

	return q
}

// ceilDiv4 returns ceil(x / 4) for any sign of x.
func ceilDiv4(x int) int {
	if x >= 0 {
		return (x + 3) / 4
	}

	return -((-x) / 4)
}
