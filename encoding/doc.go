// Package encoding provides the field-level codecs of the SAS transport format.
//
// Every value in an observation is a fixed-width field. This package converts those
// fields to and from Go values without knowing anything about records or sections;
// the section package arranges fields into records.
//
// # Numeric Fields
//
// Numbers are stored as big-endian IBM System/360 hexadecimal floating point:
//
//	 bit 63   62..56      55..0
//	┌──────┬───────────┬─────────────────────────────┐
//	│ sign │ exp (+64) │ fraction (56 bits, base 16) │
//	└──────┴───────────┴─────────────────────────────┘
//
//	value = (-1)^sign × 0.fraction × 16^(exp-64)
//
// EncodeIBM and DecodeIBM convert between IEEE 754 doubles and this layout. The IBM
// fraction holds at least 53 significant bits for every normalized value, so finite
// doubles inside the IBM range survive a round trip exactly. Magnitudes above MaxIBM
// are rejected with ErrNumericOverflow; magnitudes below 16^-65 are stored
// denormalized and eventually flush to zero.
//
// Short numeric fields (2 to 7 bytes) keep only the high-order bytes of the IBM value.
// DecodeIBMShort zero-extends them before decoding.
//
// # Missing Values
//
// SAS has 28 numeric missing values: the standard ".", "._" and ".A" through ".Z".
// Each is stored as a marker byte followed by zero bytes:
//
//	.   → 2E 00 00 00 00 00 00 00
//	._  → 5F 00 00 00 00 00 00 00
//	.A  → 41 00 00 00 00 00 00 00
//	...
//	.Z  → 5A 00 00 00 00 00 00 00
//
// No IBM number has a zero fraction except zero itself, so DecodeNumeric checks for a
// missing pattern first and never mistakes one for a number.
//
// # Text Fields
//
// Character fields are blank-padded to their declared width. TextEncoder converts Go
// strings to the output charset (ASCII, ISO-8859-1 via golang.org/x/text, or raw UTF-8),
// truncating over-long values without splitting a UTF-8 sequence. TextDecoder trims
// trailing blanks unless asked to preserve them.
package encoding
