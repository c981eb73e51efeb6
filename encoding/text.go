package encoding

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

// Blank is the padding byte of every text field and record.
const Blank = ' '

// TextEncoder converts Go strings into fixed-width transport text fields.
//
// Values longer than the field are truncated and shorter values are padded with
// blanks. Truncation is a documented policy, not an error; the validator reports it
// as a warning before the write. With CharsetUTF8 the cut never splits a rune.
type TextEncoder struct {
	charset format.Charset
}

// NewTextEncoder creates a TextEncoder for the given charset.
// Unknown charsets fall back to CharsetASCII.
func NewTextEncoder(cs format.Charset) TextEncoder {
	switch cs {
	case format.CharsetASCII, format.CharsetLatin1, format.CharsetUTF8:
	default:
		cs = format.CharsetASCII
	}

	return TextEncoder{charset: cs}
}

// Charset returns the charset of the encoder.
func (e TextEncoder) Charset() format.Charset {
	return e.charset
}

// Bytes returns the charset encoding of s without padding or truncation.
//
// Returns:
//   - []byte: Encoded bytes
//   - error: ErrNotEncodable if s contains a rune the charset cannot represent
func (e TextEncoder) Bytes(s string) ([]byte, error) {
	switch e.charset {
	case format.CharsetUTF8:
		return []byte(s), nil
	case format.CharsetLatin1:
		if isASCII(s) {
			return []byte(s), nil
		}

		b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %q as %s", errs.ErrNotEncodable, s, e.charset)
		}

		return b, nil
	default:
		if !isASCII(s) {
			return nil, fmt.Errorf("%w: %q as %s", errs.ErrNotEncodable, s, e.charset)
		}

		return []byte(s), nil
	}
}

// EncodedLen returns the number of bytes s occupies once encoded.
func (e TextEncoder) EncodedLen(s string) (int, error) {
	switch e.charset {
	case format.CharsetUTF8:
		return len(s), nil
	case format.CharsetLatin1:
		n := 0
		for _, r := range s {
			if r > 0xFF {
				return 0, fmt.Errorf("%w: %q as %s", errs.ErrNotEncodable, s, e.charset)
			}
			n++
		}

		return n, nil
	default:
		if !isASCII(s) {
			return 0, fmt.Errorf("%w: %q as %s", errs.ErrNotEncodable, s, e.charset)
		}

		return len(s), nil
	}
}

// Put writes s into dst, truncating or blank-padding it to len(dst).
//
// Returns:
//   - bool: Whether s was truncated
//   - error: ErrNotEncodable if s cannot be represented in the charset
func (e TextEncoder) Put(dst []byte, s string) (bool, error) {
	b, err := e.Bytes(s)
	if err != nil {
		return false, err
	}

	truncated := false
	if len(b) > len(dst) {
		truncated = true
		b = b[:len(dst)]
		if e.charset == format.CharsetUTF8 {
			b = trimPartialRune(b)
		}
	}

	n := copy(dst, b)
	PadBlank(dst[n:])

	return truncated, nil
}

// TextDecoder converts fixed-width transport text fields into Go strings.
type TextDecoder struct {
	charset  format.Charset
	preserve bool
}

// NewTextDecoder creates a TextDecoder.
//
// Parameters:
//   - cs: Charset of the field bytes; CharsetASCII decodes bytes above 0x7F as ISO-8859-1
//   - preserveTrailing: Keep trailing blanks instead of trimming them
func NewTextDecoder(cs format.Charset, preserveTrailing bool) TextDecoder {
	return TextDecoder{charset: cs, preserve: preserveTrailing}
}

// String decodes a text field.
func (d TextDecoder) String(field []byte) string {
	if !d.preserve {
		field = TrimBlank(field)
	}

	if d.charset == format.CharsetUTF8 || isASCIIBytes(field) {
		return string(field)
	}

	s, err := charmap.ISO8859_1.NewDecoder().Bytes(field)
	if err != nil {
		// every byte is a valid ISO-8859-1 code point
		return string(field)
	}

	return string(s)
}

// TrimBlank removes trailing blanks.
func TrimBlank(b []byte) []byte {
	n := len(b)
	for n > 0 && b[n-1] == Blank {
		n--
	}

	return b[:n]
}

// PadBlank fills b with blanks.
func PadBlank(b []byte) {
	for i := range b {
		b[i] = Blank
	}
}

// IsBlank reports whether every byte of b is a blank.
func IsBlank(b []byte) bool {
	for _, c := range b {
		if c != Blank {
			return false
		}
	}

	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

func isASCIIBytes(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		start := len(b) - i
		if !utf8.RuneStart(b[start]) {
			continue
		}
		if r, size := utf8.DecodeRune(b[start:]); r == utf8.RuneError && size <= 1 {
			return b[:start]
		}

		return b
	}

	return b
}
