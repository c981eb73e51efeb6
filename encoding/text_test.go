package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
)

func TestTextEncoder_Put(t *testing.T) {
	tests := []struct {
		name      string
		charset   format.Charset
		value     string
		width     int
		want      []byte
		truncated bool
	}{
		{"ASCIIPadded", format.CharsetASCII, "ab", 5, []byte("ab   "), false},
		{"ASCIIExact", format.CharsetASCII, "abc", 3, []byte("abc"), false},
		{"ASCIITruncated", format.CharsetASCII, "abcdef", 4, []byte("abcd"), true},
		{"Empty", format.CharsetASCII, "", 3, []byte("   "), false},
		{"Latin1", format.CharsetLatin1, "café", 5, []byte("caf\xe9 "), false},
		{"UTF8", format.CharsetUTF8, "café", 6, []byte("caf\xc3\xa9 "), false},
		{"UTF8CutBeforeRune", format.CharsetUTF8, "héllo", 2, []byte("h "), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.width)
			truncated, err := NewTextEncoder(tt.charset).Put(dst, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dst)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestTextEncoder_NotEncodable(t *testing.T) {
	_, err := NewTextEncoder(format.CharsetASCII).Bytes("café")
	require.ErrorIs(t, err, errs.ErrNotEncodable)

	_, err = NewTextEncoder(format.CharsetLatin1).Bytes("日本")
	require.ErrorIs(t, err, errs.ErrNotEncodable)

	_, err = NewTextEncoder(format.CharsetLatin1).EncodedLen("日本")
	require.ErrorIs(t, err, errs.ErrNotEncodable)

	_, err = NewTextEncoder(format.CharsetASCII).Put(make([]byte, 4), "é")
	require.ErrorIs(t, err, errs.ErrNotEncodable)
}

func TestTextEncoder_EncodedLen(t *testing.T) {
	n, err := NewTextEncoder(format.CharsetLatin1).EncodedLen("café")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = NewTextEncoder(format.CharsetUTF8).EncodedLen("café")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, format.CharsetASCII, NewTextEncoder(format.Charset(99)).Charset())
}

func TestTextDecoder_String(t *testing.T) {
	tests := []struct {
		name     string
		charset  format.Charset
		preserve bool
		field    []byte
		want     string
	}{
		{"Trimmed", format.CharsetASCII, false, []byte("ab   "), "ab"},
		{"LeadingKept", format.CharsetASCII, false, []byte("  ab  "), "  ab"},
		{"Preserved", format.CharsetASCII, true, []byte("ab   "), "ab   "},
		{"AllBlank", format.CharsetASCII, false, []byte("    "), ""},
		{"HighBytesAsLatin1", format.CharsetASCII, false, []byte("caf\xe9"), "café"},
		{"Latin1", format.CharsetLatin1, false, []byte("\xe9t\xe9 "), "été"},
		{"UTF8", format.CharsetUTF8, false, []byte("caf\xc3\xa9 "), "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewTextDecoder(tt.charset, tt.preserve).String(tt.field))
		})
	}
}

func TestBlankHelpers(t *testing.T) {
	b := []byte("abc")
	PadBlank(b)
	assert.Equal(t, []byte("   "), b)
	assert.True(t, IsBlank(b))
	assert.True(t, IsBlank(nil))
	assert.False(t, IsBlank([]byte("  x")))
	assert.Equal(t, []byte("ab"), TrimBlank([]byte("ab  ")))
}
