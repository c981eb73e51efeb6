package format

import (
	"fmt"
	"strings"
)

// ParseVersion parses "5", "V5", "8" or "V8", case-insensitively.
func ParseVersion(s string) (Version, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "5", "V5":
		return V5, nil
	case "8", "V8":
		return V8, nil
	default:
		return 0, fmt.Errorf("unknown transport version %q", s)
	}
}

// ParseCompression parses a compression name as printed by CompressionType.String.
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// ParseCharset parses a charset name as printed by Charset.String.
func ParseCharset(s string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascii", "":
		return CharsetASCII, nil
	case "latin1", "iso-8859-1":
		return CharsetLatin1, nil
	case "utf8", "utf-8":
		return CharsetUTF8, nil
	default:
		return 0, fmt.Errorf("unknown charset %q", s)
	}
}
