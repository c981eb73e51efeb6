package section

import (
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/xport/errs"
)

// timestampLayout is the Go layout of ddMMMyy:hh:mm:ss; months are upper-cased on write.
const timestampLayout = "02Jan06:15:04:05"

// FormatTimestamp renders t as the 16-byte ddMMMyy:hh:mm:ss field.
// The zero time renders as blanks.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return strings.Repeat(" ", TimestampSize)
	}

	return strings.ToUpper(t.Format(timestampLayout))
}

// ParseTimestamp parses a ddMMMyy:hh:mm:ss field in UTC.
//
// A blank field yields the zero time. Two-digit years follow the time package
// pivot (69-99 map to the 1900s, 00-68 to the 2000s).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if len(s) != TimestampSize {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", errs.ErrInvalidHeaderSignature, s)
	}

	// time.Parse expects "Jan", files carry "JAN"
	normalized := s[:3] + strings.ToLower(s[3:5]) + s[5:]
	t, err := time.ParseInLocation(timestampLayout, normalized, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %w", errs.ErrInvalidHeaderSignature, s, err)
	}

	return t, nil
}
