package transport

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/arloliu/xport/compress"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/internal/options"
	"github.com/arloliu/xport/section"
	"github.com/arloliu/xport/validate"
)

// WriterConfig holds the settings of a writing session. It is fixed once the
// session starts.
type WriterConfig struct {
	mode           validate.Mode
	skipValidation bool
	charset        format.Charset
	compression    format.CompressionType
	created        time.Time
	modified       time.Time
	sasVersion     string
	os             string
	logger         *slog.Logger
	stats          *compress.Stats

	// count is the known number of observations, or -1 when rows are streamed.
	count int64
	// prevalidated is set by the batch writer, which has already checked every row.
	prevalidated bool
}

// WriterOption configures a writer.
type WriterOption = options.Option[*WriterConfig]

func newWriterConfig(opts ...WriterOption) (*WriterConfig, error) {
	now := time.Now().UTC().Truncate(time.Second)
	cfg := &WriterConfig{
		mode:        validate.ModeStandard,
		charset:     format.CharsetASCII,
		compression: format.CompressionNone,
		created:     now,
		sasVersion:  section.DefaultSASVersion,
		os:          section.DefaultOS,
		logger:      slog.New(slog.DiscardHandler),
		count:       -1,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.modified.IsZero() {
		cfg.modified = cfg.created
	}

	return cfg, nil
}

func (c *WriterConfig) target(v format.Version) validate.Target {
	return validate.Target{
		Version:        v,
		Charset:        c.charset,
		Compression:    c.compression,
		RequireLengths: true,
	}
}

// WithValidationMode selects the validation rule set. The default is ModeStandard.
func WithValidationMode(mode validate.Mode) WriterOption {
	return options.New(func(c *WriterConfig) error {
		switch mode {
		case validate.ModeStandard, validate.ModeFDA:
			c.mode = mode
			return nil
		default:
			return fmt.Errorf("invalid validation mode: %v", mode)
		}
	})
}

// WithSkipValidation writes without validating. Values that cannot be encoded
// still fail at WriteRow.
func WithSkipValidation() WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.skipValidation = true
	})
}

// WithCharset selects the charset of labels and character values. The default is
// CharsetASCII.
func WithCharset(cs format.Charset) WriterOption {
	return options.New(func(c *WriterConfig) error {
		switch cs {
		case format.CharsetASCII, format.CharsetLatin1, format.CharsetUTF8:
			c.charset = cs
			return nil
		default:
			return fmt.Errorf("invalid charset: %v", cs)
		}
	})
}

// WithCompression wraps the output in a compressed stream.
func WithCompression(comp format.CompressionType) WriterOption {
	return options.New(func(c *WriterConfig) error {
		switch comp {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.compression = comp
			return nil
		default:
			return fmt.Errorf("invalid compression: %v", comp)
		}
	})
}

// WithStats stores the sizes of the finished stream in dst: the bytes of the
// transport file and the bytes emitted after compression. Without compression
// both sizes are equal. dst is written once the output is complete.
func WithStats(dst *compress.Stats) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.stats = dst
	})
}

// WithCreated sets the creation timestamp of the library and members.
// The default is the time the writer was created. Fixed timestamps make output
// byte-for-byte reproducible.
func WithCreated(t time.Time) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.created = t
	})
}

// WithModified sets the modification timestamp. The default is the creation time.
func WithModified(t time.Time) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.modified = t
	})
}

// WithSASVersion sets the SAS release recorded in the headers (8 characters at most).
func WithSASVersion(v string) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if len(v) > 8 {
			return fmt.Errorf("SAS version %q exceeds 8 characters", v)
		}
		c.sasVersion = v

		return nil
	})
}

// WithOS sets the operating system name recorded in the headers (8 characters at most).
func WithOS(os string) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if len(os) > 8 {
			return fmt.Errorf("OS name %q exceeds 8 characters", os)
		}
		c.os = os

		return nil
	})
}

// WithLogger sets the logger of the writer. Writers are silent by default.
func WithLogger(l *slog.Logger) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// ReaderConfig holds the settings of a reading session.
type ReaderConfig struct {
	charset        format.Charset
	preserveSpaces bool
	blankAsMissing bool
	logger         *slog.Logger
}

// ReaderOption configures a reader.
type ReaderOption = options.Option[*ReaderConfig]

func newReaderConfig(opts ...ReaderOption) (*ReaderConfig, error) {
	cfg := &ReaderConfig{
		charset: format.CharsetASCII,
		logger:  slog.New(slog.DiscardHandler),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithPreserveTrailingSpaces keeps the trailing blanks of character values and
// labels. By default they are trimmed.
func WithPreserveTrailingSpaces(preserve bool) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.preserveSpaces = preserve
	})
}

// WithBlankAsMissing decodes all-blank character values as the standard missing
// value instead of the empty string.
func WithBlankAsMissing(enabled bool) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.blankAsMissing = enabled
	})
}

// WithReaderCharset selects how text bytes are decoded. With CharsetASCII and
// CharsetLatin1 bytes above 0x7F decode as ISO-8859-1; with CharsetUTF8 they are
// kept as is.
func WithReaderCharset(cs format.Charset) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		switch cs {
		case format.CharsetASCII, format.CharsetLatin1, format.CharsetUTF8:
			c.charset = cs
			return nil
		default:
			return fmt.Errorf("invalid charset: %v", cs)
		}
	})
}

// WithReaderLogger sets the logger of the reader. Readers are silent by default.
func WithReaderLogger(l *slog.Logger) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
