package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arloliu/xport"
	"github.com/arloliu/xport/compress"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/internal/cli/output"
	"github.com/arloliu/xport/transport"
	"github.com/arloliu/xport/validate"
)

type convertOptions struct {
	version        string
	compression    string
	charset        string
	mode           string
	skipValidation bool
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Rewrite a file with another version, charset or compression",
		Long: `Read every member of the input and write them to the output.

The output is validated before it is written and is created only when the
conversion succeeds. Compressed input is detected automatically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd.OutOrStdout(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", "", "Output version (5|8, default: the input version)")
	cmd.Flags().StringVar(&opts.compression, "compress", "none", "Output compression (none|zstd|s2|lz4)")
	cmd.Flags().StringVar(&opts.charset, "charset", "ascii", "Character set of the output text (ascii|latin1|utf8)")
	cmd.Flags().StringVar(&opts.mode, "mode", "standard", "Validation rule set (standard|fda)")
	cmd.Flags().BoolVar(&opts.skipValidation, "skip-validation", false, "Write without validating")

	return cmd
}

func (a *app) runConvert(w io.Writer, in, out string, opts convertOptions) error {
	compression, err := format.ParseCompression(opts.compression)
	if err != nil {
		return err
	}
	cs, err := format.ParseCharset(opts.charset)
	if err != nil {
		return err
	}
	mode, err := validate.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	src, err := xport.ReadStreaming(in, transport.WithReaderCharset(cs), transport.WithReaderLogger(a.logger))
	if err != nil {
		return err
	}
	version := src.Version()
	if err := src.Close(); err != nil {
		return err
	}
	if opts.version != "" {
		if version, err = format.ParseVersion(opts.version); err != nil {
			return err
		}
	}

	members, err := xport.ReadMembers(in, transport.WithReaderCharset(cs))
	if err != nil {
		return err
	}

	writeOpts := []transport.WriterOption{
		transport.WithCharset(cs),
		transport.WithValidationMode(mode),
		transport.WithLogger(a.logger),
	}
	if opts.skipValidation {
		writeOpts = append(writeOpts, transport.WithSkipValidation())
	}

	var stats compress.Stats
	writeOpts = append(writeOpts, transport.WithCompression(compression), transport.WithStats(&stats))
	if err := xport.WriteLibrary(out, members, version, writeOpts...); err != nil {
		return err
	}

	var rows int
	for _, ds := range members {
		rows += ds.NumRows()
	}
	pairs := [][2]string{
		{"Output", out},
		{"Version", version.String()},
		{"Members", fmt.Sprint(len(members))},
		{"Rows", fmt.Sprint(rows)},
	}

	if compression != format.CompressionNone {
		pairs = append(pairs,
			[2]string{"Compression", stats.Algorithm.String()},
			[2]string{"Original size", fmt.Sprintf("%d bytes", stats.OriginalSize)},
			[2]string{"Compressed size", fmt.Sprintf("%d bytes", stats.CompressedSize)},
			[2]string{"Ratio", fmt.Sprintf("%.3f", stats.CompressionRatio())},
			[2]string{"Space savings", fmt.Sprintf("%.1f%%", stats.SpaceSavings())},
		)
	}

	output.KeyValue(w, pairs)

	return nil
}
