package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/xport/encoding"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/internal/cli/output"
)

func newIBMCmd() *cobra.Command {
	var decode bool

	cmd := &cobra.Command{
		Use:   "ibm <value>...",
		Short: "Convert numbers to and from IBM floating point",
		Long: `Show the 8-byte IBM encoding of each number and the value it decodes to.

Missing values are accepted in SAS notation (., ._, .A to .Z). With --decode
the arguments are hex fields of 2 to 8 bytes instead.`,
		Example: `  xptool ibm -- 1 -2.5 0.1 .A
  xptool ibm --decode 4110000000000000 C128`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if decode {
				return runIBMDecode(cmd.OutOrStdout(), args)
			}

			return runIBMEncode(cmd.OutOrStdout(), args)
		},
	}

	cmd.Flags().BoolVarP(&decode, "decode", "d", false, "Decode hex fields instead of encoding numbers")

	return cmd
}

func runIBMEncode(w io.Writer, args []string) error {
	tbl := output.NewTable("INPUT", "IBM", "DECODED")

	for _, arg := range args {
		var field [8]byte
		if m, ok := parseMissing(arg); ok {
			field = encoding.EncodeMissing(m)
		} else {
			x, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("invalid number %q: %w", arg, err)
			}
			if field, err = encoding.EncodeIBM(x); err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
		}

		decoded, err := decodeField(field[:])
		if err != nil {
			return err
		}
		tbl.AddRow(arg, strings.ToUpper(hex.EncodeToString(field[:])), decoded)
	}

	tbl.Render(w)

	return nil
}

func runIBMDecode(w io.Writer, args []string) error {
	tbl := output.NewTable("IBM", "DECODED")

	for _, arg := range args {
		field, err := hex.DecodeString(arg)
		if err != nil {
			return fmt.Errorf("invalid hex field %q: %w", arg, err)
		}
		if len(field) < 2 || len(field) > encoding.NumericWidth {
			return fmt.Errorf("hex field %q must hold 2 to 8 bytes", arg)
		}

		decoded, err := decodeField(field)
		if err != nil {
			return err
		}
		tbl.AddRow(strings.ToUpper(arg), decoded)
	}

	tbl.Render(w)

	return nil
}

func decodeField(field []byte) (string, error) {
	x, m, missing, err := encoding.DecodeNumeric(field)
	if err != nil {
		return "", err
	}
	if missing {
		return m.String(), nil
	}

	return strconv.FormatFloat(x, 'g', -1, 64), nil
}

// parseMissing parses ".", "._" and ".A" through ".Z".
func parseMissing(s string) (format.MissingValue, bool) {
	switch {
	case s == ".":
		return format.MissingStandard, true
	case s == "._":
		return format.MissingUnderscore, true
	case len(s) == 2 && s[0] == '.':
		return format.SpecialMissing(rune(s[1]))
	default:
		return 0, false
	}
}
