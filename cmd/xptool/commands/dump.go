package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/internal/cli/output"
	"github.com/arloliu/xport/transport"
)

type dumpOptions struct {
	member         string
	limit          int
	charset        string
	preserveSpaces bool
	blankAsMissing bool
}

func newDumpCmd(a *app) *cobra.Command {
	var opts dumpOptions

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the rows of a member",
		Long: `Print the rows of a member as a table.

Rows are streamed, so large files can be dumped with --limit without reading
them into memory. Missing numeric values print in SAS notation (., .A, ._).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDump(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.member, "member", "m", "", "Member to dump (default: the first)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of rows to print (0 prints all)")
	cmd.Flags().StringVar(&opts.charset, "charset", "ascii", "Character set of text fields (ascii|latin1|utf8)")
	cmd.Flags().BoolVar(&opts.preserveSpaces, "preserve-spaces", false, "Keep trailing blanks of character values")
	cmd.Flags().BoolVar(&opts.blankAsMissing, "blank-as-missing", false, "Print blank character values as missing")

	return cmd
}

func (a *app) runDump(w io.Writer, path string, opts dumpOptions) error {
	cs, err := format.ParseCharset(opts.charset)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	rd, err := transport.NewReader(f,
		transport.WithReaderCharset(cs),
		transport.WithPreserveTrailingSpaces(opts.preserveSpaces),
		transport.WithBlankAsMissing(opts.blankAsMissing),
		transport.WithReaderLogger(a.logger),
	)
	if err != nil {
		return err
	}
	defer func() { _ = rd.Close() }()

	for opts.member != "" && !strings.EqualFold(rd.Member().Name, opts.member) {
		if err := rd.NextMember(); err != nil {
			if errors.Is(err, errs.ErrNoMoreMembers) {
				return fmt.Errorf("member %s not found in %s", opts.member, path)
			}

			return err
		}
	}

	columns := rd.Columns()
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Name
	}
	tbl := output.NewTable(headers...)

	for rd.Next() {
		if opts.limit > 0 && tbl.Len() >= opts.limit {
			break
		}

		row := rd.Row()
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		tbl.AddRow(cells...)
	}
	if err := rd.Err(); err != nil {
		return err
	}

	tbl.Render(w)

	return nil
}
