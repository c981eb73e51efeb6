package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/internal/cli/output"
	"github.com/arloliu/xport/section"
	"github.com/arloliu/xport/transport"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the library header, members and columns of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) runInspect(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	rd, err := transport.NewReader(f, transport.WithReaderLogger(a.logger))
	if err != nil {
		return err
	}
	defer func() { _ = rd.Close() }()

	lib := rd.Library()
	output.KeyValue(w, [][2]string{
		{"File", path},
		{"Version", rd.Version().String()},
		{"Compression", rd.Compression().String()},
		{"SAS version", lib.SASVersion},
		{"OS", lib.OS},
		{"Created", section.FormatTimestamp(lib.Created)},
		{"Modified", section.FormatTimestamp(lib.Modified)},
	})

	for {
		member := rd.Member()

		var rows int64
		for rd.Next() {
			rows++
		}
		if err := rd.Err(); err != nil {
			return err
		}

		fmt.Fprintf(w, "\nMember %s", member.Name)
		if member.Label != "" {
			fmt.Fprintf(w, " (%s)", member.Label)
		}
		fmt.Fprintf(w, ": %d rows, %d columns, %d bytes per row\n\n", rows, len(member.Columns), rd.RecordLength())

		tbl := output.NewTable("#", "NAME", "TYPE", "LENGTH", "POSITION", "FORMAT", "INFORMAT", "LABEL")
		for i, c := range member.Columns {
			tbl.AddRow(
				strconv.Itoa(i+1),
				c.Name,
				c.Type.String(),
				strconv.Itoa(c.Length),
				strconv.Itoa(c.Position),
				c.Format.String(),
				c.Informat.String(),
				c.Label,
			)
		}
		tbl.Render(w)

		if err := rd.NextMember(); err != nil {
			if errors.Is(err, errs.ErrNoMoreMembers) {
				return nil
			}

			return err
		}
	}
}
