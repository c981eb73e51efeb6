package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/xport/compress"
	"github.com/arloliu/xport/errs"
	"github.com/arloliu/xport/format"
	"github.com/arloliu/xport/internal/cli/output"
	"github.com/arloliu/xport/transport"
	"github.com/arloliu/xport/validate"
)

type validateOptions struct {
	mode    string
	version string
	parts   int
}

func newValidateCmd(a *app) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check every member of a file against the format rules",
		Long: `Check every member of a file, rows included, and list all findings.

The fda mode adds the rules of regulatory submissions: version 5 only, one
uncompressed member per file, ASCII text and built-in formats only.

The command fails when any error-level finding exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "standard", "Rule set (standard|fda)")
	cmd.Flags().StringVar(&opts.version, "target-version", "", "Check against another version (default: the file version)")
	cmd.Flags().IntVar(&opts.parts, "parts", 1, "Number of files the dataset is split across")

	return cmd
}

func (a *app) runValidate(w io.Writer, path string, opts validateOptions) error {
	mode, err := validate.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 16)
	n, _ := io.ReadFull(f, head)
	compression := compress.Detect(head[:n])
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	members, err := transport.ReadMembers(f, transport.WithReaderLogger(a.logger))
	if err != nil {
		return err
	}

	version := format.V5
	if len(members) > 0 {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		rd, err := transport.NewReader(f)
		if err != nil {
			return err
		}
		version = rd.Version()
		_ = rd.Close()
	}
	if opts.version != "" {
		if version, err = format.ParseVersion(opts.version); err != nil {
			return err
		}
	}

	target := validate.Target{
		Version:     version,
		Compression: compression,
		Members:     len(members),
		Parts:       opts.parts,
	}

	tbl := output.NewTable("SEVERITY", "CODE", "MEMBER", "COLUMN", "ROW", "MESSAGE")
	var errCount, warnCount int
	for _, ds := range members {
		result := validate.Check(ds, target, mode)
		for _, finding := range result.Findings {
			row := ""
			if finding.Row > 0 {
				row = strconv.Itoa(finding.Row)
			}
			tbl.AddRow(finding.Severity.String(), string(finding.Code), ds.Name, finding.Column, row, finding.Message)
		}
		errCount += len(result.Errors())
		warnCount += len(result.Warnings())
	}

	if tbl.Len() > 0 {
		tbl.Render(w)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s: %d member(s), %d error(s), %d warning(s) in %s mode against %s\n",
		path, len(members), errCount, warnCount, mode, version)

	if errCount > 0 {
		return fmt.Errorf("%w: %d error(s)", errs.ErrValidationFailed, errCount)
	}

	return nil
}
