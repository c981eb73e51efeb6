// Package commands implements the xptool commands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arloliu/xport/internal/logger"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
)

// app holds the state shared by the commands of one tree.
type app struct {
	logCfg   logger.Config
	logger   *slog.Logger
	logClose func() error
}

func newApp() *app {
	return &app{
		logCfg:   logger.DefaultConfig(),
		logger:   logger.Discard(),
		logClose: func() error { return nil },
	}
}

// NewRootCmd builds the command tree. Each call returns a fresh tree with its own
// flags and logger, so tests can run commands with their own arguments and output.
func NewRootCmd() *cobra.Command {
	a := newApp()

	root := &cobra.Command{
		Use:   "xptool",
		Short: "Inspect, validate and convert SAS transport files",
		Long: `xptool works with SAS transport (XPT) files, version 5 and 8.

Use "xptool [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, closer, err := logger.New(a.logCfg)
			if err != nil {
				return err
			}
			a.logger, a.logClose = l, closer

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.logClose()
		},
	}

	root.PersistentFlags().StringVar(&a.logCfg.Level, "log-level", a.logCfg.Level, "Log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&a.logCfg.Format, "log-format", a.logCfg.Format, "Log format (text|json)")
	root.PersistentFlags().StringVar(&a.logCfg.Output, "log-output", a.logCfg.Output, "Log destination (stderr|stdout|file path)")

	root.AddCommand(
		newInspectCmd(a),
		newDumpCmd(a),
		newValidateCmd(a),
		newConvertCmd(a),
		newIBMCmd(),
		newVersionCmd(),
	)
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}

// Execute runs the command named by the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("xptool %s (commit %s)\n", Version, Commit)
		},
	}
}
