// Package cli assembles the command tree for the commitscribe binary.
// Commands are thin: they load configuration, open the repository, and
// delegate to the chain, analysis and cost packages.
package cli

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"commitscribe/internal/config"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd(version string) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "commitscribe",
		Short: "Draft Conventional Commits messages from staged changes",
		Long: `Commitscribe reads the staged diff, runs it through a multi-stage
model pipeline and prints a Conventional Commits message. It can also
keep a lightweight analysis of the repository to give the model
project context.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log stage progress to stderr")

	root.AddCommand(
		newGenerateCmd(&verbose),
		newAnalyzeCmd(&verbose),
		newUsageCmd(),
		newModelsCmd(),
	)
	return root
}

// newLogger builds the pipeline logger: stderr when verbose, plus a
// rotating file when COMMITSCRIBE_DEBUG_LOG is set. The closer flushes
// the file sink.
func newLogger(cfg *config.Config, verbose bool) (*log.Logger, func()) {
	var sinks []io.Writer
	closer := func() {}

	if verbose {
		sinks = append(sinks, os.Stderr)
	}
	if cfg.DebugLog != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.DebugLog,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     14,
		}
		sinks = append(sinks, lj)
		closer = func() { _ = lj.Close() }
	}
	if len(sinks) == 0 {
		return log.New(io.Discard, "", 0), closer
	}
	return log.New(io.MultiWriter(sinks...), "", log.LstdFlags), closer
}
