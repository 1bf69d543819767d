// Package cmd implements the piperun CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/sa6mwa/piperun"
	"github.com/sa6mwa/piperun/internal/logging"
	"github.com/sa6mwa/piperun/internal/report"
)

var appVersion = "dev"

// errReportedFailure is returned once the failure is already visible in the
// report, so only the exit status changes.
var errReportedFailure = errors.New("one or more runs failed")

type rootOptions struct {
	configPath string
	format     string
	timeout    time.Duration
	verbose    bool
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "piperun",
		Short: "piperun: feed stdin to a child process and report what it did",
		Long: "piperun runs a program with a fixed standard input, captures its standard output, " +
			"standard error and exit code, and prints them so you can check that piping into a child process works.",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "fixture file (default $XDG_CONFIG_HOME/piperun/fixtures.toml)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "report format: text, json or yaml")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "kill the child after this long (0 uses the config value)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log child lifecycle as JSON to stderr")

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newExecCmd(opts))
	return root
}

// SetVersion sets the version reported by --version.
func SetVersion(version string) {
	appVersion = version
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		if !errors.Is(err, errReportedFailure) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (o *rootOptions) newRunner(cmd *cobra.Command, timeout time.Duration) *piperun.Runner {
	if o.timeout > 0 {
		timeout = o.timeout
	}
	return piperun.New(
		piperun.WithTimeout(timeout),
		piperun.WithLogger(logging.NewJSONLogger(cmd.ErrOrStderr(), o.verbose)),
	)
}

func writeReports(cmd *cobra.Command, format string, reports []*report.Report) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	if err := report.Write(cmd.OutOrStdout(), f, reports); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	for _, r := range reports {
		if r.Failed() {
			return errReportedFailure
		}
	}
	return nil
}
