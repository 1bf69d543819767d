package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sa6mwa/piperun"
	"github.com/sa6mwa/piperun/internal/config"
	"github.com/sa6mwa/piperun/internal/report"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [fixture...]",
		Short: "Run the configured stdin fixtures",
		Long: `Run each fixture: start its program, write the fixture input to stdin, close it,
and report stdout, stderr and the exit code. A fixture with an expectation passes
when the expected text appears in stdout.

Without a config file the built-in "greeting" fixture runs python3 with a program
that reads a name and an age and prints "Hello Alice, you are 25 years old!".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}
}

func runCheck(cmd *cobra.Command, opts *rootOptions, names []string) error {
	if _, err := report.ParseFormat(opts.format); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	fixtures, err := cfg.Select(names...)
	if err != nil {
		return err
	}

	runner := opts.newRunner(cmd, cfg.Timeout)
	reports := make([]*report.Report, 0, len(fixtures))
	for _, f := range fixtures {
		input := []byte(f.Input)
		var (
			res    piperun.ExecutionResult
			runErr error
		)
		if f.IsPayload() {
			res, runErr = runner.RunPayload(cmd.Context(), []byte(f.Code), input)
		} else {
			res, runErr = runner.Run(cmd.Context(), f.Argv(), input)
		}
		reports = append(reports, report.New(report.Run{
			Name:    f.Name,
			Command: f.Command,
			Code:    f.Code,
			Input:   input,
			Expect:  f.Expect,
		}, res, runErr))
	}
	return writeReports(cmd, opts.format, reports)
}
