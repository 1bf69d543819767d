package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sa6mwa/piperun/internal/report"
)

type execOptions struct {
	input     string
	inputFile string
	expect    string
}

func newExecCmd(opts *rootOptions) *cobra.Command {
	eo := &execOptions{}
	c := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run one command with the given stdin and report the result",
		Example: `  piperun exec --input $'Alice\n25\n' -- python3 -c 'print(input(), input())'
  printf 'a\nb\n' | piperun exec --input-file - -- sort -r`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, eo, args)
		},
	}
	c.Flags().StringVarP(&eo.input, "input", "i", "", "text written to the child's stdin")
	c.Flags().StringVar(&eo.inputFile, "input-file", "", "file whose contents are written to the child's stdin (- for stdin)")
	c.Flags().StringVar(&eo.expect, "expect", "", "text that must appear in stdout for the run to pass")
	return c
}

func runExec(cmd *cobra.Command, opts *rootOptions, eo *execOptions, argv []string) error {
	if _, err := report.ParseFormat(opts.format); err != nil {
		return err
	}
	input, err := eo.readInput(cmd.InOrStdin())
	if err != nil {
		return err
	}
	res, runErr := opts.newRunner(cmd, 0).Run(cmd.Context(), argv, input)
	r := report.New(report.Run{
		Command: argv,
		Input:   input,
		Expect:  eo.expect,
	}, res, runErr)
	return writeReports(cmd, opts.format, []*report.Report{r})
}

func (eo *execOptions) readInput(stdin io.Reader) ([]byte, error) {
	switch {
	case eo.input != "" && eo.inputFile != "":
		return nil, errors.New("--input and --input-file are mutually exclusive")
	case eo.inputFile == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return b, nil
	case eo.inputFile != "":
		b, err := os.ReadFile(eo.inputFile)
		if err != nil {
			return nil, fmt.Errorf("reading input file: %w", err)
		}
		return b, nil
	default:
		return []byte(eo.input), nil
	}
}
