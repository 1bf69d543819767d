// Package report renders what a piperun invocation observed, for humans
// (text) or for other tools (json, yaml).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/sa6mwa/piperun"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
	VerdictInspect Verdict = "inspect"
	VerdictError   Verdict = "error"
)

// Report is one run as shown to the user. Failed reports are those whose
// verdict is fail or error.
type Report struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	RunID    string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Command  []string `json:"command,omitempty" yaml:"command,omitempty"`
	Code     string   `json:"code,omitempty" yaml:"code,omitempty"`
	Input    string   `json:"input" yaml:"input"`
	Stdout   string   `json:"stdout" yaml:"stdout"`
	Stderr   string   `json:"stderr" yaml:"stderr"`
	ExitCode int      `json:"exit_code" yaml:"exit_code"`
	Duration string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Expect   string   `json:"expect,omitempty" yaml:"expect,omitempty"`
	Verdict  Verdict  `json:"verdict" yaml:"verdict"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run describes what was executed, independent of the outcome.
type Run struct {
	Name    string
	Command []string
	Code    string
	Input   []byte
	Expect  string
}

// New builds the report for run from the result or error returned by
// piperun. Expect is matched as a substring of stdout.
func New(run Run, res piperun.ExecutionResult, runErr error) *Report {
	r := &Report{
		Name:    run.Name,
		Command: run.Command,
		Code:    run.Code,
		Input:   string(run.Input),
		Expect:  run.Expect,
	}
	if runErr != nil {
		r.Error = runErr.Error()
		r.ExitCode = -1
		r.Verdict = VerdictError
		return r
	}
	r.RunID = res.RunID
	r.Stdout = string(res.Stdout)
	r.Stderr = string(res.Stderr)
	r.ExitCode = res.ExitCode
	r.Duration = res.Duration.String()
	switch {
	case run.Expect == "":
		r.Verdict = VerdictInspect
	case strings.Contains(r.Stdout, run.Expect):
		r.Verdict = VerdictPass
	default:
		r.Verdict = VerdictFail
	}
	return r
}

func (r *Report) Failed() bool {
	return r.Verdict == VerdictFail || r.Verdict == VerdictError
}

// Write renders reports to w in the given format.
func Write(w io.Writer, format Format, reports []*Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		for i, r := range reports {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, r.Text()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Text renders the report in the layout of the manual stdin check: code,
// input, output, errors, exit code and a closing hint.
func (r *Report) Text() string {
	var b strings.Builder
	if r.Name != "" {
		fmt.Fprintf(&b, "%s\n", headingStyle.Render("== "+r.Name+" =="))
	}
	if r.Code != "" {
		fmt.Fprintf(&b, "%s\n%s\n", headingStyle.Render("Code to execute:"), r.Code)
	} else if len(r.Command) > 0 {
		fmt.Fprintf(&b, "%s\n%s\n", headingStyle.Render("Command:"), strings.Join(r.Command, " "))
	}
	fmt.Fprintf(&b, "\n%s\n%q\n", headingStyle.Render("Input (stdin):"), r.Input)

	if r.Error != "" {
		fmt.Fprintf(&b, "\n%s %s\n", failStyle.Render("ERROR:"), r.Error)
		return b.String()
	}

	fmt.Fprintf(&b, "\n%s\n%s", headingStyle.Render("Output:"), r.Stdout)
	if !strings.HasSuffix(r.Stdout, "\n") {
		b.WriteString("\n")
	}
	if r.Stderr != "" {
		fmt.Fprintf(&b, "%s\n%s", headingStyle.Render("Errors:"), r.Stderr)
		if !strings.HasSuffix(r.Stderr, "\n") {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "%s %d\n\n", headingStyle.Render("Exit code:"), r.ExitCode)

	switch r.Verdict {
	case VerdictPass:
		fmt.Fprintf(&b, "%s found %q in the output, stdin works.\n", passStyle.Render("PASS"), r.Expect)
	case VerdictFail:
		fmt.Fprintf(&b, "%s %q not found in the output.\n", failStyle.Render("FAIL"), r.Expect)
	default:
		fmt.Fprintf(&b, "%s\n", hintStyle.Render("Inspect the output above to confirm the child read its input."))
	}
	return b.String()
}
