package piperun

import "time"

// ExecutionResult is everything observed from one finished child process.
// Stdout and Stderr hold the complete streams up to termination and are
// never shared with the Runner.
type ExecutionResult struct {
	RunID    string
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Success reports whether the child exited with status zero.
func (r ExecutionResult) Success() bool {
	return r.ExitCode == 0
}
