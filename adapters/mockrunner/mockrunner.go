package mockrunner

import (
	"bytes"
	"io"
	"os/exec"
	"slices"
	"sync"

	"github.com/sa6mwa/piperun/port"
)

// Behavior represents a single command start for the mock runner. It may
// write to cmd.Stdout/cmd.Stderr and read cmd.Stdin; a non-nil error is
// reported as a start failure.
type Behavior func(cmd *exec.Cmd) error

// Runner is a thread-safe mock implementation of port.CommandRunner.
type Runner struct {
	mu        sync.Mutex
	behaviors []Behavior
	Calls     int
	Waits     int
	Paths     []string
	Inputs    [][]byte
	// WaitErr is returned from every Wait call.
	WaitErr error
}

var _ port.CommandRunner = (*Runner)(nil)

// New constructs a Runner that will invoke behaviors sequentially for each call.
func New(behaviors ...Behavior) *Runner {
	return &Runner{behaviors: slices.Clone(behaviors)}
}

// Start records the call metadata, drains cmd.Stdin into Inputs and
// dispatches to the next behavior. The behavior sees a fresh reader over the
// same bytes.
func (r *Runner) Start(cmd *exec.Cmd) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls++
	r.Paths = append(r.Paths, cmd.Path)

	var input []byte
	if cmd.Stdin != nil {
		b, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return err
		}
		input = b
		cmd.Stdin = bytes.NewReader(b)
	}
	r.Inputs = append(r.Inputs, input)

	if len(r.behaviors) == 0 {
		return nil
	}
	behavior := r.behaviors[0]
	r.behaviors = r.behaviors[1:]
	return behavior(cmd)
}

// Wait records the call and returns WaitErr.
func (r *Runner) Wait(cmd *exec.Cmd) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Waits++
	return r.WaitErr
}

// Remaining returns the number of queued behaviors that have not yet been consumed.
func (r *Runner) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.behaviors)
}
