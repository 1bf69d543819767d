package streamcapture

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
	"slices"
	"sync"

	"github.com/sa6mwa/piperun/port"
)

var (
	ErrNilCommand        = errors.New("nil command")
	ErrWritersConfigured = errors.New("capture requested with configured stdout or stderr")
)

// capture implements port.StreamCapture. Each buffer has exactly one writer
// (the os/exec copy goroutine for that stream) and is only read after Wait.
type capture struct {
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	attached bool
	reset    func()
	once     sync.Once
}

// New constructs a new port.StreamCapture implementation.
func New() port.StreamCapture {
	return &capture{}
}

func (c *capture) Attach(cmd *exec.Cmd) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if cmd.Stdout != nil || cmd.Stderr != nil {
		return ErrWritersConfigured
	}
	c.stdout.Grow(128)
	var origStdout, origStderr io.Writer = cmd.Stdout, cmd.Stderr
	cmd.Stdout = &c.stdout
	cmd.Stderr = &c.stderr
	c.reset = func() {
		cmd.Stdout = origStdout
		cmd.Stderr = origStderr
	}
	c.attached = true
	return nil
}

// Finish detaches the buffers and returns copies of everything captured.
// Both slices are non-nil once attached so callers can compare results
// without special-casing empty streams.
func (c *capture) Finish() ([]byte, []byte) {
	c.Restore()
	if !c.attached {
		return nil, nil
	}
	stdout := slices.Clone(c.stdout.Bytes())
	stderr := slices.Clone(c.stderr.Bytes())
	if stdout == nil {
		stdout = []byte{}
	}
	if stderr == nil {
		stderr = []byte{}
	}
	return stdout, stderr
}

func (c *capture) Restore() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		if c.reset != nil {
			c.reset()
			c.reset = nil
		}
	})
}
