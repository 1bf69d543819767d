package piperun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/sa6mwa/piperun/adapters/commandrunner"
	"github.com/sa6mwa/piperun/adapters/streamcapture"
	"github.com/sa6mwa/piperun/port"
)

// Runner executes one child process per call, feeding it a fixed input and
// collecting its stdout, stderr and exit code. A Runner holds no per-call
// state and may be shared between goroutines.
type Runner struct {
	runner    port.CommandRunner
	timeout   time.Duration
	waitDelay time.Duration
	dir       string
	env       []string
	logger    Logger
}

type Option func(*Runner)

// DefaultWaitDelay bounds the drain after a deadline kill when WithWaitDelay
// was not given, so a descendant that left the process group and kept the
// pipes open cannot hold Run past the deadline.
const DefaultWaitDelay = time.Second

// WithCommandRunner replaces the os/exec backed runner, mostly for tests.
func WithCommandRunner(cr port.CommandRunner) Option {
	return func(r *Runner) {
		if cr != nil {
			r.runner = cr
		}
	}
}

// WithTimeout kills the child, and every process in its process group, and
// fails with ErrTimeoutFailure if it has not terminated after d. Zero
// disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithWaitDelay bounds how long Wait keeps draining stdout/stderr after the
// child exited or was killed, see (*exec.Cmd).WaitDelay. Output cut short
// this way is reported as ErrIOFailure. When a deadline applies and no delay
// is set, DefaultWaitDelay is used.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) { r.waitDelay = d }
}

// WithDir sets the working directory of the child.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// WithEnv appends KEY=VALUE entries to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *Runner) { r.env = append(r.env, env...) }
}

func WithLogger(l Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Runner using os/exec with no deadline.
func New(opts ...Option) *Runner {
	r := &Runner{
		runner: commandrunner.Default,
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the Runner used by the package level helpers.
var Default = New()

// Run is shorthand for Default.Run.
func Run(ctx context.Context, command []string, input []byte) (ExecutionResult, error) {
	return Default.Run(ctx, command, input)
}

// Run starts command[0] with the remaining elements as arguments, writes
// input to its stdin and closes it, and blocks until the child has exited and
// both output streams are drained. A nil input behaves exactly like an empty
// one. A non-zero exit status is returned in the result, not as an error;
// errors are *LaunchError, *IOError or *TimeoutError (or wrap ctx.Err() on
// cancellation).
//
//	res, err := piperun.Run(ctx, []string{"python3", "-c", code}, []byte("Alice\n25\n"))
//	if err != nil {
//		return err
//	}
//	fmt.Printf("%s(exit %d)\n", res.Stdout, res.ExitCode)
func (r *Runner) Run(ctx context.Context, command []string, input []byte) (ExecutionResult, error) {
	return r.run(ctx, command, input, nil)
}

// run is Run with extra descriptors handed to the child from fd 3 up.
func (r *Runner) run(ctx context.Context, command []string, input []byte, extraFiles []*os.File) (ExecutionResult, error) {
	if len(command) == 0 {
		return ExecutionResult{}, &LaunchError{Err: ErrEmptyCommand}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	runID := uuid.New().String()
	path := command[0]
	cmd := r.buildCmd(runCtx, command, input, extraFiles)
	capture := streamcapture.New()
	if err := capture.Attach(cmd); err != nil {
		return ExecutionResult{}, err
	}

	r.logger.Debug("starting child", map[string]any{
		"run_id":      runID,
		"path":        path,
		"args":        command[1:],
		"input_bytes": len(input),
	})
	start := time.Now()
	if err := r.runner.Start(cmd); err != nil {
		capture.Restore()
		r.logger.Debug("child did not start", map[string]any{"run_id": runID, "error": err.Error()})
		if ctxErr := r.contextError(ctx, runCtx, path); ctxErr != nil {
			return ExecutionResult{}, ctxErr
		}
		return ExecutionResult{}, &LaunchError{Path: path, Err: err}
	}
	waitErr := r.runner.Wait(cmd)
	stdout, stderr := capture.Finish()
	elapsed := time.Since(start)

	if err := r.classify(ctx, runCtx, path, waitErr); err != nil {
		r.logger.Debug("child failed", map[string]any{
			"run_id":   runID,
			"error":    err.Error(),
			"duration": elapsed.String(),
		})
		return ExecutionResult{}, err
	}

	res := ExecutionResult{
		RunID:    runID,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCodeFrom(waitErr, cmd.ProcessState),
		Duration: elapsed,
	}
	r.logger.Debug("child exited", map[string]any{
		"run_id":       runID,
		"exit_code":    res.ExitCode,
		"stdout_bytes": len(res.Stdout),
		"stderr_bytes": len(res.Stderr),
		"duration":     elapsed.String(),
	})
	return res, nil
}

func (r *Runner) buildCmd(ctx context.Context, command []string, input []byte, extraFiles []*os.File) *exec.Cmd {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = r.dir
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	// Never inherit the parent's stdin; an empty reader gives the child EOF
	// as soon as it reads.
	cmd.Stdin = bytes.NewReader(input)
	cmd.ExtraFiles = extraFiles
	cmd.WaitDelay = r.waitDelay
	if ctx.Done() != nil {
		killProcessGroupOnCancel(cmd)
	}
	if _, ok := ctx.Deadline(); ok && cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	return cmd
}

// classify maps the error from Wait onto the error taxonomy. An exit status
// is not an error unless the child was killed because runCtx ended.
func (r *Runner) classify(parent, runCtx context.Context, path string, waitErr error) error {
	if waitErr == nil {
		return nil
	}
	if err := r.contextError(parent, runCtx, path); err != nil {
		return err
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return nil
	}
	return &IOError{Path: path, Err: waitErr}
}

// contextError returns a *TimeoutError if runCtx hit a deadline, the wrapped
// cancellation if it was cancelled, and nil while it is still live.
func (r *Runner) contextError(parent, runCtx context.Context, path string) error {
	ctxErr := runCtx.Err()
	if ctxErr == nil {
		return nil
	}
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		timeout := r.timeout
		if parent.Err() != nil {
			timeout = 0
		}
		return &TimeoutError{Path: path, Timeout: timeout, Err: ctxErr}
	}
	return fmt.Errorf("piperun: %s: %w", path, ctxErr)
}

func exitCodeFrom(waitErr error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode()
	}
	return -1
}
