package piperun

import (
	"context"
	"errors"
	"fmt"
)

// RunPayload is shorthand for Default.RunPayload.
func RunPayload(ctx context.Context, payload []byte, input []byte, args ...string) (ExecutionResult, error) {
	return Default.RunPayload(ctx, payload, input, args...)
}

// RunPayload runs an inline executable (typically a shebang script) the
// same way Run runs a named one. If the kernel refuses to exec the in-memory
// copy, the payload is moved to a temporary file and started once more from
// there.
func (r *Runner) RunPayload(ctx context.Context, payload []byte, input []byte, args ...string) (ExecutionResult, error) {
	f, err := Open(payload)
	if err != nil {
		return ExecutionResult{}, &LaunchError{Path: "payload", Err: err}
	}
	defer f.Close()
	rn := f.(*runnable)

	path, files := rn.execTarget()
	res, err := r.run(ctx, payloadCommand(path, args), input, files)
	if err == nil || !rn.IsMemfd() || !errors.Is(err, ErrLaunchFailure) || !isExecRefused(err) {
		return res, err
	}
	r.logger.Debug("memfd exec refused, retrying from temporary file", map[string]any{
		"path":  rn.Name(),
		"error": err.Error(),
	})
	if serr := rn.switchToTemporaryFile(); serr != nil {
		return res, fmt.Errorf("memfd execution failed: %w; fallback to tempfile failed: %w", err, serr)
	}
	path, files = rn.execTarget()
	return r.run(ctx, payloadCommand(path, args), input, files)
}

func payloadCommand(name string, args []string) []string {
	return append([]string{name}, args...)
}
