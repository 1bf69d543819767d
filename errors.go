package piperun

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPayloadIsEmpty  = errors.New("piperun: payload is empty")
	ErrNotAnInMemoryFD = errors.New("piperun: not an in-memory file descriptor")
	ErrEmptyCommand    = errors.New("piperun: empty command")
	ErrLaunchFailure   = errors.New("piperun: launch failure")
	ErrIOFailure       = errors.New("piperun: i/o failure")
	ErrTimeoutFailure  = errors.New("piperun: timeout")
)

// LaunchError reports that the child could not be started at all: the
// executable is missing, not executable, or the command was empty.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("piperun: launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

func (e *LaunchError) Is(target error) bool {
	return target == ErrLaunchFailure
}

// IOError reports a fault while feeding stdin or draining stdout/stderr that
// is not explained by the child terminating.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("piperun: i/o with %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool {
	return target == ErrIOFailure
}

// TimeoutError reports that the deadline expired and the child was killed.
// Timeout is zero when the deadline came from the caller's context.
type TimeoutError struct {
	Path    string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Timeout > 0 {
		return fmt.Sprintf("piperun: %s killed after %s", e.Path, e.Timeout)
	}
	return fmt.Sprintf("piperun: %s killed at deadline", e.Path)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeoutFailure
}
