package port

import (
	"os/exec"
)

// CommandRunner abstracts process start and reaping so runners can be plugged
// in across packages without depending on a specific adapter implementation.
// Start and Wait are kept apart so callers can tell a launch failure from a
// failure observed while the child was running.
type CommandRunner interface {
	Start(cmd *exec.Cmd) error
	Wait(cmd *exec.Cmd) error
}
