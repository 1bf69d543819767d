//go:build unix

package piperun

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killProcessGroupOnCancel starts the child as leader of a new process group
// and makes context cancellation SIGKILL the whole group, so descendants
// holding the stdout/stderr pipes go down with the child.
func killProcessGroupOnCancel(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.ESRCH):
			return os.ErrProcessDone
		default:
			return cmd.Process.Kill()
		}
	}
}
