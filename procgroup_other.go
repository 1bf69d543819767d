//go:build !unix

package piperun

import "os/exec"

// killProcessGroupOnCancel leaves the default cancellation in place: only the
// child itself is killed and WaitDelay bounds the drain.
func killProcessGroupOnCancel(cmd *exec.Cmd) {}
