//go:build unix

package piperun

import (
	"context"
	"os/exec"
	"testing"
)

func TestKillProcessGroupOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := exec.CommandContext(ctx, "/bin/true")
	killProcessGroupOnCancel(cmd)
	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Fatalf("child not placed in its own process group: %#v", cmd.SysProcAttr)
	}
	if err := cmd.Cancel(); err != nil {
		t.Fatalf("Cancel before Start returned %v", err)
	}
}

func TestBuildCmdProcessGroupOnlyWhenCancellable(t *testing.T) {
	r := New()
	cmd := r.buildCmd(context.Background(), shell("true"), nil, nil)
	if cmd.SysProcAttr != nil && cmd.SysProcAttr.Setpgid {
		t.Fatalf("uncancellable run placed in a new process group")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd = r.buildCmd(ctx, shell("true"), nil, nil)
	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Fatalf("cancellable run not placed in a new process group")
	}
}
