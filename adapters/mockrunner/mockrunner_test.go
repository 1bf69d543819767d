package mockrunner

import (
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"
)

func TestRunnerStartRecordsCallMetadata(t *testing.T) {
	runner := New(func(cmd *exec.Cmd) error {
		if cmd.Path != "first-path" {
			t.Fatalf("unexpected command path: %q", cmd.Path)
		}
		return nil
	})

	cmd := &exec.Cmd{Path: "first-path"}

	if err := runner.Start(cmd); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if runner.Calls != 1 {
		t.Fatalf("Calls = %d, want 1", runner.Calls)
	}
	if len(runner.Paths) != 1 || runner.Paths[0] != "first-path" {
		t.Fatalf("Paths recorded %v, want [first-path]", runner.Paths)
	}
	if len(runner.Inputs) != 1 || runner.Inputs[0] != nil {
		t.Fatalf("Inputs recorded %q, want [nil]", runner.Inputs)
	}
	if remaining := runner.Remaining(); remaining != 0 {
		t.Fatalf("Remaining() = %d, want 0", remaining)
	}
}

func TestRunnerStartRecordsStdin(t *testing.T) {
	runner := New(func(cmd *exec.Cmd) error {
		b, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			t.Fatalf("read stdin: %v", err)
		}
		if string(b) != "Alice\n25\n" {
			t.Fatalf("behavior saw stdin %q", b)
		}
		return nil
	})
	cmd := &exec.Cmd{Path: "greeter", Stdin: strings.NewReader("Alice\n25\n")}
	if err := runner.Start(cmd); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if got := string(runner.Inputs[0]); got != "Alice\n25\n" {
		t.Fatalf("Inputs[0] = %q", got)
	}
}

func TestRunnerStartSequentialBehaviors(t *testing.T) {
	sentinel := errors.New("sentinel")
	runner := New(
		func(cmd *exec.Cmd) error {
			if cmd.Path != "first" {
				t.Fatalf("first behavior got path %q", cmd.Path)
			}
			return nil
		},
		func(cmd *exec.Cmd) error {
			if cmd.Path != "second" {
				t.Fatalf("second behavior got path %q", cmd.Path)
			}
			return sentinel
		},
	)

	if err := runner.Start(&exec.Cmd{Path: "first"}); err != nil {
		t.Fatalf("first Start returned error: %v", err)
	}

	if err := runner.Start(&exec.Cmd{Path: "second"}); !errors.Is(err, sentinel) {
		t.Fatalf("second Start error = %v, want sentinel", err)
	}

	if err := runner.Start(&exec.Cmd{Path: "third"}); err != nil {
		t.Fatalf("third Start returned error: %v", err)
	}

	if runner.Calls != 3 {
		t.Fatalf("Calls = %d, want 3", runner.Calls)
	}

	wantPaths := []string{"first", "second", "third"}
	if len(runner.Paths) != len(wantPaths) {
		t.Fatalf("Paths length = %d, want %d", len(runner.Paths), len(wantPaths))
	}
	for i, want := range wantPaths {
		if got := runner.Paths[i]; got != want {
			t.Fatalf("Paths[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestRunnerWaitReturnsWaitErr(t *testing.T) {
	sentinel := errors.New("copy failed")
	runner := New()
	runner.WaitErr = sentinel
	if err := runner.Wait(&exec.Cmd{}); !errors.Is(err, sentinel) {
		t.Fatalf("Wait error = %v, want sentinel", err)
	}
	if runner.Waits != 1 {
		t.Fatalf("Waits = %d, want 1", runner.Waits)
	}
}
