//go:build !linux && !android

package piperun

import (
	"context"
	"os"
	"testing"
)

func TestOpenWritesExecutableTempfile(t *testing.T) {
	f, err := Open([]byte("#!/bin/sh\necho ok\n"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	name := f.Name()
	if f.IsMemfd() {
		t.Fatalf("tempfile runnable reports memfd")
	}
	info, err := os.Stat(name)
	if err != nil {
		t.Fatalf("stat temporary file: %v", err)
	}
	if info.Mode().Perm()&0o700 != 0o700 {
		t.Fatalf("temporary file not executable: %v", info.Mode())
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close runnable: %v", err)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Fatalf("temporary file %q still present", name)
	}
}

func TestRunPayloadFromTempfile(t *testing.T) {
	res, err := RunPayload(context.Background(), []byte("#!/bin/sh\nread name\necho \"hi $name\"\n"), []byte("Alice\n"))
	if err != nil {
		t.Fatalf("RunPayload returned error: %v", err)
	}
	if string(res.Stdout) != "hi Alice\n" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
}
