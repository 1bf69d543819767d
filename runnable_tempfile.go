//go:build !linux && !android

package piperun

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/sa6mwa/piperun/port"
)

// runnable always lives in a temporary file on platforms without
// memfd_create(2).
type runnable struct {
	payload       []byte
	name          string
	sha256hex     string
	deleteOnClose bool
}

var _ port.Runnable = (*runnable)(nil)

func (r *runnable) IsMemfd() bool { return false }

func (r *runnable) Name() string { return r.name }

func (r *runnable) execTarget() (string, []*os.File) { return r.name, nil }

func (r *runnable) switchToTemporaryFile() error {
	return ErrNotAnInMemoryFD
}

func (r *runnable) Close() error {
	if r.deleteOnClose && r.name != "" {
		if err := os.Remove(r.name); err != nil {
			return err
		}
		r.deleteOnClose = false
	}
	return nil
}

// Open writes executablePayload to a temporary executable and returns a
// handle whose Name points at it. The file is removed on Close.
func Open(executablePayload []byte) (port.Runnable, error) {
	if len(executablePayload) == 0 {
		return nil, ErrPayloadIsEmpty
	}
	sum := sha256.Sum256(executablePayload)
	r := &runnable{
		payload:   executablePayload,
		sha256hex: hex.EncodeToString(sum[:]),
	}
	tmpf, err := os.CreateTemp("", r.sha256hex+"-*")
	if err != nil {
		return nil, err
	}
	name := tmpf.Name()
	cleanup := true
	defer func() {
		if cleanup {
			tmpf.Close()
			os.Remove(name)
		}
	}()
	if _, err := tmpf.Write(r.payload); err != nil {
		return nil, fmt.Errorf("unable to write to temporary file: %w", err)
	}
	if err := tmpf.Close(); err != nil {
		return nil, fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Chmod(name, 0o700); err != nil {
		return nil, fmt.Errorf("chmod +x: %w", err)
	}
	r.name = name
	r.deleteOnClose = true
	cleanup = false
	return r, nil
}

func isExecRefused(runErr error) bool {
	return errors.Is(runErr, os.ErrPermission)
}
