//go:build linux || android
// +build linux android

package piperun

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/sa6mwa/piperun/port"
)

// childMemfdPath is where the child finds the memfd once it is passed as its
// first extra file.
const childMemfdPath = "/proc/self/fd/3"

type runnable struct {
	payload       []byte
	file          *os.File
	name          string
	sha256hex     string
	deleteOnClose bool
}

var _ port.Runnable = (*runnable)(nil)

func (r *runnable) IsMemfd() bool {
	return strings.HasPrefix(r.name, "/proc/self/fd/")
}

func (r *runnable) ensureDigest() string {
	if r.sha256hex == "" {
		sum := sha256.Sum256(r.payload)
		r.sha256hex = hex.EncodeToString(sum[:])
	}
	return r.sha256hex
}

// switchToTemporaryFile moves the payload from the memfd to a temporary
// file with the user execute bit set, for hosts where exec of
// /proc/self/fd/N is refused.
func (r *runnable) switchToTemporaryFile() error {
	if !r.IsMemfd() {
		return ErrNotAnInMemoryFD
	}
	if len(r.payload) == 0 {
		return ErrPayloadIsEmpty
	}
	// Close any previous instance
	r.Close()
	return r.writeTemporaryFile()
}

func (r *runnable) writeTemporaryFile() error {
	tmpf, err := os.CreateTemp("", r.ensureDigest()+"-*")
	if err != nil {
		return err
	}
	r.name = tmpf.Name()
	r.deleteOnClose = true
	_, werr := tmpf.Write(r.payload)
	// the file must not stay open for writing or exec fails with ETXTBSY
	cerr := tmpf.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		if rerr := r.Close(); rerr != nil {
			return fmt.Errorf("unable to write to temporary file: %w; unable to remove temporary file: %w", werr, rerr)
		}
		return fmt.Errorf("unable to write to temporary file: %w", werr)
	}
	if err := os.Chmod(r.name, 0o0700); err != nil {
		if rerr := r.Close(); rerr != nil {
			return fmt.Errorf("unable to chmod temporary file: %w; unable to remove temporary file: %w", err, rerr)
		}
		return fmt.Errorf("chmod +x: %w", err)
	}
	return nil
}

// Name returns the path to exec: /proc/self/fd/N for a memfd or the
// temporary file otherwise. The memfd is close-on-exec, so a child started
// from /proc/self/fd/N must inherit it explicitly; RunPayload does that.
func (r *runnable) Name() string {
	return r.name
}

// execTarget returns the path a child should exec and the files it has to
// inherit for that path to resolve inside it.
func (r *runnable) execTarget() (string, []*os.File) {
	if r.IsMemfd() && r.file != nil {
		return childMemfdPath, []*os.File{r.file}
	}
	return r.name, nil
}

// Close releases the memfd, or removes the temporary file if one was
// created.
func (r *runnable) Close() error {
	var fileCloseErr error
	if r.file != nil {
		fileCloseErr = r.file.Close()
		r.file = nil
	}
	if r.deleteOnClose && r.name != "" {
		if err := os.Remove(r.name); err != nil {
			if fileCloseErr != nil {
				return fmt.Errorf("close error: %w; remove error: %w", fileCloseErr, err)
			}
			return err
		}
		r.deleteOnClose = false
	}
	return fileCloseErr
}

// Open exposes executablePayload (an ELF binary or a shebang script) as
// something exec can start, using a close-on-exec memfd_create(2) with the
// sha256 of the payload as its name. If memfd_create fails, the payload is
// written to a temporary file with the user execute bit set instead, removed
// again on Close. Use RunPayload to run it.
func Open(executablePayload []byte) (port.Runnable, error) {
	if len(executablePayload) == 0 {
		return nil, ErrPayloadIsEmpty
	}
	r := &runnable{payload: executablePayload}
	fd, err := unix.MemfdCreate(r.ensureDigest(), unix.MFD_CLOEXEC)
	if err != nil {
		// unable to create anonymous file, dump it as a temporary file instead
		if err := r.writeTemporaryFile(); err != nil {
			return nil, err
		}
		return r, nil
	}
	r.name = fmt.Sprintf("/proc/self/fd/%d", fd)
	r.file = os.NewFile(uintptr(fd), r.name)
	if _, err := r.file.Write(executablePayload); err != nil {
		if cerr := r.Close(); cerr != nil {
			return nil, fmt.Errorf("unable to write payload: %w; unable to close memfd: %w", err, cerr)
		}
		return nil, fmt.Errorf("unable to write payload: %w", err)
	}
	return r, nil
}

// isExecRefused reports whether the kernel refused to exec the payload path
// itself (noexec mounts, LSM denials, a writable memfd), which is worth one
// retry from a temporary file.
func isExecRefused(runErr error) bool {
	refused := func(err error) bool {
		return errors.Is(err, os.ErrPermission) || errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) || errors.Is(err, unix.ETXTBSY)
	}
	var pathErr *os.PathError
	if errors.As(runErr, &pathErr) {
		return refused(pathErr.Err)
	}
	var execErr *exec.Error
	if errors.As(runErr, &execErr) {
		return refused(execErr.Err)
	}
	return refused(runErr)
}
