package port

import "os/exec"

// StreamCapture collects the stdout and stderr of a command into separate
// buffers. Implementations are provided by adapters/streamcapture.
type StreamCapture interface {
	Attach(cmd *exec.Cmd) error
	Finish() (stdout []byte, stderr []byte)
	Restore()
}
