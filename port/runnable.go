package port

import (
	"io"
)

// Runnable describes an executable payload exposed through a path the
// operating system can exec. Implementations manage the lifecycle of the
// backing file descriptor or temporary file.
type Runnable interface {
	io.Closer
	Name() string
	IsMemfd() bool
}
