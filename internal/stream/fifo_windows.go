//go:build windows

package stream

import "errors"

// FIFO is unavailable on Windows.
type FIFO struct {
	Source
	path string
}

// OpenFIFO always fails on Windows: named pipes there have different
// semantics and the recognizer does not create them.
func OpenFIFO(path string) (*FIFO, error) {
	return nil, errors.New("stream: named pipes are not supported on windows")
}

// Path returns the filesystem path of the pipe.
func (f *FIFO) Path() string {
	return f.path
}
