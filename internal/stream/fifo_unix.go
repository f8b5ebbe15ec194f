//go:build !windows

package stream

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// FIFO is a named pipe opened for reading. It holds its own write end open
// so readers never observe end-of-stream while writers come and go; Close
// releases the descriptor and removes the pipe from the filesystem.
type FIFO struct {
	*os.File
	path string
}

// OpenFIFO creates the named pipe at path if needed and opens it. An existing
// path that is not a FIFO is an error.
func OpenFIFO(path string) (*FIFO, error) {
	if err := unix.Mkfifo(path, 0666); err != nil && !errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("stream: mkfifo %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stream: stat %s: %w", path, err)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		return nil, fmt.Errorf("stream: %s exists and is not a named pipe", path)
	}

	// O_RDWR keeps a writer attached so the open does not block and reads
	// wait for data instead of returning EOF between writer sessions.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("stream: open %s: %w", path, err)
	}
	return &FIFO{File: f, path: path}, nil
}

// Path returns the filesystem path of the pipe.
func (f *FIFO) Path() string {
	return f.path
}

// Close closes the pipe and unlinks it.
func (f *FIFO) Close() error {
	err := f.File.Close()
	if rmErr := os.Remove(f.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
		err = fmt.Errorf("stream: remove %s: %w", f.path, rmErr)
	}
	return err
}
