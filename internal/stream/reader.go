// Package stream frames raw byte sources into lines. A Reader waits on its
// source with a bounded deadline so it can observe shutdown, keeps partial
// lines across reads, and treats end-of-stream as permanent closure.
package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"syscall"
	"time"
)

// DefaultChunkSize is the number of bytes requested per read.
const DefaultChunkSize = 256

// Source is a byte stream that supports read deadlines. *os.File values
// returned by os.Pipe and OpenFIFO satisfy it.
type Source interface {
	io.ReadCloser
	SetReadDeadline(t time.Time) error
}

// Reader frames one Source into newline-terminated lines. A Reader is owned
// by a single goroutine.
type Reader struct {
	src    Source
	buf    []byte
	chunk  []byte
	closed bool
}

// NewReader creates a Reader over src. A chunkSize <= 0 selects
// DefaultChunkSize.
func NewReader(src Source, chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{
		src:   src,
		chunk: make([]byte, chunkSize),
	}
}

// Poll waits up to timeout for data, reads one chunk, and returns every line
// completed by it. Trailing CR/LF is trimmed and blank lines are dropped.
// Poll returns io.EOF once the source has reached end-of-stream; any
// unterminated remainder is returned as a final line at that point. Other
// errors are returned as-is and leave the Reader unusable.
func (r *Reader) Poll(timeout time.Duration) ([]string, error) {
	if r.closed {
		return nil, io.EOF
	}

	if timeout > 0 {
		// Sources that cannot take deadlines fall back to blocking reads.
		if err := r.src.SetReadDeadline(time.Now().Add(timeout)); err != nil && !errors.Is(err, os.ErrNoDeadline) {
			return nil, err
		}
	}

	n, err := r.src.Read(r.chunk)
	var lines []string
	if n > 0 {
		r.buf = append(r.buf, r.chunk[:n]...)
		lines = r.extract()
	}

	switch {
	case err == nil:
		return lines, nil
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, syscall.EAGAIN):
		return lines, nil
	case errors.Is(err, io.EOF):
		r.closed = true
		if rest := trimLine(r.buf); len(bytes.TrimSpace(rest)) > 0 {
			lines = append(lines, string(rest))
		}
		r.buf = nil
		return lines, io.EOF
	default:
		r.closed = true
		return lines, err
	}
}

// Buffered returns the number of bytes held for an unterminated line.
func (r *Reader) Buffered() int {
	return len(r.buf)
}

// Run polls until ctx is cancelled, the source closes, or a read fails,
// handing each line to emit. It returns nil on cancellation, io.EOF on
// closure, and the read error otherwise. Cancellation is observed within one
// timeout.
func (r *Reader) Run(ctx context.Context, timeout time.Duration, emit func(line string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		lines, err := r.Poll(timeout)
		for _, line := range lines {
			emit(line)
		}
		if err != nil {
			return err
		}
	}
}

// extract removes every complete line from the buffer.
func (r *Reader) extract() []string {
	var lines []string
	start := 0
	for {
		i := bytes.IndexByte(r.buf[start:], '\n')
		if i < 0 {
			break
		}
		line := trimLine(r.buf[start : start+i])
		start += i + 1
		if len(bytes.TrimSpace(line)) > 0 {
			lines = append(lines, string(line))
		}
	}
	if start > 0 {
		r.buf = append(r.buf[:0], r.buf[start:]...)
	}
	return lines
}

func trimLine(b []byte) []byte {
	return bytes.TrimRight(b, "\r\n")
}
