//go:build windows

package stream

import "os"

var errWouldBlock error = os.ErrDeadlineExceeded
