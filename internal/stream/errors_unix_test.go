//go:build !windows

package stream

import "syscall"

var errWouldBlock error = syscall.EAGAIN
