// Package supervisor launches and tends the external recognizer process.
// The child writes keyword lines to a pipe whose read end is handed to a
// stream reader; a waiter goroutine reaps the child as soon as it exits.
package supervisor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
)

// DefaultGrace is how long Terminate waits after SIGTERM before killing.
const DefaultGrace = 3 * time.Second

// Config describes the recognizer command.
type Config struct {
	Command string
	Args    []string
	Dir     string
	Env     []string  // extra KEY=VALUE pairs on top of the parent environment
	Stderr  io.Writer // child stderr; nil discards it
}

// LaunchError reports a failure to bring the recognizer up. Op is "pipe" or
// "start".
type LaunchError struct {
	Op      string
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("supervisor: %s %s: %v", e.Op, e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Handle is a running recognizer. The read end returned by Stdout is owned
// by whoever consumes it; the Handle never reads from it.
type Handle struct {
	cmd    *exec.Cmd
	stdout *os.File
	events chan<- loop.LogEntry
	done   chan struct{}

	// mu protects alive and exitErr
	mu      sync.Mutex
	alive   bool
	exitErr error
}

// Launch starts cfg.Command with its stdout redirected into a fresh pipe and
// unbuffered output requested through PYTHONUNBUFFERED. Lifecycle messages
// are sent non-blockingly on events when it is non-nil.
func Launch(cfg Config, events chan<- loop.LogEntry) (*Handle, error) {
	if cfg.Command == "" {
		return nil, &LaunchError{Op: "start", Err: errors.New("no command configured")}
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, &LaunchError{Op: "pipe", Command: cfg.Command, Err: err}
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")
	cmd.Env = append(cmd.Env, cfg.Env...)
	cmd.Stdout = w
	cmd.Stderr = cfg.Stderr

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, &LaunchError{Op: "start", Command: cfg.Command, Err: err}
	}
	// The child holds its own copy; ours would keep EOF from ever arriving.
	w.Close()

	h := &Handle{
		cmd:    cmd,
		stdout: r,
		events: events,
		done:   make(chan struct{}),
		alive:  true,
	}
	h.emit(loop.LogSupervisor, fmt.Sprintf("Recognizer started: %s (pid %d)", cfg.Command, cmd.Process.Pid))
	go h.wait()
	return h, nil
}

// Stdout returns the read end of the recognizer's output pipe. It supports
// read deadlines.
func (h *Handle) Stdout() *os.File {
	return h.stdout
}

// PID returns the child's process id.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Alive reports whether the child has not yet been reaped.
func (h *Handle) Alive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alive
}

// Done is closed once the child has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the child's exit error once Done is closed. A clean exit and a
// still-running child both return nil.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitErr
}

// Terminate asks the child to exit with SIGTERM, escalates to SIGKILL after
// grace, and returns once the child has been reaped. Calling it on an exited
// child, or more than once, is a no-op.
func (h *Handle) Terminate(grace time.Duration) error {
	select {
	case <-h.done:
		return nil
	default:
	}

	// Signal may fail if the child exits concurrently; the wait below settles it.
	_ = h.cmd.Process.Signal(syscall.SIGTERM)

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-h.done:
		return nil
	case <-timer.C:
	}

	h.emit(loop.LogSupervisor, fmt.Sprintf("Recognizer ignored SIGTERM for %s, killing pid %d", grace, h.PID()))
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("supervisor: kill pid %d: %w", h.PID(), err)
	}
	<-h.done
	return nil
}

func (h *Handle) wait() {
	err := h.cmd.Wait()

	h.mu.Lock()
	h.alive = false
	h.exitErr = err
	h.mu.Unlock()

	if err != nil {
		h.emit(loop.LogRecognizerExit, fmt.Sprintf("Recognizer exited: %v", err))
	} else {
		h.emit(loop.LogRecognizerExit, "Recognizer exited")
	}
	close(h.done)
}

func (h *Handle) emit(kind loop.LogKind, msg string) {
	if h.events == nil {
		return
	}
	entry := loop.LogEntry{
		Kind:      kind,
		Timestamp: time.Now(),
		Message:   msg,
	}
	select {
	case h.events <- entry:
	default:
	}
}
