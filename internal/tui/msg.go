package tui

import (
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
)

// logEntryMsg wraps a LogEntry as a bubbletea message.
type logEntryMsg loop.LogEntry

// loopDoneMsg signals the event channel closed.
type loopDoneMsg struct{}

// loopErrMsg carries an error from the control loop.
type loopErrMsg struct{ err error }

// frameMsg redraws the visor panel and the clock.
type frameMsg time.Time
