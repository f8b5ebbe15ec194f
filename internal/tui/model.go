package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
	"github.com/LISSConsulting/LISSTech.Visor/internal/tui/components"
)

// frameInterval is how often the visor panel is redrawn from the Display.
const frameInterval = 200 * time.Millisecond

// Model is the root bubbletea model for the visor dashboard.
type Model struct {
	events  <-chan loop.LogEntry
	display *Display

	logView components.LogView
	layout  Layout
	theme   Theme
	width   int
	height  int

	title   string
	workDir string

	// Counters derived from the event stream
	plays       int
	misses      int
	quirky      int
	glitches    int
	glitchStage int
	streamsLost int

	startedAt time.Time
	now       time.Time

	// quit cancels the run context; called once on q/ctrl+c.
	quit     func()
	stopping bool

	err  error
	done bool
}

// New creates the dashboard model. display may be nil, in which case the
// visor panel stays empty. quit, if non-nil, is called once when the user
// quits so the control loop shuts down with the UI.
func New(events <-chan loop.LogEntry, display *Display, accentColor, title, workDir string, quit func()) Model {
	now := time.Now()
	layout := Calculate(80, 24)
	return Model{
		events:    events,
		display:   display,
		logView:   components.NewLogView(layout.Log.Width, layout.Log.Height),
		layout:    layout,
		theme:     NewTheme(accentColor),
		width:     80,
		height:    24,
		title:     title,
		workDir:   workDir,
		startedAt: now,
		now:       now,
		quit:      quit,
	}
}

// Err returns any error recorded from the loop.
func (m Model) Err() error { return m.err }

// Init returns the initial commands: event listener and frame clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), frameCmd())
}

// frameCmd schedules the next redraw.
func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// waitForEvent blocks on the event channel and returns the next message.
func waitForEvent(ch <-chan loop.LogEntry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return loopDoneMsg{}
		}
		return logEntryMsg(entry)
	}
}
