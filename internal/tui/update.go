package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case logEntryMsg:
		return m.handleLogEntry(msg)

	case frameMsg:
		m.now = time.Time(msg)
		return m, frameCmd()

	case loopDoneMsg:
		m.done = true
		return m, tea.Quit

	case loopErrMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout = Calculate(msg.Width, msg.Height)
	if !m.layout.TooSmall {
		m.logView = m.logView.SetSize(m.layout.Log.Width, m.layout.Log.Height)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if !IsGlobalKey(key) {
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "ctrl+c":
		if m.quit != nil && !m.stopping {
			m.quit()
		}
		m.stopping = true
		return m, tea.Quit
	case "f":
		m.logView = m.logView.ToggleFollow()
	}
	return m, nil
}

func (m Model) handleLogEntry(msg logEntryMsg) (tea.Model, tea.Cmd) {
	entry := loop.LogEntry(msg)

	switch entry.Kind {
	case loop.LogPlay:
		m.plays++
	case loop.LogNoAsset:
		m.misses++
	case loop.LogQuirky:
		m.quirky++
	case loop.LogGlitch:
		m.glitches++
		m.glitchStage = entry.Stage
	case loop.LogKeyword, loop.LogSubtitle:
		m.glitchStage = 0
	case loop.LogStreamClosed:
		m.streamsLost++
	}

	m.logView = m.logView.AppendLine(m.theme.RenderLogLine(entry, m.layout.Log.Width))

	return m, waitForEvent(m.events)
}
