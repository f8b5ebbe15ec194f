// Package components holds reusable bubbletea widgets for the visor dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultMaxLines bounds the scrollback kept by a LogView.
const DefaultMaxLines = 2000

// LogView is a scrollable log panel that wraps bubbles/viewport.
// In follow mode (default), new lines cause the view to auto-scroll to the
// bottom. Only the newest maxLines lines are retained.
type LogView struct {
	vp       viewport.Model
	lines    []string // rendered (pre-styled) lines
	maxLines int
	follow   bool
	width    int
	height   int
}

// NewLogView creates a LogView with the given dimensions, initially in follow
// mode and holding at most DefaultMaxLines lines.
func NewLogView(w, h int) LogView {
	return LogView{
		vp:       viewport.New(w, h),
		maxLines: DefaultMaxLines,
		follow:   true,
		width:    w,
		height:   h,
	}
}

// WithMaxLines returns a copy that keeps at most n lines; n <= 0 keeps all.
func (v LogView) WithMaxLines(n int) LogView {
	v.maxLines = n
	return v.trim()
}

// AppendLine appends a pre-rendered (styled) line to the log, dropping the
// oldest line once the cap is reached.
func (v LogView) AppendLine(rendered string) LogView {
	v.lines = append(v.lines, rendered)
	return v.trim()
}

func (v LogView) trim() LogView {
	if v.maxLines > 0 && len(v.lines) > v.maxLines {
		v.lines = append([]string(nil), v.lines[len(v.lines)-v.maxLines:]...)
	}
	v.vp.SetContent(strings.Join(v.lines, "\n"))
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Len returns the number of retained lines.
func (v LogView) Len() int {
	return len(v.lines)
}

// ToggleFollow switches follow mode on or off.
// When turned on, scrolls immediately to the bottom.
func (v LogView) ToggleFollow() LogView {
	v.follow = !v.follow
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// SetSize resizes the log view to the given dimensions.
func (v LogView) SetSize(w, h int) LogView {
	v.width = w
	v.height = h
	v.vp.Width = w
	v.vp.Height = h
	if v.follow {
		v.vp.GotoBottom()
	}
	return v
}

// Following reports whether follow mode is currently active.
func (v LogView) Following() bool {
	return v.follow
}

// Update handles bubbletea messages (scroll keys, mouse events).
func (v LogView) Update(msg tea.Msg) (LogView, tea.Cmd) {
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	// Scrolling away from the bottom by hand leaves follow mode; a resize
	// does not.
	if v.follow && !v.vp.AtBottom() {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			v.follow = false
		}
	}
	return v, cmd
}

// View renders the log view content.
func (v LogView) View() string {
	return v.vp.View()
}
