package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
)

// Theme holds accent-color-derived styles.
type Theme struct {
	accentStyle lipgloss.Style // header background
	borderStyle lipgloss.Style // visor panel border
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#FF1493").
// If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		accentStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c),
	}
}

// AccentHeaderStyle returns the style for the header bar.
func (t Theme) AccentHeaderStyle() lipgloss.Style {
	return t.accentStyle
}

// BorderStyle returns the accent-coloured border drawn around the visor panel.
func (t Theme) BorderStyle() lipgloss.Style {
	return t.borderStyle
}

// RenderLogLine renders a loop.LogEntry as a single terminal line no wider
// than width (when width > 0). Console mode and the dashboard log share it.
func (t Theme) RenderLogLine(entry loop.LogEntry, width int) string {
	ts := timestampStyle.Render(fmt.Sprintf("[%s]", entry.Timestamp.Format("15:04:05")))

	text := singleLine(entry.Message)
	switch entry.Kind {
	case loop.LogGlitch:
		text = fmt.Sprintf("%s  (stage %d, %s)", text, entry.Stage, entry.Interval)
	case loop.LogQuirky:
		if entry.Interval > 0 {
			text = fmt.Sprintf("%s  (after %s)", text, entry.Interval)
		}
	case loop.LogSubtitle:
		text = "“" + text + "”"
	}

	if width > 0 {
		// "[15:04:05]  " plus icon and a space
		text = truncate(text, max(width-14, 20))
	}

	return fmt.Sprintf("%s  %s %s", ts, kindIcon(entry.Kind), kindStyle(entry.Kind).Render(text))
}
