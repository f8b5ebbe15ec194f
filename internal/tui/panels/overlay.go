package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OverlayLine is one piece of overlay text and the hex colour it is drawn in.
type OverlayLine struct {
	Label string // "quirky", "glitch"
	Text  string
	Color string
}

var (
	subtitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// RenderVisor renders the stand-in for the display surface: the spectrum row,
// the current subtitle lines centred, and the live overlays, padded to height
// rows.
func RenderVisor(spectrum string, subtitle []string, overlays []OverlayLine, width, height int) string {
	rows := []string{spectrum, ""}

	for _, line := range subtitle {
		rows = append(rows, subtitleStyle.Width(width).Align(lipgloss.Center).Render(line))
	}
	if len(subtitle) > 0 {
		rows = append(rows, "")
	}

	for _, o := range overlays {
		text := lipgloss.NewStyle().Foreground(lipgloss.Color(o.Color)).Render(o.Text)
		rows = append(rows, labelStyle.Render(o.Label+": ")+text)
	}

	if len(rows) > height {
		rows = rows[:height]
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}
