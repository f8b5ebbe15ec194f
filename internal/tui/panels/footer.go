package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

// FooterProps holds all data needed to render the footer bar.
type FooterProps struct {
	Following bool
	Stopping  bool
}

// RenderFooter renders the footer: follow state on the left, key hints on
// the right.
func RenderFooter(props FooterProps, width int) string {
	left := "log: paused"
	if props.Following {
		left = "log: following"
	}

	right := "f:follow  j/k:scroll  q:quit"
	if props.Stopping {
		right = "⏹ stopping…"
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}

	return footerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
