// Package panels renders the fixed regions of the visor dashboard.
package panels

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HeaderProps holds all data needed to render the header bar.
type HeaderProps struct {
	Title       string
	WorkDir     string
	Asset       string // animation currently playing
	Plays       int
	Misses      int
	Quirky      int
	GlitchStage int
	Glitches    int
	StreamsLost int
	Elapsed     time.Duration
	Clock       time.Time
}

// AbbreviatePath returns a display-friendly path, replacing the home directory
// with "~" and converting backslashes to forward slashes.
func AbbreviatePath(path string) string {
	if path == "" {
		return ""
	}
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(path, home) {
		path = "~" + path[len(home):]
	}
	return strings.ReplaceAll(path, "\\", "/")
}

// FormatElapsed renders a duration as a compact string: "5s", "2m30s", "1h15m".
func FormatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// RenderHeader renders the header bar. accentStyle is applied to the full
// header width.
func RenderHeader(props HeaderProps, width int, accentStyle lipgloss.Style) string {
	name := "visor"
	if props.Title != "" {
		name = props.Title
	}

	parts := []string{"◉ " + name}
	if props.WorkDir != "" {
		parts = append(parts, "dir: "+AbbreviatePath(props.WorkDir))
	}

	asset := "—"
	if props.Asset != "" {
		asset = props.Asset
	}
	parts = append(parts,
		"now: "+asset,
		fmt.Sprintf("plays: %d", props.Plays),
		fmt.Sprintf("misses: %d", props.Misses),
		fmt.Sprintf("quirky: %d", props.Quirky),
		fmt.Sprintf("glitch: %d @ stage %d", props.Glitches, props.GlitchStage),
	)
	if props.StreamsLost > 0 {
		parts = append(parts, fmt.Sprintf("lost: %d", props.StreamsLost))
	}
	if props.Elapsed > 0 {
		parts = append(parts, "up: "+FormatElapsed(props.Elapsed))
	}
	if !props.Clock.IsZero() {
		parts = append(parts, props.Clock.Format("15:04"))
	}

	content := strings.Join(parts, "  │  ")
	if r := []rune(content); width > 0 && len(r) > width {
		content = string(r[:width-1]) + "…"
	}
	return accentStyle.Width(width).Render(content)
}
