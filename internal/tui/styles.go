// Package tui provides a bubbletea + lipgloss terminal dashboard for the
// visor, plus the line styling shared with console mode.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
)

// defaultAccentColor is the default accent color (neon pink).
const defaultAccentColor = "#FF1493"

var (
	colorWhite  = lipgloss.Color("#FAFAFA")
	colorGray   = lipgloss.Color("#888888")
	colorRed    = lipgloss.Color("#FF6B6B")
	colorOrange = lipgloss.Color("#FFA54F")
	colorPink   = lipgloss.Color(render.NeonPink.Hex())
	colorCyan   = lipgloss.Color(render.NeonCyan.Hex())
	colorPurple = lipgloss.Color("#B266FF") // NeonPurple is too dark on black terminals
	colorYellow = lipgloss.Color(render.NeonYellow.Hex())
	colorGreen  = lipgloss.Color(render.NeonGreen.Hex())
)

// Styles used across the TUI and console output. Accent-dependent styles
// live on Theme.
var (
	timestampStyle = lipgloss.NewStyle().Foreground(colorGray)
	infoStyle      = lipgloss.NewStyle().Foreground(colorWhite)
	keywordStyle   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	playStyle      = lipgloss.NewStyle().Foreground(colorGreen)
	idleStyle      = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	quirkyStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	glitchStyle    = lipgloss.NewStyle().Foreground(colorPurple)
	subtitleStyle  = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	streamStyle    = lipgloss.NewStyle().Foreground(colorOrange)
	errorStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	spectrumStyle  = lipgloss.NewStyle().Foreground(colorPink)
)

// kindIcon returns the glyph prefixed to a log line of the given kind.
func kindIcon(kind loop.LogKind) string {
	switch kind {
	case loop.LogKeyword:
		return "🎤"
	case loop.LogNoAsset:
		return "∅"
	case loop.LogPlay:
		return "▶"
	case loop.LogIdle:
		return "💤"
	case loop.LogQuirky:
		return "✨"
	case loop.LogGlitch:
		return "⚡"
	case loop.LogSubtitle:
		return "💬"
	case loop.LogStreamClosed:
		return "⛔"
	case loop.LogSupervisor, loop.LogRecognizerExit:
		return "⚙"
	case loop.LogError:
		return "❌"
	case loop.LogStopped:
		return "⏹"
	default:
		return "·"
	}
}

// kindStyle returns the lipgloss style for a log line of the given kind.
func kindStyle(kind loop.LogKind) lipgloss.Style {
	switch kind {
	case loop.LogKeyword:
		return keywordStyle
	case loop.LogPlay:
		return playStyle
	case loop.LogIdle, loop.LogNoAsset:
		return idleStyle
	case loop.LogQuirky:
		return quirkyStyle
	case loop.LogGlitch:
		return glitchStyle
	case loop.LogSubtitle:
		return subtitleStyle
	case loop.LogStreamClosed, loop.LogSupervisor, loop.LogRecognizerExit:
		return streamStyle
	case loop.LogError, loop.LogStopped:
		return errorStyle
	default:
		return infoStyle
	}
}

// singleLine collapses newlines so multi-line subtitles fit one log row.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
