package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
	"github.com/LISSConsulting/LISSTech.Visor/internal/tui/panels"
)

// View renders the dashboard: header, visor panel, scrollable log, footer.
func (m Model) View() string {
	if m.layout.TooSmall {
		return fmt.Sprintf("Terminal too small (%d×%d); need at least %d×%d.", m.width, m.height, minWidth, minHeight)
	}

	var st DisplayState
	if m.display != nil {
		st = m.display.Snapshot(m.now)
	}

	header := panels.RenderHeader(panels.HeaderProps{
		Title:       m.title,
		WorkDir:     m.workDir,
		Asset:       st.AssetName(),
		Plays:       m.plays,
		Misses:      m.misses,
		Quirky:      m.quirky,
		GlitchStage: m.glitchStage,
		Glitches:    m.glitches,
		StreamsLost: m.streamsLost,
		Elapsed:     m.now.Sub(m.startedAt),
		Clock:       m.now,
	}, m.width, m.theme.AccentHeaderStyle())

	footer := panels.RenderFooter(panels.FooterProps{
		Following: m.logView.Following(),
		Stopping:  m.stopping,
	}, m.width)

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderVisor(st), m.logView.View(), footer)
}

func (m Model) renderVisor(st DisplayState) string {
	w, h := innerDims(m.layout.Visor)

	var overlays []panels.OverlayLine
	if st.Quirky != nil {
		overlays = append(overlays, overlayLine(*st.Quirky))
	}
	if st.Glitch != nil {
		overlays = append(overlays, overlayLine(*st.Glitch))
	}

	body := panels.RenderVisor(panels.RenderSpectrum(st.Spectrum, w, spectrumStyle), st.Subtitle, overlays, w, h)
	return m.theme.BorderStyle().Width(w).Render(body)
}

func overlayLine(o render.Overlay) panels.OverlayLine {
	return panels.OverlayLine{Label: o.Kind.String(), Text: o.Text, Color: o.Style.Color.Hex()}
}
