package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bars are the eighth-block glyphs used for one spectrum column, lowest first.
var bars = []rune(" ▁▂▃▄▅▆▇█")

// RenderSpectrum draws samples as a single row of block bars at most width
// columns wide. Bins are averaged into columns when the frame is wider than
// the row. Magnitudes up to 1 are drawn on an absolute scale; a louder frame
// is scaled down by its peak. A nil frame renders as a flat row.
func RenderSpectrum(samples []float64, width int, style lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	if len(samples) == 0 {
		return style.Render(strings.Repeat(string(bars[0]), width))
	}

	cols := min(width, len(samples))
	values := make([]float64, cols)
	peak := 1.0
	for c := range cols {
		lo := c * len(samples) / cols
		hi := (c + 1) * len(samples) / cols
		sum := 0.0
		for _, v := range samples[lo:hi] {
			if v < 0 {
				v = -v
			}
			sum += v
		}
		values[c] = sum / float64(hi-lo)
		peak = max(peak, values[c])
	}

	var b strings.Builder
	top := len(bars) - 1
	for _, v := range values {
		level := int(v / peak * float64(top))
		level = min(max(level, 0), top)
		b.WriteRune(bars[level])
	}
	return style.Render(b.String())
}
