package loop

import (
	"math/rand/v2"

	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
)

// glitchMargin keeps glitch text away from the frame edges, in pixels.
const glitchMargin = 50

// DefaultGlitchMessages are the texts a glitch overlay may carry.
var DefaultGlitchMessages = []string{
	"GL1TCH",
	"5Y5T3M 3RR0R",
	"BUFF3R 0V3RFL0W",
	"N0 51GN4L",
	"R3B00T1NG...",
	"C0RRUPT3D M3M0RY",
}

// glitchStyle draws a random style: font scale 1.00-3.00, thickness 1-4, a
// palette colour, and an origin inside a width x height frame minus the
// margin.
func glitchStyle(rng *rand.Rand, width, height int) render.Style {
	return render.Style{
		FontScale: 1.0 + float64(rng.IntN(201))/100,
		Thickness: 1 + rng.IntN(4),
		Color:     render.Palette[rng.IntN(len(render.Palette))],
		X:         glitchMargin + rng.IntN(max(1, width-2*glitchMargin)),
		Y:         glitchMargin + rng.IntN(max(1, height-2*glitchMargin)),
	}
}

func quirkyStyle(height int) render.Style {
	return render.Style{
		FontScale: 1.0,
		Thickness: 2,
		Color:     render.NeonCyan,
		X:         glitchMargin,
		Y:         max(glitchMargin, height-glitchMargin),
	}
}

func subtitleStyle(height int) render.Style {
	return render.Style{
		FontScale: 1.2,
		Thickness: 2,
		Color:     render.RGB{R: 255, G: 255, B: 255},
		X:         glitchMargin,
		Y:         max(glitchMargin, height-3*glitchMargin),
	}
}
