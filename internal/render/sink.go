// Package render defines the playback capability the scheduler drives and
// the concrete sinks behind it: an external media player, an MQTT publisher,
// a fan-out, and a recording double.
package render

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sink receives playback decisions. Implementations must not block the
// caller for longer than it takes to hand the work off.
type Sink interface {
	Play(path string)
	Show(o Overlay)
	Spectrum(samples []float64)
}

// OverlayKind tags an overlay with the timer that produced it.
type OverlayKind int

const (
	OverlaySubtitle OverlayKind = iota
	OverlayQuirky
	OverlayGlitch
)

func (k OverlayKind) String() string {
	switch k {
	case OverlaySubtitle:
		return "subtitle"
	case OverlayQuirky:
		return "quirky"
	case OverlayGlitch:
		return "glitch"
	default:
		return "unknown"
	}
}

// RGB is a 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Neon palette shared by overlays and the terminal theme.
var (
	NeonPink   = RGB{255, 20, 147}
	NeonCyan   = RGB{0, 255, 255}
	NeonPurple = RGB{128, 0, 128}
	NeonYellow = RGB{255, 255, 0}
	NeonGreen  = RGB{0, 255, 0}
)

// Palette lists the colours a glitch overlay may take.
var Palette = []RGB{NeonPink, NeonCyan, NeonPurple, NeonYellow, NeonGreen}

// Style positions and paints overlay text. X and Y are pixel offsets of the
// text origin inside the frame.
type Style struct {
	FontScale float64
	Thickness int
	Color     RGB
	X, Y      int
}

// Overlay is a piece of text shown on top of the current animation for a
// fixed duration.
type Overlay struct {
	ID       string
	Kind     OverlayKind
	Text     string
	Style    Style
	Duration time.Duration
}

// NewOverlay returns an overlay with a fresh random ID.
func NewOverlay(kind OverlayKind, text string, style Style, d time.Duration) Overlay {
	return Overlay{
		ID:       uuid.NewString(),
		Kind:     kind,
		Text:     text,
		Style:    style,
		Duration: d,
	}
}
