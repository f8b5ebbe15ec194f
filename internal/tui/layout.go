package tui

// Rect represents a rectangular region of the terminal.
type Rect struct {
	X, Y, Width, Height int
}

// Layout holds the computed region geometry for a given terminal size.
type Layout struct {
	Header, Footer Rect
	Visor          Rect // bordered display stand-in: spectrum, subtitle, overlays
	Log            Rect
	TooSmall       bool // true when terminal is below the minimum 60×16
}

// Minimum terminal size the dashboard draws in.
const (
	minWidth  = 60
	minHeight = 16
)

// Calculate computes the layout for a terminal of the given dimensions.
//
//   - Header: full width, 1 row at top
//   - Footer: full width, 1 row at bottom
//   - Visor: full width, 40% of the body clamped to [8, 14] rows
//   - Log: the remaining body rows
func Calculate(width, height int) Layout {
	if width < minWidth || height < minHeight {
		return Layout{TooSmall: true}
	}

	bodyH := height - 2

	visorH := bodyH * 40 / 100
	visorH = min(max(visorH, 8), 14)
	logH := bodyH - visorH

	return Layout{
		Header: Rect{X: 0, Y: 0, Width: width, Height: 1},
		Visor:  Rect{X: 0, Y: 1, Width: width, Height: visorH},
		Log:    Rect{X: 0, Y: 1 + visorH, Width: width, Height: logH},
		Footer: Rect{X: 0, Y: height - 1, Width: width, Height: 1},
	}
}

// innerDims returns the usable content size of a bordered region.
func innerDims(r Rect) (int, int) {
	return max(r.Width-2, 1), max(r.Height-2, 1)
}
