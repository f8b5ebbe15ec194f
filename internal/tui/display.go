package tui

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
)

// Display is a render.Sink that keeps the latest visual state for the
// dashboard to draw. The control loop writes it; the bubbletea program reads
// snapshots on its own clock.
type Display struct {
	mu       sync.Mutex
	now      func() time.Time
	asset    string
	playedAt time.Time
	spectrum []float64
	overlays map[render.OverlayKind]shownOverlay
}

type shownOverlay struct {
	overlay render.Overlay
	until   time.Time
}

// DisplayState is a point-in-time copy of what the display shows.
type DisplayState struct {
	Asset    string
	PlayedAt time.Time
	Spectrum []float64
	Subtitle []string
	Quirky   *render.Overlay
	Glitch   *render.Overlay
}

var _ render.Sink = (*Display)(nil)

// NewDisplay returns an empty Display.
func NewDisplay() *Display {
	return &Display{
		now:      time.Now,
		overlays: make(map[render.OverlayKind]shownOverlay),
	}
}

// Play records the animation now on screen.
func (d *Display) Play(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.asset = path
	d.playedAt = d.now()
}

// Show replaces the overlay of the same kind. It disappears after its
// duration.
func (d *Display) Show(o render.Overlay) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overlays[o.Kind] = shownOverlay{overlay: o, until: d.now().Add(o.Duration)}
}

// Spectrum records the latest frame.
func (d *Display) Spectrum(samples []float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spectrum = slices.Clone(samples)
}

// Snapshot returns the state visible at now. Expired overlays are dropped.
func (d *Display) Snapshot(now time.Time) DisplayState {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := DisplayState{
		Asset:    d.asset,
		PlayedAt: d.playedAt,
		Spectrum: slices.Clone(d.spectrum),
	}
	for kind, shown := range d.overlays {
		if !now.Before(shown.until) {
			delete(d.overlays, kind)
			continue
		}
		o := shown.overlay
		switch kind {
		case render.OverlaySubtitle:
			st.Subtitle = strings.Split(o.Text, "\n")
		case render.OverlayQuirky:
			st.Quirky = &o
		case render.OverlayGlitch:
			st.Glitch = &o
		}
	}
	return st
}

// AssetName returns the file name of the current asset, or "" before the
// first play.
func (st DisplayState) AssetName() string {
	if st.Asset == "" {
		return ""
	}
	return filepath.Base(st.Asset)
}
