package render

import "sync"

// Recorder is a Sink that remembers every call. It is safe for concurrent
// use.
type Recorder struct {
	mu       sync.Mutex
	plays    []string
	overlays []Overlay
	frames   [][]float64
}

func (r *Recorder) Play(path string) {
	r.mu.Lock()
	r.plays = append(r.plays, path)
	r.mu.Unlock()
}

func (r *Recorder) Show(o Overlay) {
	r.mu.Lock()
	r.overlays = append(r.overlays, o)
	r.mu.Unlock()
}

func (r *Recorder) Spectrum(samples []float64) {
	frame := append([]float64(nil), samples...)
	r.mu.Lock()
	r.frames = append(r.frames, frame)
	r.mu.Unlock()
}

// Plays returns the paths passed to Play, oldest first.
func (r *Recorder) Plays() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.plays...)
}

// Overlays returns the overlays passed to Show, oldest first.
func (r *Recorder) Overlays() []Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Overlay(nil), r.overlays...)
}

// OverlaysOf returns the recorded overlays of one kind.
func (r *Recorder) OverlaysOf(kind OverlayKind) []Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Overlay
	for _, o := range r.overlays {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// Frames returns copies of the spectrum frames passed to Spectrum.
func (r *Recorder) Frames() [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]float64(nil), r.frames...)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.plays, r.overlays, r.frames = nil, nil, nil
	r.mu.Unlock()
}
