package render

// Multi fans every call out to each sink in order.
type Multi []Sink

func (m Multi) Play(path string) {
	for _, s := range m {
		s.Play(path)
	}
}

func (m Multi) Show(o Overlay) {
	for _, s := range m {
		s.Show(o)
	}
}

func (m Multi) Spectrum(samples []float64) {
	for _, s := range m {
		s.Spectrum(samples)
	}
}
