package event

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		stream Stream
		line   string
		ok     bool
		text   string
	}{
		{"keyword trimmed", StreamKeyword, "  hello \t", true, "hello"},
		{"blank keyword dropped", StreamKeyword, "   ", false, ""},
		{"subtitle kept verbatim inside", StreamSubtitle, " hi  there ", true, "hi  there"},
		{"blank subtitle dropped", StreamSubtitle, "\t", false, ""},
		{"blank spectrum dropped", StreamSpectrum, " ", false, ""},
		{"unknown stream", Stream(42), "x", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := Decode(tt.stream, tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ev.Stream != tt.stream {
				t.Errorf("Stream = %v, want %v", ev.Stream, tt.stream)
			}
			if ev.Text != tt.text {
				t.Errorf("Text = %q, want %q", ev.Text, tt.text)
			}
			if ev.Timestamp.IsZero() {
				t.Error("expected Timestamp to be set")
			}
		})
	}
}

func TestParseSpectrum(t *testing.T) {
	t.Run("full frame", func(t *testing.T) {
		got := ParseSpectrum("0.5, 1.25,2", 3)
		want := []float64{0.5, 1.25, 2}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("sample[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("malformed tokens are zero", func(t *testing.T) {
		got := ParseSpectrum("0.5,abc,,0.75", 4)
		want := []float64{0.5, 0, 0, 0.75}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("sample[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("non-finite tokens are zero", func(t *testing.T) {
		got := ParseSpectrum("nan,1,inf,-Inf,+Infinity,NaN", 6)
		want := []float64{0, 1, 0, 0, 0, 0}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("sample[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("short frame padded with zero", func(t *testing.T) {
		got := ParseSpectrum("1", SpectrumBins)
		if len(got) != SpectrumBins {
			t.Fatalf("len = %d, want %d", len(got), SpectrumBins)
		}
		if got[0] != 1 || got[SpectrumBins-1] != 0 {
			t.Errorf("unexpected samples: first=%v last=%v", got[0], got[SpectrumBins-1])
		}
	})

	t.Run("extra tokens ignored", func(t *testing.T) {
		got := ParseSpectrum("1,2,3,4,5", 2)
		if len(got) != 2 || got[0] != 1 || got[1] != 2 {
			t.Errorf("got %v, want [1 2]", got)
		}
	})
}

func TestStreamString(t *testing.T) {
	tests := map[Stream]string{
		StreamKeyword:  "keyword",
		StreamSubtitle: "subtitle",
		StreamSpectrum: "spectrum",
		Stream(9):      "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Stream(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
