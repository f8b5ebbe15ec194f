package event

import (
	"math"
	"strconv"
	"strings"
)

// Decode turns one framed line from stream s into an Event. It reports false
// when the line carries nothing for that stream (blank after normalisation).
func Decode(s Stream, line string) (Event, bool) {
	switch s {
	case StreamKeyword:
		kw := NormalizeKeyword(line)
		if kw == "" {
			return Event{}, false
		}
		return KeywordEvent(kw), true
	case StreamSubtitle:
		text := strings.TrimSpace(line)
		if text == "" {
			return Event{}, false
		}
		return SubtitleEvent(text), true
	case StreamSpectrum:
		if strings.TrimSpace(line) == "" {
			return Event{}, false
		}
		return SpectrumEvent(ParseSpectrum(line, SpectrumBins)), true
	}
	return Event{}, false
}

// NormalizeKeyword trims surrounding whitespace from a recognized keyword.
// Keywords are matched against animation directory names as-is.
func NormalizeKeyword(s string) string {
	return strings.TrimSpace(s)
}

// ParseSpectrum parses a comma-separated frame into exactly bins samples.
// Malformed or non-finite tokens parse to zero, missing trailing tokens are
// zero, and tokens past bins are ignored.
func ParseSpectrum(line string, bins int) []float64 {
	samples := make([]float64, bins)
	for i, tok := range strings.SplitN(line, ",", bins+1) {
		if i >= bins {
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		samples[i] = v
	}
	return samples
}
