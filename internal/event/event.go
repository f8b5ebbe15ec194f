// Package event defines the decoded signal events produced by the stream
// readers and the per-stream queue the scheduler drains them from.
package event

import "time"

// Stream identifies the input stream an event arrived on.
type Stream int

const (
	StreamKeyword  Stream = iota // recognizer stdout, one keyword per line
	StreamSubtitle               // subtitle FIFO, free text
	StreamSpectrum               // spectrum FIFO, comma-separated magnitudes
)

// String returns the stream name used in logs and config.
func (s Stream) String() string {
	switch s {
	case StreamKeyword:
		return "keyword"
	case StreamSubtitle:
		return "subtitle"
	case StreamSpectrum:
		return "spectrum"
	default:
		return "unknown"
	}
}

// SpectrumBins is the fixed arity of a spectrum frame.
const SpectrumBins = 64

// Event is a decoded line from one of the input streams. Stream selects which
// payload field is meaningful: Text for keyword and subtitle events, Samples
// for spectrum frames.
type Event struct {
	Stream    Stream
	Timestamp time.Time

	Text    string
	Samples []float64
}

// KeywordEvent creates a keyword event.
func KeywordEvent(keyword string) Event {
	return Event{
		Stream:    StreamKeyword,
		Timestamp: time.Now(),
		Text:      keyword,
	}
}

// SubtitleEvent creates a subtitle event.
func SubtitleEvent(text string) Event {
	return Event{
		Stream:    StreamSubtitle,
		Timestamp: time.Now(),
		Text:      text,
	}
}

// SpectrumEvent creates a spectrum frame event.
func SpectrumEvent(samples []float64) Event {
	return Event{
		Stream:    StreamSpectrum,
		Timestamp: time.Now(),
		Samples:   samples,
	}
}
