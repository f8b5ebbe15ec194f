package loop

import (
	"fmt"
	"time"
)

// LogKind identifies the type of a visor log event.
type LogKind int

const (
	LogInfo         LogKind = iota // General informational message
	LogKeyword                     // Keyword event received from the recognizer
	LogNoAsset                     // Keyword had no animation in the deck
	LogPlay                        // Animation handed to the sink
	LogIdle                        // Idle animation chosen after the quiet threshold
	LogQuirky                      // Quirky message spawned
	LogGlitch                      // Glitch overlay spawned
	LogSubtitle                    // Subtitle replaced
	LogStreamClosed                // Input stream reached EOF or failed
	LogSupervisor                  // Recognizer process lifecycle message
	LogRecognizerExit              // Recognizer process exited
	LogError                       // Recoverable error
	LogStopped                     // Loop stopped (context cancelled)
)

var logKindNames = [...]string{
	LogInfo:           "info",
	LogKeyword:        "keyword",
	LogNoAsset:        "no_asset",
	LogPlay:           "play",
	LogIdle:           "idle",
	LogQuirky:         "quirky",
	LogGlitch:         "glitch",
	LogSubtitle:       "subtitle",
	LogStreamClosed:   "stream_closed",
	LogSupervisor:     "supervisor",
	LogRecognizerExit: "recognizer_exit",
	LogError:          "error",
	LogStopped:        "stopped",
}

// String returns the snake_case name used in journals and notifications.
func (k LogKind) String() string {
	if k < 0 || int(k) >= len(logKindNames) {
		return "unknown"
	}
	return logKindNames[k]
}

// MarshalText encodes the kind by name so journals stay readable.
func (k LogKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *LogKind) UnmarshalText(text []byte) error {
	for i, name := range logKindNames {
		if name == string(text) {
			*k = LogKind(i)
			return nil
		}
	}
	return fmt.Errorf("loop: unknown log kind %q", text)
}

// LogEntry is a structured event emitted by the visor during execution.
// When the Loop.Events channel is set, entries are sent there for TUI
// consumption. Otherwise, they fall back to the Loop.Log io.Writer.
type LogEntry struct {
	Kind      LogKind   `json:"kind"`
	Timestamp time.Time `json:"ts"`
	Message   string    `json:"msg,omitempty"`

	// Trigger and playback
	Keyword string `json:"keyword,omitempty"`
	Asset   string `json:"asset,omitempty"`

	// Stream name for stream lifecycle entries ("keyword", "subtitle", ...)
	Stream string `json:"stream,omitempty"`

	// Glitch stage index and the quirky or glitch interval that elapsed
	Stage    int           `json:"stage,omitempty"`
	Interval time.Duration `json:"interval,omitempty"`
}
