package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
)

func TestNewTheme(t *testing.T) {
	for _, accent := range []string{"", "#00FFFF"} {
		th := NewTheme(accent)
		// In a non-TTY test environment lipgloss strips colours, so only check
		// that the styles render.
		if got := th.AccentHeaderStyle().Render("x"); !strings.Contains(got, "x") {
			t.Errorf("accent %q: header render = %q", accent, got)
		}
		if got := th.BorderStyle().Render("x"); !strings.Contains(got, "x") {
			t.Errorf("accent %q: border render = %q", accent, got)
		}
	}
}

func TestRenderLogLine_AllKinds(t *testing.T) {
	th := NewTheme("")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    loop.LogEntry
		contains []string
	}{
		{"info", loop.LogEntry{Kind: loop.LogInfo, Message: "Visor running"}, []string{"[12:00:00]", "Visor running"}},
		{"keyword", loop.LogEntry{Kind: loop.LogKeyword, Keyword: "hello", Message: "Recognized: hello"}, []string{"🎤", "Recognized: hello"}},
		{"no asset", loop.LogEntry{Kind: loop.LogNoAsset, Message: "No animations for: x"}, []string{"∅", "No animations for: x"}},
		{"play", loop.LogEntry{Kind: loop.LogPlay, Message: "Playing: wave.gif"}, []string{"▶", "Playing: wave.gif"}},
		{"idle", loop.LogEntry{Kind: loop.LogIdle, Message: "Idle animation: nap.gif"}, []string{"💤", "nap.gif"}},
		{"quirky", loop.LogEntry{Kind: loop.LogQuirky, Message: "Beep boop", Interval: 5 * time.Second}, []string{"✨", "Beep boop", "(after 5s)"}},
		{"glitch", loop.LogEntry{Kind: loop.LogGlitch, Message: "Glitch", Stage: 2, Interval: 2500 * time.Millisecond}, []string{"⚡", "stage 2", "2.5s"}},
		{"subtitle", loop.LogEntry{Kind: loop.LogSubtitle, Message: "hello\nthere"}, []string{"💬", "“hello there”"}},
		{"stream closed", loop.LogEntry{Kind: loop.LogStreamClosed, Message: "subtitle stream closed"}, []string{"⛔", "subtitle stream closed"}},
		{"recognizer exit", loop.LogEntry{Kind: loop.LogRecognizerExit, Message: "Recognizer exited"}, []string{"⚙", "Recognizer exited"}},
		{"error", loop.LogEntry{Kind: loop.LogError, Message: "mpv failed"}, []string{"❌", "mpv failed"}},
		{"stopped", loop.LogEntry{Kind: loop.LogStopped, Message: "Visor stopped"}, []string{"⏹", "Visor stopped"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entry.Timestamp = now
			got := th.RenderLogLine(tt.entry, 120)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("RenderLogLine() missing %q; got %q", want, got)
				}
			}
			if strings.Contains(got, "\n") {
				t.Errorf("RenderLogLine() must be a single line; got %q", got)
			}
		})
	}
}

func TestRenderLogLine_Truncates(t *testing.T) {
	th := NewTheme("")
	entry := loop.LogEntry{Kind: loop.LogInfo, Timestamp: time.Now(), Message: strings.Repeat("word ", 40)}

	got := th.RenderLogLine(entry, 60)
	if !strings.Contains(got, "…") {
		t.Errorf("long line should be truncated; got %q", got)
	}

	full := th.RenderLogLine(entry, 0)
	if strings.Contains(full, "…") {
		t.Errorf("width 0 should not truncate; got %q", full)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 1, "…"},
		{"hello", 0, "hello"},
		{"héllo wörld", 6, "héllo…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestKindIconCoversEveryKind(t *testing.T) {
	for k := loop.LogKeyword; k <= loop.LogStopped; k++ {
		if kindIcon(k) == "·" {
			t.Errorf("kind %s has no icon", k)
		}
	}
	if kindIcon(loop.LogInfo) != "·" {
		t.Error("info lines use the default marker")
	}
}
