package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
	"github.com/LISSConsulting/LISSTech.Visor/internal/notify"
	"github.com/LISSConsulting/LISSTech.Visor/internal/store"
	"github.com/LISSConsulting/LISSTech.Visor/internal/tui"
)

// captureServer records the bodies of every notification it receives.
type captureServer struct {
	*httptest.Server
	mu     sync.Mutex
	bodies []string
}

func newCaptureServer(t *testing.T) *captureServer {
	t.Helper()
	cs := &captureServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		cs.mu.Lock()
		cs.bodies = append(cs.bodies, buf.String())
		cs.mu.Unlock()
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *captureServer) received() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.bodies...)
}

func newJournalTracker(t *testing.T, dir string, retention int) *sessionTracker {
	t.Helper()
	j, err := store.NewJSONL(dir)
	if err != nil {
		t.Fatalf("NewJSONL: %v", err)
	}
	return &sessionTracker{journal: j, journalDir: dir, retention: retention}
}

func TestRunConsole(t *testing.T) {
	tests := []struct {
		name    string
		runErr  error
		wantErr bool
	}{
		{name: "cancellation is a clean exit", runErr: context.Canceled},
		{name: "nil error", runErr: nil},
		{name: "real error surfaces", runErr: errors.New("recognizer vanished"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := make(chan loop.LogEntry, 16)
			st := &sessionTracker{}
			var out bytes.Buffer

			run := func(ctx context.Context) error {
				events <- loop.LogEntry{Kind: loop.LogPlay, Timestamp: time.Now(), Message: "Playing: wave.gif"}
				events <- loop.LogEntry{Kind: loop.LogSubtitle, Timestamp: time.Now(), Message: "hello there"}
				return tt.runErr
			}

			err := runConsole(context.Background(), events, st, &out, tui.NewTheme(""), run)
			if (err != nil) != tt.wantErr {
				t.Fatalf("runConsole err = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range []string{"Playing: wave.gif", "hello there"} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output should contain %q\ngot:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestForwardEvents(t *testing.T) {
	in := make(chan loop.LogEntry, 8)
	out := make(chan loop.LogEntry, 2)
	st := newJournalTracker(t, t.TempDir(), 0)

	for i := 0; i < 5; i++ {
		in <- loop.LogEntry{Kind: loop.LogInfo, Timestamp: time.Now(), Message: "tick"}
	}
	close(in)
	forwardEvents(in, out, st)

	if len(out) != 2 {
		t.Errorf("forwarded = %d, want 2 (the rest dropped when the dashboard is full)", len(out))
	}
	summary, err := st.journal.SessionSummary()
	if err != nil {
		t.Fatal(err)
	}
	if summary.Entries != 5 {
		t.Errorf("journaled = %d, want all 5 entries", summary.Entries)
	}
	st.finish(nil)
}

func TestSessionTrackerNotifications(t *testing.T) {
	cs := newCaptureServer(t)
	st := &sessionTracker{notifier: notify.New(cs.URL, "visor", true, true, true)}

	st.trackEntry(loop.LogEntry{Kind: loop.LogPlay, Message: "Playing: wave.gif"})
	st.trackEntry(loop.LogEntry{Kind: loop.LogStreamClosed, Message: "subtitle stream closed"})
	st.trackEntry(loop.LogEntry{Kind: loop.LogRecognizerExit, Message: "Recognizer exited: crashed"})
	st.trackEntry(loop.LogEntry{Kind: loop.LogStopped, Message: "Visor stopped"})
	st.trackEntry(loop.LogEntry{Kind: loop.LogRecognizerExit, Message: "Recognizer exited: terminated"})
	st.finish(nil)

	got := strings.Join(cs.received(), "\n")
	for _, want := range []string{"subtitle stream closed", "Recognizer exited: crashed", "Visor stopped"} {
		if !strings.Contains(got, want) {
			t.Errorf("notifications should contain %q, got %q", want, got)
		}
	}
	if strings.Contains(got, "terminated") {
		t.Error("the recognizer exit after stopping should not be notified")
	}
	if strings.Contains(got, "wave.gif") {
		t.Error("plays should not be notified")
	}
}

func TestSessionTrackerJournal(t *testing.T) {
	dir := t.TempDir()
	st := newJournalTracker(t, dir, 0)
	path := st.journal.(*store.JSONL).Path()

	now := time.Now()
	st.trackEntry(loop.LogEntry{Kind: loop.LogKeyword, Timestamp: now, Keyword: "hello", Message: "Recognized: hello"})
	st.trackEntry(loop.LogEntry{Kind: loop.LogPlay, Timestamp: now, Keyword: "hello", Asset: "wave.gif", Message: "Playing: wave.gif"})
	st.trackEntry(loop.LogEntry{Kind: loop.LogKeyword, Timestamp: now, Keyword: "nope", Message: "Recognized: nope"})
	st.trackEntry(loop.LogEntry{Kind: loop.LogNoAsset, Timestamp: now, Keyword: "nope", Message: "No animations for: nope"})

	st.finish(errors.New("boom"))
	st.finish(nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("journal lines = %d, want 4 entries plus the run error", len(lines))
	}
	if !strings.Contains(lines[4], "boom") {
		t.Errorf("last line = %s, want the run error", lines[4])
	}

	summary := st.summary()
	for _, want := range []string{"plays     1", "misses    1", "hello", "1 triggers, 1 plays, 0 misses", "last wave.gif", "nope"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary should contain %q\ngot:\n%s", want, summary)
		}
	}
}

func TestSessionTrackerRetention(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1000000000-a.jsonl", "1000000001-b.jsonl", "1000000002-c.jsonl"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	st := newJournalTracker(t, dir, 2)
	current := filepath.Base(st.journal.(*store.JSONL).Path())
	st.trackEntry(loop.LogEntry{Kind: loop.LogInfo, Timestamp: time.Now(), Message: "hi"})
	st.finish(nil)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 2 {
		t.Fatalf("journals = %v, want 2 kept", names)
	}
	if names[0] != "1000000002-c.jsonl" || names[1] != current {
		t.Errorf("journals = %v, want [1000000002-c.jsonl %s]", names, current)
	}
}

func TestFormatSessionSummary(t *testing.T) {
	session := store.SessionSummary{
		SessionID: "abc",
		Entries:   7,
		Counts: map[loop.LogKind]int{
			loop.LogPlay:   3,
			loop.LogIdle:   1,
			loop.LogGlitch: 2,
		},
	}

	t.Run("without keywords", func(t *testing.T) {
		got := formatSessionSummary(session, nil)
		for _, want := range []string{"Session abc", "entries   7", "plays     3", "idle      1", "glitches  2"} {
			if !strings.Contains(got, want) {
				t.Errorf("output should contain %q\ngot:\n%s", want, got)
			}
		}
		if strings.Contains(got, "Keywords") {
			t.Errorf("no keyword section expected\ngot:\n%s", got)
		}
	})

	t.Run("with keywords", func(t *testing.T) {
		got := formatSessionSummary(session, []store.KeywordSummary{
			{Keyword: "hi", Triggers: 2, Plays: 2, LastAsset: "wave.gif"},
			{Keyword: "goodbye", Triggers: 1, Misses: 1},
		})
		for _, want := range []string{"Keywords", "hi       2 triggers, 2 plays, 0 misses  last wave.gif", "goodbye  1 triggers, 0 plays, 1 misses"} {
			if !strings.Contains(got, want) {
				t.Errorf("output should contain %q\ngot:\n%s", want, got)
			}
		}
	})
}
