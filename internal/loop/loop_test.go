package loop

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/deck"
	"github.com/LISSConsulting/LISSTech.Visor/internal/event"
	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
)

type loopHarness struct {
	lp     *Loop
	sink   *render.Recorder
	events chan LogEntry
	writer *os.File
	reader *os.File
}

func setupTestLoop(t *testing.T, assets map[string][]string) *loopHarness {
	t.Helper()
	rng := deck.NewRand(3)
	d := deck.New(rng)
	for kw, list := range assets {
		d.Add(kw, list)
	}
	q := event.NewQueue()

	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pw.Close() })

	sink := &render.Recorder{}
	events := make(chan LogEntry, 256)
	lp := &Loop{
		Scheduler:   NewScheduler(quietConfig(), d, q, rng, time.Now()),
		Queue:       q,
		Sink:        sink,
		Sources:     []Source{{Stream: event.StreamKeyword, Src: pr}},
		Events:      events,
		Tick:        10 * time.Millisecond,
		PollTimeout: 20 * time.Millisecond,
	}
	return &loopHarness{lp: lp, sink: sink, events: events, writer: pw, reader: pr}
}

func (h *loopHarness) start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- h.lp.Run(ctx) }()
	return done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func drain(ch chan LogEntry) []LogEntry {
	var out []LogEntry
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func kinds(entries []LogEntry) map[LogKind]int {
	m := make(map[LogKind]int)
	for _, e := range entries {
		m[e.Kind]++
	}
	return m
}

func TestRunPlaysKeywordFromStream(t *testing.T) {
	h := setupTestLoop(t, map[string][]string{"hello": {"a.gif"}})
	ctx, cancel := context.WithCancel(context.Background())
	done := h.start(ctx)

	// Split across writes: the reader must reassemble the line.
	if _, err := h.writer.Write([]byte("hel")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := h.writer.Write([]byte("lo\nnope\n")); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "keyword playback", func() bool { return len(h.sink.Plays()) == 1 })
	waitFor(t, "keyword queue drained", func() bool { return h.lp.Queue.Len(event.StreamKeyword) == 0 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}

	if got := h.sink.Plays(); got[0] != "a.gif" {
		t.Errorf("plays = %q", got)
	}

	entries := drain(h.events)
	k := kinds(entries)
	if k[LogKeyword] != 2 {
		t.Errorf("keyword entries = %d, want 2", k[LogKeyword])
	}
	if k[LogPlay] != 1 || k[LogNoAsset] != 1 {
		t.Errorf("play/no-asset entries = %d/%d, want 1/1", k[LogPlay], k[LogNoAsset])
	}
	if k[LogStopped] != 1 {
		t.Error("expected a stopped entry")
	}
	for _, e := range entries {
		if e.Kind == LogPlay && (e.Keyword != "hello" || e.Asset != "a.gif") {
			t.Errorf("play entry = %+v", e)
		}
	}
}

func TestRunSurvivesStreamClosure(t *testing.T) {
	h := setupTestLoop(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := h.start(ctx)

	h.writer.Close()
	waitFor(t, "stream closed entry", func() bool {
		for _, e := range drain(h.events) {
			if e.Kind == LogStreamClosed {
				if e.Stream != "keyword" {
					t.Errorf("closed stream = %q", e.Stream)
				}
				return true
			}
		}
		return false
	})

	// The control loop keeps going on the remaining inputs.
	h.lp.Queue.Push(event.SubtitleEvent("still here"))
	waitFor(t, "subtitle overlay", func() bool {
		return len(h.sink.OverlaysOf(render.OverlaySubtitle)) == 1
	})

	cancel()
	<-done
}

func TestRunCancelJoinsReaders(t *testing.T) {
	h := setupTestLoop(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := h.start(ctx)

	time.Sleep(30 * time.Millisecond)
	start := time.Now()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("shutdown took %s", elapsed)
	}

	// The reader closed its source before Run returned.
	if _, err := h.reader.Read(make([]byte, 1)); !errors.Is(err, os.ErrClosed) {
		t.Errorf("source read after Run = %v, want os.ErrClosed", err)
	}
}

func TestRunSpectrumAndSubtitleSources(t *testing.T) {
	h := setupTestLoop(t, nil)
	sr, sw, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer sw.Close()
	h.lp.Sources = append(h.lp.Sources, Source{Stream: event.StreamSpectrum, Src: sr})

	ctx, cancel := context.WithCancel(context.Background())
	done := h.start(ctx)

	if _, err := sw.Write([]byte("0.5,1.5,abc\n")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "spectrum frame", func() bool { return len(h.sink.Frames()) > 0 })
	cancel()
	<-done

	frame := h.sink.Frames()[0]
	if len(frame) != event.SpectrumBins || frame[0] != 0.5 || frame[1] != 1.5 || frame[2] != 0 {
		t.Errorf("first frame = %v", frame[:3])
	}
}

func TestBootPlaysLoadingAnimation(t *testing.T) {
	h := setupTestLoop(t, map[string][]string{"loading": {"load.gif"}})

	if err := h.lp.Boot(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if got := h.sink.Plays(); len(got) != 1 || got[0] != "load.gif" {
		t.Errorf("plays = %q", got)
	}
	if k := kinds(drain(h.events)); k[LogPlay] != 1 {
		t.Errorf("expected one play entry, got %v", k)
	}
}

func TestBootHonoursCancellation(t *testing.T) {
	h := setupTestLoop(t, map[string][]string{"loading": {"load.gif"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.lp.Boot(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Boot = %v, want context.Canceled", err)
	}
}

func TestBootWithoutLoadingAssets(t *testing.T) {
	h := setupTestLoop(t, nil)
	if err := h.lp.Boot(context.Background(), time.Hour); err != nil {
		t.Errorf("Boot = %v, want nil", err)
	}
	if len(h.sink.Plays()) != 0 {
		t.Error("nothing should play without loading assets")
	}
}

func TestEmitFallsBackToWriter(t *testing.T) {
	var buf bytes.Buffer
	lp := &Loop{Log: &buf}

	lp.emit(LogEntry{Kind: LogInfo, Message: "hello"})

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected message in writer, got %q", buf.String())
	}
}

func TestEmitDoesNotWriteToLogWhenChannelSet(t *testing.T) {
	var buf bytes.Buffer
	ch := make(chan LogEntry, 1)
	lp := &Loop{Log: &buf, Events: ch}

	lp.emit(LogEntry{Kind: LogInfo, Message: "test"})

	if buf.Len() != 0 {
		t.Errorf("expected no output to Log writer when Events is set, got: %s", buf.String())
	}
	if len(ch) != 1 {
		t.Error("expected entry on channel")
	}
}

func TestEmitNonBlocking(t *testing.T) {
	// Channel with zero buffer: emit should not block
	ch := make(chan LogEntry)
	lp := &Loop{Events: ch}

	done := make(chan struct{})
	go func() {
		lp.emit(LogEntry{Kind: LogInfo, Message: "test"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on full channel, should be non-blocking")
	}
}

func TestEmitSetsTimestamp(t *testing.T) {
	ch := make(chan LogEntry, 1)
	lp := &Loop{Events: ch}

	before := time.Now()
	lp.emit(LogEntry{Kind: LogInfo, Message: "test"})
	after := time.Now()

	entry := <-ch
	if entry.Timestamp.Before(before) || entry.Timestamp.After(after) {
		t.Errorf("expected timestamp between %v and %v, got %v", before, after, entry.Timestamp)
	}
}

func TestEmitPreservesExistingTimestamp(t *testing.T) {
	ch := make(chan LogEntry, 1)
	lp := &Loop{Events: ch}

	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lp.emit(LogEntry{Kind: LogInfo, Message: "test", Timestamp: ts})

	entry := <-ch
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v to be preserved, got %v", ts, entry.Timestamp)
	}
}
