//go:build !windows

package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/config"
	"github.com/LISSConsulting/LISSTech.Visor/internal/deck"
	"github.com/LISSConsulting/LISSTech.Visor/internal/event"
	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
)

func testVisorLoop(cfg *config.Config, events chan loop.LogEntry, assets map[string][]string) (*loop.Loop, *render.Recorder) {
	rng := deck.NewRand(7)
	d := deck.New(rng)
	for kw, list := range assets {
		d.Add(kw, list)
	}
	q := event.NewQueue()
	rec := &render.Recorder{}
	lp := &loop.Loop{
		Scheduler:   loop.NewScheduler(buildSchedulerConfig(cfg, nil), d, q, rng, time.Now()),
		Queue:       q,
		Sink:        rec,
		Events:      events,
		Tick:        10 * time.Millisecond,
		PollTimeout: 20 * time.Millisecond,
	}
	return lp, rec
}

func drainKinds(events chan loop.LogEntry) map[loop.LogKind][]loop.LogEntry {
	got := map[loop.LogKind][]loop.LogEntry{}
	for {
		select {
		case e := <-events:
			got[e.Kind] = append(got[e.Kind], e)
		default:
			return got
		}
	}
}

func TestRunVisorPlaysRecognizedKeyword(t *testing.T) {
	cfg := config.Defaults()
	cfg.Recognizer.Command = "sh"
	cfg.Recognizer.Args = []string{"-c", "echo hello; exec sleep 5"}
	cfg.Recognizer.GraceSeconds = 1
	cfg.Streams.Subtitle.Enabled = false
	cfg.Streams.Spectrum.Enabled = false
	cfg.Animations.LoadingSeconds = 0

	events := make(chan loop.LogEntry, 256)
	lp, rec := testVisorLoop(&cfg, events, map[string][]string{"hello": {"wave.gif"}})

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	err := runVisor(ctx, &cfg, lp, events, func(loop.LogEntry) {}, true)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("runVisor = %v, want deadline exceeded", err)
	}

	plays := rec.Plays()
	if len(plays) == 0 || plays[0] != "wave.gif" {
		t.Errorf("plays = %v, want wave.gif first", plays)
	}

	kinds := drainKinds(events)
	if len(kinds[loop.LogSupervisor]) == 0 {
		t.Error("expected a recognizer start entry")
	}
	if len(kinds[loop.LogRecognizerExit]) == 0 {
		t.Error("expected the recognizer to be reaped before runVisor returned")
	}
	if len(kinds[loop.LogStopped]) != 1 {
		t.Errorf("stopped entries = %d, want 1", len(kinds[loop.LogStopped]))
	}
}

func TestRunVisorLaunchFailure(t *testing.T) {
	cfg := config.Defaults()
	cfg.Recognizer.Command = filepath.Join(t.TempDir(), "no-such-recognizer")
	cfg.Recognizer.Args = nil
	cfg.Streams.Subtitle.Enabled = false
	cfg.Streams.Spectrum.Enabled = false
	cfg.Animations.LoadingSeconds = 0

	events := make(chan loop.LogEntry, 64)
	lp, _ := testVisorLoop(&cfg, events, nil)

	err := runVisor(context.Background(), &cfg, lp, events, func(loop.LogEntry) {}, true)
	if err == nil {
		t.Fatal("expected launch error")
	}
	if !strings.Contains(err.Error(), "supervisor: start") {
		t.Errorf("error = %v, want a supervisor start failure", err)
	}
}

func TestRunVisorRequiredFIFOFailure(t *testing.T) {
	cfg := config.Defaults()
	cfg.Recognizer.Command = "sh"
	cfg.Recognizer.Args = []string{"-c", "exec sleep 5"}
	cfg.Streams.Subtitle.Path = filepath.Join(t.TempDir(), "missing", "subs")
	cfg.Streams.Subtitle.Required = true
	cfg.Streams.Spectrum.Enabled = false
	cfg.Animations.LoadingSeconds = 0

	events := make(chan loop.LogEntry, 64)
	lp, _ := testVisorLoop(&cfg, events, nil)

	if err := runVisor(context.Background(), &cfg, lp, events, func(loop.LogEntry) {}, true); err == nil {
		t.Fatal("expected error for a required FIFO that cannot be created")
	}
	if len(drainKinds(events)[loop.LogSupervisor]) != 0 {
		t.Error("recognizer must not be launched when a required stream fails")
	}
}

func TestRunVisorOptionalFIFOFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Recognizer.Command = "sh"
	cfg.Recognizer.Args = []string{"-c", "exec sleep 5"}
	cfg.Recognizer.GraceSeconds = 1
	cfg.Streams.Subtitle.Path = filepath.Join(dir, "missing", "subs")
	cfg.Streams.Spectrum.Path = filepath.Join(dir, "spectrum")
	cfg.Animations.LoadingSeconds = 0

	events := make(chan loop.LogEntry, 256)
	lp, _ := testVisorLoop(&cfg, events, nil)

	var reported []loop.LogEntry
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err := runVisor(ctx, &cfg, lp, events, func(e loop.LogEntry) { reported = append(reported, e) }, true)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("runVisor = %v, want deadline exceeded", err)
	}

	if len(reported) != 1 || reported[0].Kind != loop.LogStreamClosed || reported[0].Stream != "subtitle" {
		t.Fatalf("reported = %+v, want one subtitle stream_closed entry", reported)
	}
	if len(lp.Sources) != 2 {
		t.Errorf("sources = %d, want keyword + spectrum", len(lp.Sources))
	}
}
