// Package loop runs the visor control loop: stream readers feed a shared
// event queue, and a ticker drives the Scheduler whose decisions are handed
// to the render sink.
package loop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/event"
	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
	"github.com/LISSConsulting/LISSTech.Visor/internal/stream"
)

const (
	// DefaultTick is the scheduler cadence.
	DefaultTick = 100 * time.Millisecond
	// DefaultPollTimeout bounds each reader wait, and with it how long
	// shutdown takes to reach the readers.
	DefaultPollTimeout = 100 * time.Millisecond
)

// Source binds an input stream to the byte source it is read from. The loop
// owns Src and closes it when its reader stops.
type Source struct {
	Stream event.Stream
	Src    stream.Source
}

// Loop owns the reader goroutines and the scheduler goroutine.
type Loop struct {
	Scheduler *Scheduler
	Queue     *event.Queue
	Sink      render.Sink
	Sources   []Source

	Log    io.Writer       // output destination when Events is nil; defaults to os.Stdout
	Events chan<- LogEntry // optional: structured events for TUI or journal

	Tick        time.Duration // defaults to DefaultTick
	PollTimeout time.Duration // defaults to DefaultPollTimeout
	ChunkSize   int           // defaults to stream.DefaultChunkSize

	logMu sync.Mutex
}

// Boot plays the loading animation, if there is one, and then waits for
// settle so it has the screen to itself before the recognizer comes up.
func (l *Loop) Boot(ctx context.Context, settle time.Duration) error {
	asset, ok := l.Scheduler.Boot(time.Now())
	if !ok {
		return nil
	}
	l.Sink.Play(asset)
	l.emit(LogEntry{Kind: LogPlay, Message: "Loading animation: " + asset, Asset: asset})

	if settle <= 0 {
		return nil
	}
	timer := time.NewTimer(settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run starts one reader per source and ticks the scheduler until ctx is
// cancelled. Readers are joined before Run returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	tick := l.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	readCtx, cancelReaders := context.WithCancel(ctx)
	defer cancelReaders()

	var wg sync.WaitGroup
	for _, src := range l.Sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			l.read(readCtx, src)
		}(src)
	}

	l.emit(LogEntry{
		Kind:    LogInfo,
		Message: fmt.Sprintf("Visor running: %d streams, tick %s", len(l.Sources), tick),
	})

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cancelReaders()
			wg.Wait()
			l.emit(LogEntry{Kind: LogStopped, Message: fmt.Sprintf("Visor stopped: %v", ctx.Err())})
			return ctx.Err()
		case now := <-ticker.C:
			l.dispatch(l.Scheduler.Tick(now))
		}
	}
}

func (l *Loop) read(ctx context.Context, src Source) {
	defer src.Src.Close()

	poll := l.PollTimeout
	if poll <= 0 {
		poll = DefaultPollTimeout
	}

	r := stream.NewReader(src.Src, l.ChunkSize)
	err := r.Run(ctx, poll, func(line string) {
		if ev, ok := event.Decode(src.Stream, line); ok {
			l.Queue.Push(ev)
		}
	})

	name := src.Stream.String()
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		l.emit(LogEntry{Kind: LogStreamClosed, Stream: name, Message: fmt.Sprintf("%s stream closed", name)})
	default:
		l.emit(LogEntry{Kind: LogStreamClosed, Stream: name, Message: fmt.Sprintf("%s stream failed: %v", name, err)})
	}
}

func (l *Loop) dispatch(d Decision) {
	if d.Keyword != "" {
		l.emit(LogEntry{Kind: LogKeyword, Keyword: d.Keyword, Message: "Recognized: " + d.Keyword})
		if d.Missed() {
			l.emit(LogEntry{Kind: LogNoAsset, Keyword: d.Keyword, Message: "No animations for: " + d.Keyword})
		}
	}

	if d.Play != "" {
		l.Sink.Play(d.Play)
		if d.Idle {
			l.emit(LogEntry{Kind: LogIdle, Asset: d.Play, Message: "Idle animation: " + d.Play})
		} else {
			l.emit(LogEntry{Kind: LogPlay, Keyword: d.Keyword, Asset: d.Play, Message: "Playing: " + d.Play})
		}
	}

	if d.Subtitle != "" {
		l.emit(LogEntry{Kind: LogSubtitle, Message: d.Subtitle})
	}
	if d.Quirky != "" {
		l.emit(LogEntry{Kind: LogQuirky, Interval: d.QuirkyInterval, Message: d.Quirky})
	}
	if d.Glitch {
		l.emit(LogEntry{
			Kind:     LogGlitch,
			Stage:    d.GlitchStage,
			Interval: d.GlitchInterval,
			Message:  fmt.Sprintf("Glitch at stage %d (%s)", d.GlitchStage, d.GlitchInterval),
		})
	}

	for _, o := range d.Overlays {
		l.Sink.Show(o)
	}
	if d.Spectrum != nil {
		l.Sink.Spectrum(d.Spectrum)
	}
}

// emit sends a structured log entry. If Events is set, it sends there
// (non-blocking). Otherwise it falls back to writing a formatted line to Log.
func (l *Loop) emit(entry LogEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if l.Events != nil {
		select {
		case l.Events <- entry:
		default:
		}
		return
	}

	l.logMu.Lock()
	defer l.logMu.Unlock()
	w := l.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "[%s]  %s\n", entry.Timestamp.Format("15:04:05"), entry.Message)
}
