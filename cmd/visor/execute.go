package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LISSConsulting/LISSTech.Visor/internal/config"
	"github.com/LISSConsulting/LISSTech.Visor/internal/deck"
	"github.com/LISSConsulting/LISSTech.Visor/internal/event"
	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
	"github.com/LISSConsulting/LISSTech.Visor/internal/notify"
	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
	"github.com/LISSConsulting/LISSTech.Visor/internal/store"
	"github.com/LISSConsulting/LISSTech.Visor/internal/stream"
	"github.com/LISSConsulting/LISSTech.Visor/internal/supervisor"
	"github.com/LISSConsulting/LISSTech.Visor/internal/tui"
)

// executeRun loads config, builds every component, and runs the visor until
// the context is cancelled by a signal or a UI quit.
func executeRun(configPath string, noTUI bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	messages, err := cfg.QuirkyMessages()
	if err != nil {
		return err
	}

	rng := deck.NewRand(cfg.Scheduler.Seed)
	d, err := deck.Load(cfg.Resolve(cfg.Animations.Dir), cfg.Animations.Extensions, rng)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	events := make(chan loop.LogEntry, 256)
	report := func(entry loop.LogEntry) {
		if entry.Timestamp.IsZero() {
			entry.Timestamp = time.Now()
		}
		select {
		case events <- entry:
		default:
		}
	}

	tracker, err := newSessionTracker(cfg)
	if err != nil {
		return err
	}

	var display *tui.Display
	sinks := render.Multi{}
	if !noTUI {
		display = tui.NewDisplay()
		sinks = append(sinks, display)
	}

	var player *render.Player
	if cfg.Player.Enabled {
		player = render.NewPlayer(ctx, cfg.Player.Command, cfg.Player.Args, func(path string, err error) {
			report(loop.LogEntry{Kind: loop.LogError, Asset: path, Message: fmt.Sprintf("Playback failed for %s: %v", path, err)})
		})
		sinks = append(sinks, player)
	}

	var broker *render.MQTT
	if cfg.MQTT.Enabled {
		broker, err = render.DialMQTT(mqttOptions(cfg), func(err error) {
			report(loop.LogEntry{Kind: loop.LogError, Message: err.Error()})
		})
		if err != nil {
			tracker.finish(err)
			return err
		}
		sinks = append(sinks, broker)
	}

	queue := event.NewQueue()
	lp := &loop.Loop{
		Scheduler:   loop.NewScheduler(buildSchedulerConfig(cfg, messages), d, queue, rng, time.Now()),
		Queue:       queue,
		Sink:        sinks,
		Events:      events,
		Tick:        time.Duration(cfg.Scheduler.TickMS) * time.Millisecond,
		PollTimeout: time.Duration(cfg.Streams.PollTimeoutMS) * time.Millisecond,
		ChunkSize:   cfg.Streams.ChunkSize,
	}

	run := func(ctx context.Context) error {
		err := runVisor(ctx, cfg, lp, events, report, noTUI)
		if player != nil {
			player.Wait()
		}
		if broker != nil {
			if counts := broker.Published(); len(counts) > 0 {
				report(loop.LogEntry{Kind: loop.LogInfo, Message: formatPublished(counts)})
			}
			broker.Close()
		}
		return err
	}

	if noTUI {
		err = runConsole(ctx, events, tracker, os.Stdout, tui.NewTheme(cfg.TUI.AccentColor), run)
	} else {
		newModel := func(ch <-chan loop.LogEntry) tui.Model {
			return tui.New(ch, display, cfg.TUI.AccentColor, cfg.TUI.Title, cfg.Dir(), cancel)
		}
		err = runTUI(ctx, cancel, events, tracker, newModel, run)
	}

	tracker.finish(err)
	if noTUI {
		fmt.Fprint(os.Stdout, tracker.summary())
	}
	return err
}

// runVisor opens the input streams, boots the display, launches the
// recognizer and runs the control loop. The recognizer is terminated before
// it returns.
func runVisor(ctx context.Context, cfg *config.Config, lp *loop.Loop, events chan<- loop.LogEntry, report func(loop.LogEntry), noTUI bool) error {
	var sources []loop.Source
	for _, fc := range []struct {
		stream event.Stream
		cfg    config.FIFOConfig
	}{
		{event.StreamSubtitle, cfg.Streams.Subtitle},
		{event.StreamSpectrum, cfg.Streams.Spectrum},
	} {
		if !fc.cfg.Enabled {
			continue
		}
		fifo, err := stream.OpenFIFO(cfg.Resolve(fc.cfg.Path))
		if err != nil {
			if fc.cfg.Required {
				closeSources(sources)
				return err
			}
			report(loop.LogEntry{
				Kind:    loop.LogStreamClosed,
				Stream:  fc.stream.String(),
				Message: fmt.Sprintf("%s stream disabled: %v", fc.stream, err),
			})
			continue
		}
		sources = append(sources, loop.Source{Stream: fc.stream, Src: fifo})
	}

	loading := time.Duration(cfg.Animations.LoadingSeconds) * time.Second
	if err := lp.Boot(ctx, loading); err != nil {
		closeSources(sources)
		return err
	}

	stderr, closeStderr, err := recognizerStderr(cfg, noTUI)
	if err != nil {
		closeSources(sources)
		return err
	}
	defer closeStderr()

	handle, err := supervisor.Launch(supervisor.Config{
		Command: cfg.Recognizer.Command,
		Args:    cfg.Recognizer.Args,
		Dir:     cfg.Resolve(cfg.Recognizer.Dir),
		Env:     cfg.Recognizer.Env,
		Stderr:  stderr,
	}, events)
	if err != nil {
		closeSources(sources)
		return err
	}
	registerQuitHandler(func() { _ = handle.Terminate(0) })

	lp.Sources = append([]loop.Source{{Stream: event.StreamKeyword, Src: handle.Stdout()}}, sources...)
	runErr := lp.Run(ctx)

	grace := time.Duration(cfg.Recognizer.GraceSeconds) * time.Second
	if grace <= 0 {
		grace = supervisor.DefaultGrace
	}
	if err := handle.Terminate(grace); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func closeSources(sources []loop.Source) {
	for _, s := range sources {
		_ = s.Src.Close()
	}
}

// recognizerStderr picks where the child's stderr goes: the configured log
// file, the terminal in console mode, or nowhere under the dashboard.
func recognizerStderr(cfg *config.Config, noTUI bool) (io.Writer, func(), error) {
	if cfg.Recognizer.StderrLog != "" {
		path := cfg.Resolve(cfg.Recognizer.StderrLog)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open recognizer stderr log: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	if noTUI {
		return os.Stderr, func() {}, nil
	}
	return nil, func() {}, nil
}

// buildSchedulerConfig maps the file configuration onto the scheduler's.
func buildSchedulerConfig(cfg *config.Config, messages []string) loop.SchedulerConfig {
	sc := loop.DefaultSchedulerConfig()
	sc.IdleThreshold = cfg.IdleThreshold()
	sc.IdleKeyword = cfg.Animations.IdleKeyword
	sc.LoadingKeyword = cfg.Animations.LoadingKeyword
	sc.SubtitleWindow = seconds(cfg.Scheduler.SubtitleSeconds)
	sc.SpectrumDecay = cfg.Scheduler.SpectrumDecay

	sc.QuirkyPolicy = loop.QuirkyPolicy(cfg.Quirky.Policy)
	sc.QuietSource = loop.QuietSource(cfg.Quirky.QuietSource)
	sc.QuirkyBase = seconds(cfg.Quirky.IntervalSeconds)
	sc.QuirkyFloor = seconds(cfg.Quirky.MinSeconds)
	sc.QuirkyRandomMin = seconds(cfg.Quirky.RandomMinSeconds)
	sc.QuirkyRandomMax = seconds(cfg.Quirky.RandomMaxSeconds)
	if len(messages) > 0 {
		sc.QuirkyMessages = messages
	}
	sc.QuirkyOverlay = cfg.Quirky.Overlay
	sc.QuirkyDuration = seconds(cfg.Quirky.OverlaySeconds)

	if intervals := cfg.GlitchIntervals(); len(intervals) > 0 {
		sc.GlitchIntervals = intervals
	}
	sc.GlitchStartupDelay = seconds(cfg.Glitch.StartupDelaySeconds)
	sc.GlitchDuration = seconds(cfg.Glitch.DurationSeconds)
	if len(cfg.Glitch.Messages) > 0 {
		sc.GlitchMessages = cfg.Glitch.Messages
	}

	if cfg.Scheduler.FrameWidth > 0 && cfg.Scheduler.FrameHeight > 0 {
		sc.FrameWidth = cfg.Scheduler.FrameWidth
		sc.FrameHeight = cfg.Scheduler.FrameHeight
	}
	return sc
}

// mqttOptions maps the [mqtt] section. An empty client id becomes
// visor-<random>.
func mqttOptions(cfg *config.Config) render.MQTTOptions {
	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		clientID = "visor-" + uuid.NewString()[:8]
	}
	return render.MQTTOptions{
		Broker:          cfg.MQTT.Broker,
		ClientID:        clientID,
		TopicPrefix:     cfg.MQTT.TopicPrefix,
		QoS:             byte(cfg.MQTT.QoS),
		PublishSpectrum: cfg.MQTT.PublishSpectrum,
	}
}

// formatPublished renders per-topic publish counts in topic order.
func formatPublished(counts map[string]uint64) string {
	parts := make([]string, 0, len(counts))
	for _, topic := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", topic, counts[topic]))
	}
	return "MQTT published: " + strings.Join(parts, ", ")
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// newSessionTracker opens the journal and the notifier configured for this
// run. Either may be absent.
func newSessionTracker(cfg *config.Config) (*sessionTracker, error) {
	st := &sessionTracker{}
	if cfg.Journal.Enabled {
		dir := cfg.Resolve(cfg.Journal.Dir)
		j, err := store.NewJSONL(dir)
		if err != nil {
			return nil, err
		}
		st.journal = j
		st.journalDir = dir
		st.retention = cfg.Journal.Retention
	}
	if cfg.Notifications.URL != "" {
		st.notifier = notify.New(
			cfg.Notifications.URL,
			cfg.TUI.Title,
			cfg.Notifications.OnStreamLost,
			cfg.Notifications.OnRecognizerExit,
			cfg.Notifications.OnStop,
		)
	}
	return st, nil
}
