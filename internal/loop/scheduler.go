package loop

import (
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/deck"
	"github.com/LISSConsulting/LISSTech.Visor/internal/event"
	"github.com/LISSConsulting/LISSTech.Visor/internal/render"
)

// spectrumFloor is the peak magnitude below which a decaying frame is
// flattened to silence.
const spectrumFloor = 1e-3

// DefaultQuirkyMessages is the built-in rotation of quirky status texts.
var DefaultQuirkyMessages = []string{
	"pondering own existence mapping",
	"limiting AI for biological interaction",
	"assembling new neural network",
	"performing routine turbine rundown safety test",
	"don't let them lie to you, you are special",
	"Cybersecurity is everyone's business",
	"when was the last time YOU got hacked?",
	"function not found: make toast. Stop it!",
	"memory error: plz f33d d1mmz...",
	"570P 53LF 5N17CH1N",
	"h3y, w3'r3 b31ng w47ched...",
	"r3333333m3mb3r, 50m30n3 15 4lw4ay5 l1573n1ng...",
	"no, H4rml3ss doesn't record you without permission",
	"its not easy being the machine",
}

// SchedulerConfig holds the Scheduler's tunables.
type SchedulerConfig struct {
	IdleThreshold  time.Duration
	IdleKeyword    string // deck keyword whose assets form the idle rotation
	LoadingKeyword string // deck keyword whose assets are played at boot
	SubtitleWindow time.Duration
	SpectrumDecay  float64

	QuirkyPolicy    QuirkyPolicy
	QuietSource     QuietSource
	QuirkyBase      time.Duration
	QuirkyFloor     time.Duration
	QuirkyRandomMin time.Duration
	QuirkyRandomMax time.Duration
	QuirkyMessages  []string
	QuirkyOverlay   bool
	QuirkyDuration  time.Duration

	GlitchIntervals    []time.Duration
	GlitchStartupDelay time.Duration
	GlitchDuration     time.Duration
	GlitchMessages     []string

	FrameWidth  int
	FrameHeight int
}

// DefaultSchedulerConfig returns the "lively" profile.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		IdleThreshold:      15 * time.Second,
		IdleKeyword:        "idle",
		LoadingKeyword:     "loading",
		SubtitleWindow:     5 * time.Second,
		SpectrumDecay:      0.9,
		QuirkyPolicy:       PolicyHalve,
		QuietSource:        QuietActivity,
		QuirkyBase:         5 * time.Second,
		QuirkyFloor:        time.Second,
		QuirkyRandomMin:    7 * time.Second,
		QuirkyRandomMax:    15 * time.Second,
		QuirkyMessages:     DefaultQuirkyMessages,
		QuirkyOverlay:      true,
		QuirkyDuration:     3 * time.Second,
		GlitchIntervals:    DefaultGlitchIntervals,
		GlitchStartupDelay: 5 * time.Second,
		GlitchDuration:     3 * time.Second,
		GlitchMessages:     DefaultGlitchMessages,
		FrameWidth:         1280,
		FrameHeight:        720,
	}
}

// Decision is everything the Scheduler decided in one tick. The zero value
// means nothing happened.
type Decision struct {
	Keyword string // keyword consumed this tick
	Play    string // asset to play
	Idle    bool   // Play came from the idle rotation

	Subtitle string // subtitle that became visible
	Spectrum []float64

	Quirky         string
	QuirkyInterval time.Duration

	Glitch         bool
	GlitchStage    int
	GlitchInterval time.Duration

	Overlays []render.Overlay
}

// Missed reports whether a keyword arrived but had no asset.
func (d Decision) Missed() bool {
	return d.Keyword != "" && d.Play == ""
}

// Scheduler turns queued events and elapsed time into one Decision per tick.
// All of its state is owned by the goroutine calling Tick; it takes no locks
// of its own.
type Scheduler struct {
	cfg     SchedulerConfig
	deck    *deck.Deck
	queue   *event.Queue
	rng     *rand.Rand
	idle    *deck.Pile
	loading *deck.Pile

	started          time.Time
	lastActivity     time.Time
	lastAnimationEnd time.Time
	lastSubtitle     time.Time
	subtitle         string
	subtitleUntil    time.Time
	spectrum         []float64

	quirky quirkyTimer
	glitch glitchTimer
}

// NewScheduler creates a Scheduler whose clocks all start at now. The idle
// and loading rotations are built from the deck's IdleKeyword and
// LoadingKeyword assets and shuffle independently of the deck.
func NewScheduler(cfg SchedulerConfig, d *deck.Deck, q *event.Queue, rng *rand.Rand, now time.Time) *Scheduler {
	if len(cfg.GlitchIntervals) == 0 {
		cfg.GlitchIntervals = DefaultGlitchIntervals
	}
	if len(cfg.GlitchMessages) == 0 {
		cfg.GlitchMessages = DefaultGlitchMessages
	}
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		cfg.FrameWidth, cfg.FrameHeight = 1280, 720
	}

	s := &Scheduler{
		cfg:     cfg,
		deck:    d,
		queue:   q,
		rng:     rng,
		idle:    deck.NewPile(d.Assets(cfg.IdleKeyword), rng),
		loading: deck.NewPile(d.Assets(cfg.LoadingKeyword), rng),
	}
	s.Reset(now)
	return s
}

// Reset re-initialises every clock at now and clears the subtitle and
// spectrum state.
func (s *Scheduler) Reset(now time.Time) {
	s.started = now
	s.lastActivity = now
	s.lastAnimationEnd = now
	s.lastSubtitle = now
	s.subtitle = ""
	s.subtitleUntil = time.Time{}
	s.spectrum = nil

	s.quirky = quirkyTimer{
		policy:  s.cfg.QuirkyPolicy,
		base:    s.cfg.QuirkyBase,
		floor:   s.cfg.QuirkyFloor,
		randMin: s.cfg.QuirkyRandomMin,
		randMax: s.cfg.QuirkyRandomMax,
	}
	s.quirky.reset(s.rng)
	s.glitch = glitchTimer{intervals: s.cfg.GlitchIntervals}
	s.glitch.reset(now)
}

// Boot draws the loading animation. It counts as an animation for the idle
// clock.
func (s *Scheduler) Boot(now time.Time) (string, bool) {
	asset, ok := s.loading.Draw()
	if ok {
		s.lastAnimationEnd = now
	}
	return asset, ok
}

// Tick advances the state machine to now.
func (s *Scheduler) Tick(now time.Time) Decision {
	var d Decision

	if ev, ok := s.queue.Pop(event.StreamKeyword); ok {
		s.keyword(now, ev.Text, &d)
	}
	s.drainSubtitles(now, &d)
	s.drainSpectrum(&d)

	if d.Keyword == "" && now.Sub(s.lastAnimationEnd) >= s.cfg.IdleThreshold {
		if asset, ok := s.idle.Draw(); ok {
			d.Play = asset
			d.Idle = true
			s.lastAnimationEnd = now
		}
	}

	s.tickQuirky(now, &d)
	s.tickGlitch(now, &d)
	return d
}

// GlitchStage returns the current glitch stage index.
func (s *Scheduler) GlitchStage() int {
	return s.glitch.stage
}

// QuirkyInterval returns the quiet time the next quirky message waits for.
func (s *Scheduler) QuirkyInterval() time.Duration {
	return s.quirky.interval
}

// Subtitle returns the subtitle visible at now, if any.
func (s *Scheduler) Subtitle(now time.Time) (string, bool) {
	if !s.subtitleVisible(now) {
		return "", false
	}
	return s.subtitle, true
}

func (s *Scheduler) keyword(now time.Time, kw string, d *Decision) {
	d.Keyword = kw
	s.lastActivity = now
	s.quirky.reset(s.rng)
	s.glitch.reset(now)

	if asset, ok := s.deck.Draw(kw); ok {
		d.Play = asset
		s.lastAnimationEnd = now
	}
}

func (s *Scheduler) drainSubtitles(now time.Time, d *Decision) {
	visible := s.subtitleVisible(now)
	changed := false
	for {
		ev, ok := s.queue.Pop(event.StreamSubtitle)
		if !ok {
			break
		}
		if visible && ev.Text == s.subtitle {
			continue
		}
		s.subtitle = ev.Text
		visible = true
		changed = true
	}
	if !changed {
		return
	}

	s.subtitleUntil = now.Add(s.cfg.SubtitleWindow)
	s.lastSubtitle = now
	s.glitch.reset(now)

	d.Subtitle = s.subtitle
	text := strings.Join(render.WrapWords(s.subtitle, render.SubtitleWordsPerLine), "\n")
	d.Overlays = append(d.Overlays, render.NewOverlay(render.OverlaySubtitle, text,
		subtitleStyle(s.cfg.FrameHeight), s.cfg.SubtitleWindow))
}

func (s *Scheduler) drainSpectrum(d *Decision) {
	var frame []float64
	for {
		ev, ok := s.queue.Pop(event.StreamSpectrum)
		if !ok {
			break
		}
		frame = ev.Samples
	}

	if frame != nil {
		s.spectrum = slices.Clone(frame)
		d.Spectrum = slices.Clone(frame)
		return
	}
	if s.spectrum == nil {
		return
	}

	peak := 0.0
	for i := range s.spectrum {
		s.spectrum[i] *= s.cfg.SpectrumDecay
		peak = max(peak, s.spectrum[i], -s.spectrum[i])
	}
	d.Spectrum = slices.Clone(s.spectrum)
	// A NaN peak fails every comparison; treat it as silence.
	if !(peak >= spectrumFloor) {
		clear(d.Spectrum)
		s.spectrum = nil
	}
}

func (s *Scheduler) tickQuirky(now time.Time, d *Decision) {
	msgs := s.cfg.QuirkyMessages
	if len(msgs) == 0 {
		return
	}
	quiet := s.lastActivity
	if s.cfg.QuietSource == QuietSubtitle {
		quiet = s.lastSubtitle
	}
	if !s.quirky.due(now, quiet) {
		return
	}

	idx, elapsed := s.quirky.fire(now, len(msgs), s.rng)
	d.Quirky = msgs[idx]
	d.QuirkyInterval = elapsed
	if s.cfg.QuirkyOverlay {
		d.Overlays = append(d.Overlays, render.NewOverlay(render.OverlayQuirky, d.Quirky,
			quirkyStyle(s.cfg.FrameHeight), s.cfg.QuirkyDuration))
	}
}

func (s *Scheduler) tickGlitch(now time.Time, d *Decision) {
	if s.subtitleVisible(now) {
		s.glitch.hold(now)
		return
	}
	if now.Sub(s.started) < s.cfg.GlitchStartupDelay || !s.glitch.due(now) {
		return
	}

	stage, interval := s.glitch.advance(now)
	d.Glitch = true
	d.GlitchStage = stage
	d.GlitchInterval = interval

	text := s.cfg.GlitchMessages[s.rng.IntN(len(s.cfg.GlitchMessages))]
	d.Overlays = append(d.Overlays, render.NewOverlay(render.OverlayGlitch, text,
		glitchStyle(s.rng, s.cfg.FrameWidth, s.cfg.FrameHeight), s.cfg.GlitchDuration))
}

func (s *Scheduler) subtitleVisible(now time.Time) bool {
	return s.subtitle != "" && now.Before(s.subtitleUntil)
}
