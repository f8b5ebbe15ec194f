// Package config parses visor.toml configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load.
const FileName = "visor.toml"

// DefaultAccentColor is the default TUI accent color (neon pink).
const DefaultAccentColor = "#FF1493"

// Scheduler profiles and the idle threshold each one selects.
const (
	ProfileLively  = "lively"
	ProfileRelaxed = "relaxed"
)

var profileIdle = map[string]time.Duration{
	ProfileLively:  15 * time.Second,
	ProfileRelaxed: 30 * time.Second,
}

// hexColorRe matches a 6-digit hex color string like "#FF1493".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level visor.toml configuration.
type Config struct {
	Recognizer    RecognizerConfig    `toml:"recognizer" envPrefix:"RECOGNIZER_"`
	Streams       StreamsConfig       `toml:"streams" envPrefix:"STREAMS_"`
	Animations    AnimationsConfig    `toml:"animations" envPrefix:"ANIMATIONS_"`
	Player        PlayerConfig        `toml:"player" envPrefix:"PLAYER_"`
	Scheduler     SchedulerConfig     `toml:"scheduler" envPrefix:"SCHEDULER_"`
	Quirky        QuirkyConfig        `toml:"quirky"`
	Glitch        GlitchConfig        `toml:"glitch"`
	TUI           TUIConfig           `toml:"tui" envPrefix:"TUI_"`
	Journal       JournalConfig       `toml:"journal" envPrefix:"JOURNAL_"`
	Notifications NotificationsConfig `toml:"notifications" envPrefix:"NOTIFICATIONS_"`
	MQTT          MQTTConfig          `toml:"mqtt" envPrefix:"MQTT_"`

	// dir is the directory relative paths resolve against.
	dir string
}

// RecognizerConfig controls the speech recognizer subprocess.
type RecognizerConfig struct {
	Command      string   `toml:"command" env:"COMMAND"`
	Args         []string `toml:"args"`
	Dir          string   `toml:"dir" env:"DIR"`
	Env          []string `toml:"env"`
	GraceSeconds int      `toml:"grace_seconds"`
	StderrLog    string   `toml:"stderr_log" env:"STDERR_LOG"` // file receiving recognizer stderr; empty = terminal (console mode) or discard (TUI)
}

// StreamsConfig controls the input stream readers.
type StreamsConfig struct {
	PollTimeoutMS int        `toml:"poll_timeout_ms"`
	ChunkSize     int        `toml:"chunk_size"`
	Subtitle      FIFOConfig `toml:"subtitle" envPrefix:"SUBTITLE_"`
	Spectrum      FIFOConfig `toml:"spectrum" envPrefix:"SPECTRUM_"`
}

// FIFOConfig describes one named-pipe input.
type FIFOConfig struct {
	Enabled  bool   `toml:"enabled"`
	Path     string `toml:"path" env:"PATH"`
	Required bool   `toml:"required"` // failure to open is fatal instead of disabling the stream
}

// AnimationsConfig locates the asset tree.
type AnimationsConfig struct {
	Dir            string   `toml:"dir" env:"DIR"`
	Extensions     []string `toml:"extensions"`
	IdleKeyword    string   `toml:"idle_keyword"`
	LoadingKeyword string   `toml:"loading_keyword"`
	LoadingSeconds int      `toml:"loading_seconds"` // pause after the loading animation before launching the recognizer
}

// PlayerConfig controls the external media player.
type PlayerConfig struct {
	Enabled bool     `toml:"enabled" env:"ENABLED"`
	Command string   `toml:"command" env:"COMMAND"`
	Args    []string `toml:"args"`
}

// SchedulerConfig controls the control loop cadence and idle behaviour.
type SchedulerConfig struct {
	Profile              string  `toml:"profile" env:"PROFILE"`
	IdleThresholdSeconds int     `toml:"idle_threshold_seconds"` // 0 = use the profile
	TickMS               int     `toml:"tick_ms"`
	SubtitleSeconds      int     `toml:"subtitle_seconds"`
	SpectrumDecay        float64 `toml:"spectrum_decay"`
	Seed                 uint64  `toml:"seed" env:"SEED"` // 0 = random
	FrameWidth           int     `toml:"frame_width"`
	FrameHeight          int     `toml:"frame_height"`
}

// QuirkyConfig controls quirky status messages.
type QuirkyConfig struct {
	Policy           string   `toml:"policy"`       // "halve" or "random"
	QuietSource      string   `toml:"quiet_source"` // "activity" or "subtitle"
	IntervalSeconds  int      `toml:"interval_seconds"`
	MinSeconds       int      `toml:"min_seconds"`
	RandomMinSeconds int      `toml:"random_min_seconds"`
	RandomMaxSeconds int      `toml:"random_max_seconds"`
	Overlay          bool     `toml:"overlay"`
	OverlaySeconds   int      `toml:"overlay_seconds"`
	Messages         []string `toml:"messages"`
	MessagesFile     string   `toml:"messages_file"`
}

// GlitchConfig controls glitch overlays.
type GlitchConfig struct {
	IntervalsSeconds    []float64 `toml:"intervals_seconds"`
	StartupDelaySeconds int       `toml:"startup_delay_seconds"`
	DurationSeconds     int       `toml:"duration_seconds"`
	Messages            []string  `toml:"messages"`
}

// TUIConfig controls the terminal UI appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color" env:"ACCENT_COLOR"`
	Title       string `toml:"title"`
}

// JournalConfig controls the JSONL session journal.
type JournalConfig struct {
	Enabled   bool   `toml:"enabled" env:"ENABLED"`
	Dir       string `toml:"dir" env:"DIR"`
	Retention int    `toml:"retention"` // number of session journals to keep; 0 = unlimited
}

// NotificationsConfig controls webhook/ntfy.sh notifications.
type NotificationsConfig struct {
	URL              string `toml:"url" env:"URL"`
	OnStreamLost     bool   `toml:"on_stream_lost"`
	OnRecognizerExit bool   `toml:"on_recognizer_exit"`
	OnStop           bool   `toml:"on_stop"`
}

// MQTTConfig controls publishing decisions to an MQTT broker.
type MQTTConfig struct {
	Enabled         bool   `toml:"enabled" env:"ENABLED"`
	Broker          string `toml:"broker" env:"BROKER"`
	ClientID        string `toml:"client_id" env:"CLIENT_ID"` // empty = visor-<random>
	TopicPrefix     string `toml:"topic_prefix"`
	QoS             int    `toml:"qos"`
	PublishSpectrum bool   `toml:"publish_spectrum"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Recognizer: RecognizerConfig{
			Command:      "python3",
			Args:         []string{"-u", "speech_recognizer.py"},
			GraceSeconds: 3,
		},
		Streams: StreamsConfig{
			PollTimeoutMS: 100,
			ChunkSize:     256,
			Subtitle:      FIFOConfig{Enabled: true, Path: "/tmp/visor_subtitles"},
			Spectrum:      FIFOConfig{Enabled: true, Path: "/tmp/visor_spectrum"},
		},
		Animations: AnimationsConfig{
			Dir:            "animations",
			Extensions:     []string{".gif", ".webp", ".mp4", ".avi", ".mov"},
			IdleKeyword:    "idle",
			LoadingKeyword: "loading",
			LoadingSeconds: 3,
		},
		Player: PlayerConfig{
			Enabled: true,
			Command: "mpv",
			Args:    []string{"--fs", "--loop-file=no", "--no-terminal", "--no-audio"},
		},
		Scheduler: SchedulerConfig{
			Profile:         ProfileLively,
			TickMS:          100,
			SubtitleSeconds: 5,
			SpectrumDecay:   0.9,
			FrameWidth:      1280,
			FrameHeight:     720,
		},
		Quirky: QuirkyConfig{
			Policy:           "halve",
			QuietSource:      "activity",
			IntervalSeconds:  5,
			MinSeconds:       1,
			RandomMinSeconds: 7,
			RandomMaxSeconds: 15,
			Overlay:          true,
			OverlaySeconds:   3,
		},
		Glitch: GlitchConfig{
			IntervalsSeconds:    []float64{10, 5, 2.5, 1.25, 0.75},
			StartupDelaySeconds: 5,
			DurationSeconds:     3,
		},
		TUI: TUIConfig{
			AccentColor: DefaultAccentColor,
			Title:       "visor",
		},
		Journal: JournalConfig{
			Enabled:   true,
			Dir:       ".visor/logs",
			Retention: 20,
		},
		Notifications: NotificationsConfig{
			OnStreamLost:     true,
			OnRecognizerExit: true,
			OnStop:           true,
		},
		MQTT: MQTTConfig{
			Broker:      "localhost:1883",
			TopicPrefix: "visor",
		},
	}
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Recognizer.Command == "" {
		errs = append(errs, fmt.Errorf("recognizer.command must not be empty"))
	}
	if c.Recognizer.GraceSeconds < 0 {
		errs = append(errs, fmt.Errorf("recognizer.grace_seconds must be >= 0"))
	}
	for _, kv := range c.Recognizer.Env {
		if !strings.Contains(kv, "=") {
			errs = append(errs, fmt.Errorf("recognizer.env entry %q must be KEY=VALUE", kv))
		}
	}

	if c.Streams.PollTimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("streams.poll_timeout_ms must be > 0"))
	}
	if c.Streams.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("streams.chunk_size must be > 0"))
	}
	for name, f := range map[string]FIFOConfig{"subtitle": c.Streams.Subtitle, "spectrum": c.Streams.Spectrum} {
		if f.Enabled && f.Path == "" {
			errs = append(errs, fmt.Errorf("streams.%s.path must be set when the stream is enabled", name))
		}
	}

	if c.Animations.Dir == "" {
		errs = append(errs, fmt.Errorf("animations.dir must not be empty"))
	}
	for _, ext := range c.Animations.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("animations.extensions entry %q must look like \".gif\"", ext))
		}
	}
	if c.Animations.LoadingSeconds < 0 {
		errs = append(errs, fmt.Errorf("animations.loading_seconds must be >= 0"))
	}

	if c.Player.Enabled && c.Player.Command == "" {
		errs = append(errs, fmt.Errorf("player.command must be set when the player is enabled"))
	}

	if _, ok := profileIdle[c.Scheduler.Profile]; !ok {
		errs = append(errs, fmt.Errorf("scheduler.profile must be %q or %q", ProfileLively, ProfileRelaxed))
	}
	if c.Scheduler.IdleThresholdSeconds < 0 {
		errs = append(errs, fmt.Errorf("scheduler.idle_threshold_seconds must be >= 0 (0 = use profile)"))
	}
	if c.Scheduler.TickMS <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.tick_ms must be > 0"))
	}
	if c.Scheduler.SubtitleSeconds <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.subtitle_seconds must be > 0"))
	}
	if c.Scheduler.SpectrumDecay <= 0 || c.Scheduler.SpectrumDecay > 1 {
		errs = append(errs, fmt.Errorf("scheduler.spectrum_decay must be in (0, 1]"))
	}
	if c.Scheduler.FrameWidth <= 0 || c.Scheduler.FrameHeight <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.frame_width and frame_height must be > 0"))
	}

	switch c.Quirky.Policy {
	case "halve", "random":
	default:
		errs = append(errs, fmt.Errorf("quirky.policy must be \"halve\" or \"random\""))
	}
	switch c.Quirky.QuietSource {
	case "activity", "subtitle":
	default:
		errs = append(errs, fmt.Errorf("quirky.quiet_source must be \"activity\" or \"subtitle\""))
	}
	if c.Quirky.IntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("quirky.interval_seconds must be > 0"))
	}
	if c.Quirky.MinSeconds <= 0 || c.Quirky.MinSeconds > c.Quirky.IntervalSeconds {
		errs = append(errs, fmt.Errorf("quirky.min_seconds must be > 0 and <= quirky.interval_seconds"))
	}
	if c.Quirky.RandomMinSeconds <= 0 || c.Quirky.RandomMaxSeconds < c.Quirky.RandomMinSeconds {
		errs = append(errs, fmt.Errorf("quirky.random_min_seconds must be > 0 and <= quirky.random_max_seconds"))
	}
	if c.Quirky.Overlay && c.Quirky.OverlaySeconds <= 0 {
		errs = append(errs, fmt.Errorf("quirky.overlay_seconds must be > 0 when overlays are enabled"))
	}
	if len(c.Quirky.Messages) > 0 && c.Quirky.MessagesFile != "" {
		errs = append(errs, fmt.Errorf("set only one of quirky.messages and quirky.messages_file"))
	}

	if len(c.Glitch.IntervalsSeconds) == 0 {
		errs = append(errs, fmt.Errorf("glitch.intervals_seconds must not be empty"))
	}
	for i, s := range c.Glitch.IntervalsSeconds {
		if s <= 0 {
			errs = append(errs, fmt.Errorf("glitch.intervals_seconds[%d] must be > 0", i))
		}
		if i > 0 && s > c.Glitch.IntervalsSeconds[i-1] {
			errs = append(errs, fmt.Errorf("glitch.intervals_seconds must not increase (entry %d)", i))
		}
	}
	if c.Glitch.StartupDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("glitch.startup_delay_seconds must be >= 0"))
	}
	if c.Glitch.DurationSeconds <= 0 {
		errs = append(errs, fmt.Errorf("glitch.duration_seconds must be > 0"))
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#FF1493\")"))
	}

	if c.Journal.Enabled && c.Journal.Dir == "" {
		errs = append(errs, fmt.Errorf("journal.dir must be set when the journal is enabled"))
	}
	if c.Journal.Retention < 0 {
		errs = append(errs, fmt.Errorf("journal.retention must be >= 0 (0 = unlimited)"))
	}

	if c.Notifications.URL != "" {
		u, parseErr := url.ParseRequestURI(c.Notifications.URL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("notifications.url must be a valid http or https URL"))
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, fmt.Errorf("mqtt.broker must be set when mqtt is enabled"))
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, fmt.Errorf("mqtt.topic_prefix must not be empty"))
		}
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2"))
	}

	return errors.Join(errs...)
}

// IdleThreshold returns the explicit idle threshold, or the one selected by
// the profile.
func (c *Config) IdleThreshold() time.Duration {
	if c.Scheduler.IdleThresholdSeconds > 0 {
		return time.Duration(c.Scheduler.IdleThresholdSeconds) * time.Second
	}
	if d, ok := profileIdle[c.Scheduler.Profile]; ok {
		return d
	}
	return profileIdle[ProfileLively]
}

// GlitchIntervals converts the configured table to durations.
func (c *Config) GlitchIntervals() []time.Duration {
	out := make([]time.Duration, len(c.Glitch.IntervalsSeconds))
	for i, s := range c.Glitch.IntervalsSeconds {
		out[i] = time.Duration(s * float64(time.Second))
	}
	return out
}

// Dir returns the directory the configuration was loaded from, or the
// working directory when defaults were used.
func (c *Config) Dir() string {
	return c.dir
}

// Resolve makes a relative path relative to Dir. Absolute paths and an
// empty Dir pass through unchanged.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Load reads visor.toml from the given path. If path is empty, it walks up
// from the current working directory looking for visor.toml and falls back
// to Defaults when none exists. Returns an error if the file contains
// unknown keys (likely typos). VISOR_* environment variables override the
// result last.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := findConfig()
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Defaults()
			cfg.dir, _ = os.Getwd()
			if command, args, ok := DetectRecognizer(cfg.dir); ok {
				cfg.Recognizer.Command, cfg.Recognizer.Args = command, args
			}
			if err := applyEnv(&cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, joinKeys(keys))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.dir = filepath.Dir(abs)

	if !meta.IsDefined("recognizer", "command") && !meta.IsDefined("recognizer", "args") {
		if command, args, ok := DetectRecognizer(cfg.dir); ok {
			cfg.Recognizer.Command, cfg.Recognizer.Args = command, args
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// joinKeys formats a slice of key names for display.
func joinKeys(keys []string) string {
	return strings.Join(keys, ", ")
}

// findConfig walks up from the current directory looking for visor.toml.
// The returned error wraps fs.ErrNotExist when no file is found.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: %s not found (searched up from %s): %w", FileName, dir, fs.ErrNotExist)
		}
		dir = parent
	}
}
