package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InitFile writes a default visor.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: %s already exists at %s", FileName, path)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}

// Scaffold creates the visor layout in the given directory: visor.toml, the
// animations tree with its idle and loading keywords, and a .gitignore entry
// for the journal. Files that already exist are left untouched. Returns the
// list of created paths.
func Scaffold(dir string) ([]string, error) {
	var created []string

	// visor.toml
	tomlPath := filepath.Join(dir, FileName)
	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		if _, initErr := InitFile(dir); initErr != nil {
			return created, initErr
		}
		created = append(created, tomlPath)
	}

	// animations/<keyword>/
	defaults := Defaults()
	for _, kw := range []string{defaults.Animations.IdleKeyword, defaults.Animations.LoadingKeyword} {
		kwDir := filepath.Join(dir, defaults.Animations.Dir, kw)
		if _, err := os.Stat(kwDir); os.IsNotExist(err) {
			if mkErr := os.MkdirAll(kwDir, 0755); mkErr != nil {
				return created, fmt.Errorf("scaffold: create %s: %w", kwDir, mkErr)
			}
			created = append(created, kwDir)
		}
	}

	// .gitignore: keep session journals out of version control
	const gitignoreEntry = ".visor/"
	gitignorePath := filepath.Join(dir, ".gitignore")
	existing, err := os.ReadFile(gitignorePath)
	if os.IsNotExist(err) {
		if writeErr := os.WriteFile(gitignorePath, []byte(gitignoreEntry+"\n"), 0644); writeErr != nil {
			return created, fmt.Errorf("scaffold: write %s: %w", gitignorePath, writeErr)
		}
		created = append(created, gitignorePath)
	} else if err != nil {
		return created, fmt.Errorf("scaffold: read %s: %w", gitignorePath, err)
	} else if !strings.Contains(string(existing), gitignoreEntry) {
		content := string(existing)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			content += "\n"
		}
		content += gitignoreEntry + "\n"
		if writeErr := os.WriteFile(gitignorePath, []byte(content), 0644); writeErr != nil {
			return created, fmt.Errorf("scaffold: write %s: %w", gitignorePath, writeErr)
		}
		created = append(created, gitignorePath)
	}

	return created, nil
}

const configTemplate = `# visor.toml: visor display configuration
# Place this file next to your animations/ directory.
# Most paths, the MQTT broker and the notification URL can be overridden with
# VISOR_* environment variables, e.g. VISOR_MQTT_BROKER=helmet.local:1883.

[recognizer]
command = "python3"
args = ["-u", "speech_recognizer.py"]
grace_seconds = 3  # SIGTERM, then SIGKILL after this long
stderr_log = ""    # file for recognizer stderr (empty = terminal, discarded under the TUI)

[streams]
poll_timeout_ms = 100
chunk_size = 256

[streams.subtitle]
enabled = true
path = "/tmp/visor_subtitles"
required = false  # true = exit if the FIFO cannot be opened

[streams.spectrum]
enabled = true
path = "/tmp/visor_spectrum"
required = false

[animations]
dir = "animations"  # one sub-directory per keyword
extensions = [".gif", ".webp", ".mp4", ".avi", ".mov"]
idle_keyword = "idle"
loading_keyword = "loading"
loading_seconds = 3

[player]
enabled = true
command = "mpv"
args = ["--fs", "--loop-file=no", "--no-terminal", "--no-audio"]

[scheduler]
profile = "lively"          # "lively" (15s idle) or "relaxed" (30s idle)
idle_threshold_seconds = 0  # 0 = use the profile
tick_ms = 100
subtitle_seconds = 5
spectrum_decay = 0.9
seed = 0                    # 0 = random
frame_width = 1280
frame_height = 720

[quirky]
policy = "halve"           # "halve" or "random"
quiet_source = "activity"  # "activity" or "subtitle"
interval_seconds = 5
min_seconds = 1
random_min_seconds = 7
random_max_seconds = 15
overlay = true
overlay_seconds = 3
messages_file = ""         # YAML list of strings (empty = built-in messages)

[glitch]
intervals_seconds = [10, 5, 2.5, 1.25, 0.75]
startup_delay_seconds = 5
duration_seconds = 3

[tui]
accent_color = "#FF1493"  # hex color for header/accent elements
title = "visor"

[journal]
enabled = true
dir = ".visor/logs"
retention = 20  # number of session journals to keep; 0 = unlimited

[notifications]
url = ""                   # ntfy.sh topic URL or any HTTP webhook (empty = disabled)
on_stream_lost = true      # notify when an input stream closes
on_recognizer_exit = true  # notify when the recognizer process exits
on_stop = true             # notify when the visor stops

[mqtt]
enabled = false
broker = "localhost:1883"
client_id = ""  # empty = visor-<random>
topic_prefix = "visor"
qos = 0
publish_spectrum = false
`
