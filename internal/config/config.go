// Package config loads optional user settings from
// ~/.config/envdiff/config.yaml. A missing file means defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DebounceMS is the file-watch debounce window in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`
	// ShowIdentical controls whether rows identical across all files are
	// listed in the TUI by default.
	ShowIdentical bool `yaml:"show_identical"`
	// Accent is the lipgloss color used for highlights (ANSI or hex).
	Accent string `yaml:"accent"`
}

func Default() Config {
	return Config{
		DebounceMS:    200,
		ShowIdentical: true,
		Accent:        "205",
	}
}

// Path returns the settings file location.
func Path() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "envdiff", "config.yaml")
}

// Load reads the settings file, falling back to defaults when it is missing
// or a field is unset. A malformed file is an error; silently ignoring it
// hides typos from the user.
func Load() (Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = Default().DebounceMS
	}
	if cfg.Accent == "" {
		cfg.Accent = Default().Accent
	}
	return cfg, nil
}

// Debounce returns the configured debounce window as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
