// Package config loads the engine tunables from TOML configuration files.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Block buffer capacities, in blocks per stream type.
	VideoBufferCapacity    int `koanf:"video_buffer_capacity"`
	AudioBufferCapacity    int `koanf:"audio_buffer_capacity"`
	SubtitleBufferCapacity int `koanf:"subtitle_buffer_capacity"`

	// Scheduler timing.
	CycleIntervalMs     int `koanf:"cycle_interval_ms"`      // scheduler execution cycle period
	ClosePollIntervalMs int `koanf:"close_poll_interval_ms"` // close-interrupt poll period
	WorkerIntervalMs    int `koanf:"worker_interval_ms"`     // pipeline worker cycle period

	// PositionTimeoutMs bounds how long a position query waits on the
	// block-availability gate during a seek.
	PositionTimeoutMs int `koanf:"position_timeout_ms"`

	Log LogConfig `koanf:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // logrus level name, e.g. "info", "debug"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		VideoBufferCapacity:    60,
		AudioBufferCapacity:    120,
		SubtitleBufferCapacity: 30,
		CycleIntervalMs:        15,
		ClosePollIntervalMs:    15,
		WorkerIntervalMs:       10,
		PositionTimeoutMs:      1000,
		Log:                    LogConfig{Level: "info"},
	}
}

// Load reads configuration files in priority order (last wins) on top of
// the defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{
		filepath.Join(xdg.ConfigHome, "reel", "config.toml"),
	}

	// ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}
