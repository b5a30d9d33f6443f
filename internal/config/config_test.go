package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.VideoBufferCapacity != 60 || cfg.AudioBufferCapacity != 120 || cfg.SubtitleBufferCapacity != 30 {
		t.Errorf("buffer capacities = %d/%d/%d", cfg.VideoBufferCapacity, cfg.AudioBufferCapacity, cfg.SubtitleBufferCapacity)
	}
	if cfg.CycleIntervalMs != 15 || cfg.WorkerIntervalMs != 10 {
		t.Errorf("intervals = %d/%d", cfg.CycleIntervalMs, cfg.WorkerIntervalMs)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

// chdir changes the working directory for the duration of the test,
// matching the behavior of testing.T.Chdir (added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoad_NoFilesReturnsDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
video_buffer_capacity = 90
cycle_interval_ms = 20

[log]
level = "debug"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VideoBufferCapacity != 90 {
		t.Errorf("VideoBufferCapacity = %d, want 90", cfg.VideoBufferCapacity)
	}
	if cfg.CycleIntervalMs != 20 {
		t.Errorf("CycleIntervalMs = %d, want 20", cfg.CycleIntervalMs)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.AudioBufferCapacity != 120 {
		t.Errorf("AudioBufferCapacity = %d, want default 120", cfg.AudioBufferCapacity)
	}
}
