package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"shutter/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "shutter")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.ScreenshotsDir != filepath.Join(wantState, "screenshots") {
		t.Fatalf("unexpected screenshots dir: %q", cfg.Paths.ScreenshotsDir)
	}
	if cfg.Capture.Quality != 80 {
		t.Fatalf("unexpected default quality: %d", cfg.Capture.Quality)
	}
	if cfg.Queue.MaxSize != 50 {
		t.Fatalf("unexpected default max queue size: %d", cfg.Queue.MaxSize)
	}
	if cfg.Retention.CleanupDays != 30 {
		t.Fatalf("unexpected default cleanup days: %d", cfg.Retention.CleanupDays)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected default log format: %q", cfg.Logging.Format)
	}
}

func TestLoadParsesFileAndMergesViewports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[capture]
quality = 55

[queue]
max_size = 2

[viewports.wide]
width = 2560
height = 1440
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config file to be found, exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Capture.Quality != 55 {
		t.Fatalf("expected quality 55, got %d", cfg.Capture.Quality)
	}
	if cfg.Queue.MaxSize != 2 {
		t.Fatalf("expected max size 2, got %d", cfg.Queue.MaxSize)
	}
	vp, ok := cfg.Viewports["wide"]
	if !ok {
		t.Fatal("expected wide viewport to be parsed")
	}
	if vp.Width != 2560 || vp.Height != 1440 || vp.Mobile {
		t.Fatalf("unexpected viewport: %#v", vp)
	}
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"quality too high", func(c *config.Config) { c.Capture.Quality = 101 }},
		{"quality too low", func(c *config.Config) { c.Capture.Quality = -1 }},
		{"queue too large", func(c *config.Config) { c.Queue.MaxSize = 500 }},
		{"cleanup too long", func(c *config.Config) { c.Retention.CleanupDays = 1000 }},
		{"bad viewport", func(c *config.Config) {
			c.Viewports = map[string]config.Viewport{"tiny": {Width: 0, Height: 100}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when overwriting existing config")
	}
}
