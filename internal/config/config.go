package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir       string `toml:"state_dir"`
	ScreenshotsDir string `toml:"screenshots_dir"`
	LogDir         string `toml:"log_dir"`
}

// Capture contains configuration for the external capture tools.
type Capture struct {
	Quality        int `toml:"quality"`
	TimeoutSeconds int `toml:"timeout_seconds"`
	ScriptDelayMS  int `toml:"script_delay_ms"`
}

// Queue contains configuration for queue admission and draining.
type Queue struct {
	MaxSize        int `toml:"max_size"`
	DrainBatchSize int `toml:"drain_batch_size"`
	ItemDelayMS    int `toml:"item_delay_ms"`
}

// Retention contains configuration for artifact and row cleanup.
type Retention struct {
	CleanupDays int `toml:"cleanup_days"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval    int `toml:"queue_poll_interval"`
	CleanupIntervalHours int `toml:"cleanup_interval_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Viewport declares an additional named capture profile.
type Viewport struct {
	Width  int  `toml:"width"`
	Height int  `toml:"height"`
	Mobile bool `toml:"mobile"`
}

// Config encapsulates all configuration values for Shutter.
//
// Configuration sections by subsystem:
//   - Paths: state, screenshot, and log directories
//   - Capture: quality, process timeout, script render delay
//   - Queue: admission cap, drain batch size, inter-item throttle
//   - Retention: artifact and queue-row cleanup horizon
//   - Workflow: daemon polling intervals
//   - Logging: log format, level, and retention
//   - Viewports: extra named viewports merged into the built-in catalog
type Config struct {
	Paths     Paths               `toml:"paths"`
	Capture   Capture             `toml:"capture"`
	Queue     Queue               `toml:"queue"`
	Retention Retention           `toml:"retention"`
	Workflow  Workflow            `toml:"workflow"`
	Logging   Logging             `toml:"logging"`
	Viewports map[string]Viewport `toml:"viewports"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/shutter/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	_, err = os.Stat(defaultPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

// WriteSample writes the embedded sample configuration to the given path,
// creating parent directories as needed. It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ and environment variables in the supplied path and
// returns an absolute, cleaned result.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	expanded := os.ExpandEnv(trimmed)
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}

// EnsureDirectories creates the directories the daemon requires at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.ScreenshotsDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueueDatabasePath returns the location of the screenshot queue database.
func (c *Config) QueueDatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "queue.db")
}

// AnalyticsDatabasePath returns the location of the page-view analytics database.
func (c *Config) AnalyticsDatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "analytics.db")
}

// SocketPath returns the daemon control socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "shutterd.sock")
}
