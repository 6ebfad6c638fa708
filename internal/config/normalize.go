package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCapture()
	c.normalizeQueue()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = ExpandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScreenshotsDir) == "" {
		c.Paths.ScreenshotsDir = defaultScreenshotsDir
	}
	if c.Paths.ScreenshotsDir, err = ExpandPath(c.Paths.ScreenshotsDir); err != nil {
		return fmt.Errorf("paths.screenshots_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCapture() {
	if c.Capture.Quality == 0 {
		c.Capture.Quality = defaultCaptureQuality
	}
	if c.Capture.TimeoutSeconds <= 0 {
		c.Capture.TimeoutSeconds = defaultCaptureTimeoutSeconds
	}
	if c.Capture.ScriptDelayMS <= 0 {
		c.Capture.ScriptDelayMS = defaultCaptureScriptDelayMS
	}
}

func (c *Config) normalizeQueue() {
	if c.Queue.MaxSize == 0 {
		c.Queue.MaxSize = defaultQueueMaxSize
	}
	if c.Queue.DrainBatchSize <= 0 {
		c.Queue.DrainBatchSize = defaultQueueDrainBatchSize
	}
	if c.Queue.ItemDelayMS < 0 {
		c.Queue.ItemDelayMS = defaultQueueItemDelayMS
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.CleanupIntervalHours <= 0 {
		c.Workflow.CleanupIntervalHours = defaultCleanupIntervalHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
