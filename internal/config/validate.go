package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	return c.validateViewports()
}

func (c *Config) validateCapture() error {
	if c.Capture.Quality < MinCaptureQuality || c.Capture.Quality > MaxCaptureQuality {
		return fmt.Errorf("capture.quality: must be between %d and %d, got %d",
			MinCaptureQuality, MaxCaptureQuality, c.Capture.Quality)
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.MaxSize < MinQueueSize || c.Queue.MaxSize > MaxQueueSize {
		return fmt.Errorf("queue.max_size: must be between %d and %d, got %d",
			MinQueueSize, MaxQueueSize, c.Queue.MaxSize)
	}
	if c.Queue.DrainBatchSize > c.Queue.MaxSize {
		return fmt.Errorf("queue.drain_batch_size: must not exceed queue.max_size (%d), got %d",
			c.Queue.MaxSize, c.Queue.DrainBatchSize)
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.CleanupDays < MinCleanupDays || c.Retention.CleanupDays > MaxCleanupDays {
		return fmt.Errorf("retention.cleanup_days: must be between %d and %d, got %d",
			MinCleanupDays, MaxCleanupDays, c.Retention.CleanupDays)
	}
	return nil
}

func (c *Config) validateViewports() error {
	for name, vp := range c.Viewports {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("viewports: viewport name must not be empty")
		}
		if vp.Width <= 0 || vp.Height <= 0 {
			return fmt.Errorf("viewports.%s: width and height must be positive, got %dx%d",
				trimmed, vp.Width, vp.Height)
		}
	}
	return nil
}
