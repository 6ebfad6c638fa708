// Package capture shells out to an installed browser tool to render a page
// screenshot to disk.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shutter/internal/config"
	"shutter/internal/deps"
	"shutter/internal/logging"
	"shutter/internal/viewport"
)

// ErrNoToolAvailable indicates that no capture tool is installed.
var ErrNoToolAvailable = errors.New("no tool available")

// Option configures the executor.
type Option func(*Executor)

// WithRunner injects a custom command runner (primarily for tests).
func WithRunner(runner Runner) Option {
	return func(e *Executor) {
		if runner != nil {
			e.runner = runner
		}
	}
}

// WithClock injects the time source used for artifact naming.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// Executor captures screenshots by invoking external tools in preference
// order until one produces a usable image.
type Executor struct {
	cfg    *config.Config
	probe  *deps.Probe
	runner Runner
	logger *slog.Logger
	now    func() time.Time
}

// NewExecutor constructs a capture executor.
func NewExecutor(cfg *config.Config, probe *deps.Probe, logger *slog.Logger, opts ...Option) *Executor {
	if probe == nil {
		probe = deps.NewProbe()
	}
	executor := &Executor{
		cfg:    cfg,
		probe:  probe,
		runner: commandRunner{},
		logger: logging.NewComponentLogger(logger, "capture"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Capture renders the page at the requested viewport and returns the artifact
// path relative to the screenshots directory. Every installed tool is tried in
// preference order; the capture fails only when all of them do.
func (e *Executor) Capture(ctx context.Context, pageURL string, vp viewport.Spec, jobID string) (string, error) {
	relPath := ArtifactPath(vp.Name, pageURL, e.now().UTC(), jobID)
	fullPath := filepath.Join(e.cfg.Paths.ScreenshotsDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	timeout := time.Duration(e.cfg.Capture.TimeoutSeconds) * time.Second

	attempted := false
	var lastErr error
	for _, tool := range deps.PreferredOrder() {
		binary, ok := e.probe.Available(tool)
		if !ok {
			continue
		}
		attempted = true

		runCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		args := buildArgs(tool, pageURL, vp, fullPath, e.cfg.Capture)
		output, err := e.runner.Run(runCtx, binary, args)
		if err != nil {
			e.logger.Warn("capture command failed",
				logging.String(logging.FieldTool, string(tool)),
				logging.String("url", pageURL),
				logging.String("output", string(output)),
				logging.Error(err))
			removeArtifact(fullPath)
			lastErr = fmt.Errorf("%s: %w", tool, err)
			continue
		}

		info, statErr := os.Stat(fullPath)
		if statErr != nil || info.Size() == 0 {
			e.logger.Warn("capture produced no output",
				logging.String(logging.FieldTool, string(tool)),
				logging.String("url", pageURL))
			removeArtifact(fullPath)
			lastErr = fmt.Errorf("%s: no output generated", tool)
			continue
		}

		e.logger.Info("screenshot captured",
			logging.String(logging.FieldTool, string(tool)),
			logging.String(logging.FieldViewport, vp.Name),
			logging.String("url", pageURL),
			logging.String("path", relPath))
		return relPath, nil
	}

	if !attempted {
		return "", ErrNoToolAvailable
	}
	return "", lastErr
}

// Capable reports whether at least one capture tool is installed.
func (e *Executor) Capable() bool {
	return e.probe.Capable()
}

// removeArtifact drops a partial file left behind by a failed tool so the
// next attempt starts clean.
func removeArtifact(path string) {
	_ = os.Remove(path)
}
