// Package daemon coordinates the background services and enforces
// single-instance execution.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"shutter/internal/analytics"
	"shutter/internal/api"
	"shutter/internal/config"
	"shutter/internal/deps"
	"shutter/internal/logging"
	"shutter/internal/queue"
	"shutter/internal/retention"
	"shutter/internal/screenshot"
	"shutter/internal/workflow"
)

// Daemon owns the queue, analytics, and workflow services behind the IPC
// surface.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *queue.Store
	views       *analytics.Store
	screenshots *screenshot.Manager
	sweeper     *retention.Sweeper
	workflow    *workflow.Manager
	logPath     string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, views *analytics.Store, screenshots *screenshot.Manager, sweeper *retention.Sweeper, wf *workflow.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || screenshots == nil || sweeper == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, screenshot manager, sweeper, and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "shutterd.lock")
	return &Daemon{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "daemon"),
		store:       store,
		views:       views,
		screenshots: screenshots,
		sweeper:     sweeper,
		workflow:    wf,
		logPath:     filepath.Join(cfg.Paths.LogDir, "shutter.log"),
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}, nil
}

// Start acquires the single-instance lock and launches the workflow loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another shutter daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.views != nil {
		errs = append(errs, d.views.Close())
	}
	if d.store != nil {
		errs = append(errs, d.store.Close())
	}
	return errors.Join(errs...)
}

// Enqueue admits a single capture request.
func (d *Daemon) Enqueue(ctx context.Context, pageURL, viewportName string) (*queue.Item, error) {
	return d.screenshots.Enqueue(ctx, pageURL, viewportName)
}

// EnqueueBatch admits a batch of capture requests under one job.
func (d *Daemon) EnqueueBatch(ctx context.Context, requests []screenshot.BatchRequest) (*screenshot.BatchResult, error) {
	return d.screenshots.EnqueueBatch(ctx, requests)
}

// Drain processes up to limit queued captures immediately.
func (d *Daemon) Drain(ctx context.Context, limit int) (*screenshot.DrainResult, error) {
	return d.screenshots.Drain(ctx, limit)
}

// JobStatus reports the derived state of one job.
func (d *Daemon) JobStatus(ctx context.Context, jobID string) (*screenshot.JobStatus, error) {
	return d.screenshots.Status(ctx, jobID)
}

// CancelJob stops all pending items of a job.
func (d *Daemon) CancelJob(ctx context.Context, jobID string) (int64, error) {
	return d.screenshots.Cancel(ctx, jobID)
}

// Capabilities reports capture tool availability and viewport names.
func (d *Daemon) Capabilities(ctx context.Context) (screenshot.Capabilities, error) {
	return d.screenshots.Capabilities(ctx)
}

// Cleanup removes aged artifacts and queue rows.
func (d *Daemon) Cleanup(ctx context.Context, days int) (*retention.Result, error) {
	return d.sweeper.Sweep(ctx, days)
}

// ListQueue returns queue items filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	return d.store.List(ctx, statuses...)
}

// ClearQueue removes all queue items.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	return d.store.Clear(ctx)
}

// ClearCompleted removes only completed queue items.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	return d.store.ClearCompleted(ctx)
}

// ClearFailed removes only failed queue items.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	return d.store.ClearFailed(ctx)
}

// RemoveQueueItem deletes a single queue item by identifier.
func (d *Daemon) RemoveQueueItem(ctx context.Context, id int64) (bool, error) {
	return d.store.Remove(ctx, id)
}

// QueueHealth returns aggregate queue diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}

// TrackView records one page view.
func (d *Daemon) TrackView(ctx context.Context, pageURL, pageType string) error {
	if d.views == nil {
		return errors.New("analytics store unavailable")
	}
	return d.views.TrackView(ctx, pageURL, pageType)
}

// TopPages returns the most viewed pages.
func (d *Daemon) TopPages(ctx context.Context, limit, days int) ([]analytics.Page, error) {
	if d.views == nil {
		return nil, errors.New("analytics store unavailable")
	}
	return d.views.TopPages(ctx, limit, days)
}

// AnalyticsStats aggregates page-view counters.
func (d *Daemon) AnalyticsStats(ctx context.Context) (analytics.Stats, error) {
	if d.views == nil {
		return analytics.Stats{}, errors.New("analytics store unavailable")
	}
	return d.views.AggregateStats(ctx)
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		QueueDBPath:  d.cfg.QueueDatabasePath(),
		LockFilePath: d.lockPath,
		Dependencies: api.FromDependencyStatuses(deps.CheckBinaries(deps.Requirements())),
	}
	if d.views != nil {
		status.AnalyticsDBPath = d.views.Path()
	}

	wf := d.workflow.Status()
	status.Workflow.Running = wf.Running
	if !wf.LastDrain.IsZero() {
		status.Workflow.LastDrain = wf.LastDrain.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if !wf.LastSweep.IsZero() {
		status.Workflow.LastSweep = wf.LastSweep.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	if stats, err := d.store.Stats(ctx); err == nil {
		status.QueueStats = make(map[string]int, len(stats))
		for state, count := range stats {
			status.QueueStats[string(state)] = count
		}
	}
	return status
}
