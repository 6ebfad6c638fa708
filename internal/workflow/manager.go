// Package workflow runs the background loops that drain the capture queue
// and sweep aged artifacts.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"shutter/internal/config"
	"shutter/internal/logging"
	"shutter/internal/retention"
	"shutter/internal/screenshot"
)

// Drainer processes queued capture requests.
type Drainer interface {
	Drain(ctx context.Context, limit int) (*screenshot.DrainResult, error)
}

// Sweeper removes aged artifacts and queue rows.
type Sweeper interface {
	Sweep(ctx context.Context, days int) (*retention.Result, error)
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithIntervals overrides the loop intervals (used in tests).
func WithIntervals(poll, sweep time.Duration) ManagerOption {
	return func(m *Manager) {
		if poll > 0 {
			m.pollInterval = poll
		}
		if sweep > 0 {
			m.sweepInterval = sweep
		}
	}
}

// Manager owns the daemon's periodic work.
type Manager struct {
	drainer Drainer
	sweeper Sweeper
	logger  *slog.Logger

	pollInterval  time.Duration
	sweepInterval time.Duration

	mu        sync.RWMutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastDrain time.Time
	lastSweep time.Time
}

// NewManager constructs a workflow manager with intervals taken from
// configuration.
func NewManager(cfg *config.Config, drainer Drainer, sweeper Sweeper, logger *slog.Logger, opts ...ManagerOption) *Manager {
	manager := &Manager{
		drainer:       drainer,
		sweeper:       sweeper,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		sweepInterval: time.Duration(cfg.Workflow.CleanupIntervalHours) * time.Hour,
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager
}

// Start launches the background loops. It returns an error when the manager
// is already running.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow manager already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(2)
	go m.drainLoop(runCtx)
	go m.sweepLoop(runCtx)

	m.logger.Info("workflow started",
		logging.Duration("poll_interval", m.pollInterval),
		logging.Duration("sweep_interval", m.sweepInterval))
	return nil
}

// Stop cancels the background loops and waits for them to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.mu.Lock()
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	m.logger.Info("workflow stopped")
}

// Running reports whether the loops are active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Status describes the workflow loops for diagnostics.
type Status struct {
	Running   bool
	LastDrain time.Time
	LastSweep time.Time
}

// Status returns a snapshot of loop activity.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{
		Running:   m.running,
		LastDrain: m.lastDrain,
		LastSweep: m.lastSweep,
	}
}

func (m *Manager) drainLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := m.drainer.Drain(ctx, 0)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					m.logger.Error("queue drain failed", logging.Error(err))
				}
				continue
			}
			m.mu.Lock()
			m.lastDrain = time.Now()
			m.mu.Unlock()
			if result.Processed > 0 {
				m.logger.Info("queue drained",
					logging.Int("processed", result.Processed),
					logging.Int("succeeded", result.Succeeded),
					logging.Int("failed", result.Failed))
			}
		}
	}
}

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.sweeper.Sweep(ctx, 0); err != nil {
				if !errors.Is(err, context.Canceled) {
					m.logger.Error("retention sweep failed", logging.Error(err))
				}
				continue
			}
			m.mu.Lock()
			m.lastSweep = time.Now()
			m.mu.Unlock()
		}
	}
}
