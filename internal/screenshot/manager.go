// Package screenshot coordinates job admission, queue draining, and job
// status reporting for the capture pipeline.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"shutter/internal/capture"
	"shutter/internal/config"
	"shutter/internal/deps"
	"shutter/internal/logging"
	"shutter/internal/queue"
	"shutter/internal/viewport"
)

// Sentinel errors surfaced to callers. Per-item capture failures are recorded
// on the queue row instead of being returned.
var (
	ErrInvalidURL      = errors.New("invalid page url")
	ErrInvalidViewport = errors.New("unknown viewport")
	ErrQueueFull       = errors.New("queue is full")
)

// CaptureExecutor renders a page screenshot and returns its relative path.
type CaptureExecutor interface {
	Capture(ctx context.Context, pageURL string, vp viewport.Spec, jobID string) (string, error)
	Capable() bool
}

// Manager is the orchestration layer between the queue store and the capture
// executor.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	executor CaptureExecutor
	probe    *deps.Probe
	catalog  *viewport.Catalog
	logger   *slog.Logger
	newJobID func(prefix string) string
}

// NewManager wires the manager from its collaborators. A nil probe falls back
// to PATH lookup.
func NewManager(cfg *config.Config, store *queue.Store, executor CaptureExecutor, probe *deps.Probe, logger *slog.Logger) *Manager {
	if probe == nil {
		probe = deps.NewProbe()
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		executor: executor,
		probe:    probe,
		catalog:  viewport.NewCatalog(cfg.Viewports),
		logger:   logging.NewComponentLogger(logger, "screenshot"),
		newJobID: func(prefix string) string { return prefix + "_" + uuid.NewString() },
	}
}

// Catalog exposes the viewport catalog the manager validates against.
func (m *Manager) Catalog() *viewport.Catalog {
	return m.catalog
}

// Enqueue validates and admits a single capture request, returning the queued
// item with its freshly assigned job identifier.
func (m *Manager) Enqueue(ctx context.Context, pageURL, viewportName string) (*queue.Item, error) {
	pageURL, vp, err := m.validateRequest(pageURL, viewportName)
	if err != nil {
		return nil, err
	}
	if err := m.checkCapacity(ctx, 1); err != nil {
		return nil, err
	}

	jobID := m.newJobID("screenshot")
	item, err := m.store.Enqueue(ctx, jobID, pageURL, vp.Name)
	if err != nil {
		return nil, fmt.Errorf("enqueue screenshot: %w", err)
	}
	m.logger.Info("screenshot queued",
		logging.String(logging.FieldJobID, jobID),
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldViewport, vp.Name),
		logging.String("url", pageURL))
	return item, nil
}

// EnqueueBatch admits a batch of requests under one shared job identifier.
// Invalid entries are reported back without aborting the rest of the batch.
func (m *Manager) EnqueueBatch(ctx context.Context, requests []BatchRequest) (*BatchResult, error) {
	if len(requests) == 0 {
		return nil, errors.New("batch is empty")
	}

	result := &BatchResult{
		JobID: m.newJobID("batch"),
		Total: len(requests),
	}
	for _, req := range requests {
		pageURL, vp, err := m.validateRequest(req.PageURL, req.Viewport)
		if err == nil {
			err = m.checkCapacity(ctx, 1)
		}
		if err != nil {
			result.Errors = append(result.Errors, BatchError{PageURL: req.PageURL, Reason: err.Error()})
			continue
		}
		if _, err := m.store.Enqueue(ctx, result.JobID, pageURL, vp.Name); err != nil {
			result.Errors = append(result.Errors, BatchError{PageURL: req.PageURL, Reason: err.Error()})
			continue
		}
		result.Queued++
	}

	m.logger.Info("batch queued",
		logging.String(logging.FieldJobID, result.JobID),
		logging.Int("queued", result.Queued),
		logging.Int("rejected", len(result.Errors)))
	return result, nil
}

// Drain processes up to limit queued items in FIFO order. Capture failures
// are recorded on the item and do not abort the pass. A limit of 0 or less
// uses the configured batch size.
func (m *Manager) Drain(ctx context.Context, limit int) (*DrainResult, error) {
	if limit <= 0 {
		limit = m.cfg.Queue.DrainBatchSize
	}

	items, err := m.store.ItemsByStatus(ctx, queue.StatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch queued items: %w", err)
	}

	result := &DrainResult{}
	delay := time.Duration(m.cfg.Queue.ItemDelayMS) * time.Millisecond
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if i > 0 && delay > 0 {
			if err := wait(ctx, delay); err != nil {
				return result, err
			}
		}

		m.processItem(ctx, item, result)
	}
	return result, nil
}

func (m *Manager) processItem(ctx context.Context, item *queue.Item, result *DrainResult) {
	item.MarkProcessing()
	if err := m.store.Update(ctx, item); err != nil {
		m.logger.Error("mark processing failed",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err))
		return
	}
	result.Processed++

	spec, ok := m.catalog.Lookup(item.Viewport)
	if !ok {
		m.failItem(ctx, item, result, fmt.Sprintf("unknown viewport %q", item.Viewport))
		return
	}

	relPath, err := m.executor.Capture(ctx, item.PageURL, spec, item.JobID)
	if err != nil {
		m.failItem(ctx, item, result, err.Error())
		return
	}

	item.MarkCompleted(relPath)
	if err := m.store.Update(ctx, item); err != nil {
		m.logger.Error("mark completed failed",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err))
		return
	}
	result.Succeeded++
}

func (m *Manager) failItem(ctx context.Context, item *queue.Item, result *DrainResult, reason string) {
	item.MarkFailed(reason)
	if err := m.store.Update(ctx, item); err != nil {
		m.logger.Error("mark failed failed",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err))
	}
	result.Failed++
	result.Failures = append(result.Failures, DrainFailure{PageURL: item.PageURL, Reason: reason})
}

// Status reports the aggregate and per-item state of a job.
func (m *Manager) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, errors.New("job id required")
	}
	items, err := m.store.ItemsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job items: %w", err)
	}

	summary := queue.HealthSummary{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case queue.StatusQueued:
			summary.Queued++
		case queue.StatusProcessing:
			summary.Processing++
		case queue.StatusCompleted:
			summary.Completed++
		case queue.StatusFailed:
			summary.Failed++
		case queue.StatusCancelled:
			summary.Cancelled++
		}
	}

	return &JobStatus{
		JobID:   jobID,
		State:   DeriveJobState(summary),
		Summary: summary,
		Items:   items,
	}, nil
}

// Cancel marks every non-terminal item of a job as cancelled and reports how
// many rows changed.
func (m *Manager) Cancel(ctx context.Context, jobID string) (int64, error) {
	changed, err := m.store.CancelJob(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		m.logger.Info("job cancelled",
			logging.String(logging.FieldJobID, jobID),
			logging.Int64("items", changed))
	}
	return changed, nil
}

// Capabilities reports which capture tools are installed and what the host
// can be asked to do.
func (m *Manager) Capabilities(ctx context.Context) (Capabilities, error) {
	outstanding, err := m.store.OutstandingCount(ctx)
	if err != nil {
		return Capabilities{}, fmt.Errorf("count outstanding: %w", err)
	}
	tools := make(map[string]bool)
	for tool, available := range m.probe.List() {
		tools[string(tool)] = available
	}
	return Capabilities{
		Tools:            tools,
		Capable:          m.executor.Capable(),
		Viewports:        m.catalog.Names(),
		MaxQueueSize:     m.cfg.Queue.MaxSize,
		CurrentQueueSize: outstanding,
	}, nil
}

func (m *Manager) validateRequest(pageURL, viewportName string) (string, viewport.Spec, error) {
	pageURL = strings.TrimSpace(pageURL)
	parsed, err := url.Parse(pageURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", viewport.Spec{}, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	if strings.TrimSpace(viewportName) == "" {
		viewportName = "desktop"
	}
	spec, ok := m.catalog.Lookup(viewportName)
	if !ok {
		return "", viewport.Spec{}, fmt.Errorf("%w: %q", ErrInvalidViewport, viewportName)
	}
	return pageURL, spec, nil
}

func (m *Manager) checkCapacity(ctx context.Context, adding int) error {
	outstanding, err := m.store.OutstandingCount(ctx)
	if err != nil {
		return fmt.Errorf("count outstanding: %w", err)
	}
	if outstanding+adding > m.cfg.Queue.MaxSize {
		return fmt.Errorf("%w: %d of %d slots used", ErrQueueFull, outstanding, m.cfg.Queue.MaxSize)
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure the concrete executor satisfies the interface.
var _ CaptureExecutor = (*capture.Executor)(nil)
