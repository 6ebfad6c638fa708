package screenshot_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shutter/internal/capture"
	"shutter/internal/deps"
	"shutter/internal/logging"
	"shutter/internal/queue"
	"shutter/internal/screenshot"
	"shutter/internal/testsupport"
	"shutter/internal/viewport"
)

type stubExecutor struct {
	capable  bool
	captured []string
	capture  func(pageURL string, vp viewport.Spec, jobID string) (string, error)
}

func (s *stubExecutor) Capture(_ context.Context, pageURL string, vp viewport.Spec, jobID string) (string, error) {
	s.captured = append(s.captured, pageURL)
	if s.capture != nil {
		return s.capture(pageURL, vp, jobID)
	}
	return "2026/08/" + vp.Name + "_stub.png", nil
}

func (s *stubExecutor) Capable() bool { return s.capable }

func noToolLookup(string) (string, error) { return "", errors.New("not found") }

func newManager(t *testing.T, opts ...testsupport.ConfigOption) (*screenshot.Manager, *queue.Store, *stubExecutor) {
	t.Helper()
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithItemDelay(0)}, opts...)...)
	store := testsupport.MustOpenStore(t, cfg)
	executor := &stubExecutor{capable: true}
	manager := screenshot.NewManager(cfg, store, executor, deps.NewProbeWithLookup(noToolLookup), logging.NewNop())
	return manager, store, executor
}

func TestEnqueueAssignsJobID(t *testing.T) {
	manager, _, _ := newManager(t)

	item, err := manager.Enqueue(context.Background(), "https://example.com/pricing", "tablet")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if !strings.HasPrefix(item.JobID, "screenshot_") {
		t.Fatalf("unexpected job id %q", item.JobID)
	}
	if item.Status != queue.StatusQueued {
		t.Fatalf("expected queued, got %s", item.Status)
	}
	if item.Viewport != "tablet" {
		t.Fatalf("expected tablet viewport, got %s", item.Viewport)
	}
}

func TestEnqueueDefaultsToDesktop(t *testing.T) {
	manager, _, _ := newManager(t)

	item, err := manager.Enqueue(context.Background(), "https://example.com/", "")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if item.Viewport != "desktop" {
		t.Fatalf("expected desktop default, got %s", item.Viewport)
	}
}

func TestEnqueueRejectsBadInput(t *testing.T) {
	manager, _, _ := newManager(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		url      string
		viewport string
		want     error
	}{
		{"relative url", "/pricing", "desktop", screenshot.ErrInvalidURL},
		{"missing host", "https://", "desktop", screenshot.ErrInvalidURL},
		{"bad scheme", "ftp://example.com/file", "desktop", screenshot.ErrInvalidURL},
		{"empty url", "", "desktop", screenshot.ErrInvalidURL},
		{"unknown viewport", "https://example.com/", "watch", screenshot.ErrInvalidViewport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := manager.Enqueue(ctx, tc.url, tc.viewport); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEnqueueEnforcesQueueCap(t *testing.T) {
	manager, _, _ := newManager(t, testsupport.WithMaxQueueSize(2))
	ctx := context.Background()

	first, err := manager.Enqueue(ctx, "https://example.com/", "desktop")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := manager.Enqueue(ctx, "https://example.com/", "desktop"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := manager.Enqueue(ctx, "https://example.com/", "desktop"); !errors.Is(err, screenshot.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	// Only queued and processing items count against the cap, so cancelling
	// a pending item frees a slot.
	if _, err := manager.Cancel(ctx, first.JobID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := manager.Enqueue(ctx, "https://example.com/", "desktop"); err != nil {
		t.Fatalf("Enqueue after cancel failed: %v", err)
	}
}

func TestEnqueueBatchContinuesPastRejections(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()

	result, err := manager.EnqueueBatch(ctx, []screenshot.BatchRequest{
		{PageURL: "https://example.com/a", Viewport: "desktop"},
		{PageURL: "not a url", Viewport: "desktop"},
		{PageURL: "https://example.com/b", Viewport: "mobile"},
	})
	if err != nil {
		t.Fatalf("EnqueueBatch failed: %v", err)
	}
	if !strings.HasPrefix(result.JobID, "batch_") {
		t.Fatalf("unexpected batch job id %q", result.JobID)
	}
	if result.Queued != 2 || result.Total != 3 || len(result.Errors) != 1 {
		t.Fatalf("unexpected batch result: %#v", result)
	}

	items, err := store.ItemsByJob(ctx, result.JobID)
	if err != nil {
		t.Fatalf("ItemsByJob failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 queued items, got %d", len(items))
	}
}

func TestDrainCompletesQueuedItems(t *testing.T) {
	manager, store, executor := newManager(t)
	ctx := context.Background()

	first, err := manager.Enqueue(ctx, "https://example.com/a", "desktop")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := manager.Enqueue(ctx, "https://example.com/b", "mobile"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	result, err := manager.Drain(ctx, 0)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if result.Processed != 2 || result.Succeeded != 2 || result.Failed != 0 {
		t.Fatalf("unexpected drain result: %#v", result)
	}
	if executor.captured[0] != "https://example.com/a" {
		t.Fatalf("expected FIFO order, first capture was %s", executor.captured[0])
	}

	item, err := store.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if item.Status != queue.StatusCompleted || item.ScreenshotPath == "" {
		t.Fatalf("expected completed item with path, got %#v", item)
	}
}

func TestDrainRecordsFailuresAsData(t *testing.T) {
	manager, store, executor := newManager(t)
	executor.capture = func(pageURL string, vp viewport.Spec, jobID string) (string, error) {
		if strings.HasSuffix(pageURL, "/bad") {
			return "", errors.New("render crashed")
		}
		return "2026/08/ok.png", nil
	}
	ctx := context.Background()

	if _, err := manager.Enqueue(ctx, "https://example.com/good", "desktop"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	bad, err := manager.Enqueue(ctx, "https://example.com/bad", "desktop")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	result, err := manager.Drain(ctx, 0)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if result.Processed != 2 || result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("unexpected drain result: %#v", result)
	}

	item, _ := store.GetByID(ctx, bad.ID)
	if item.Status != queue.StatusFailed || item.ErrorMessage != "render crashed" {
		t.Fatalf("expected failed item with message, got %#v", item)
	}
}

func TestDrainWithoutToolsFailsEveryItem(t *testing.T) {
	manager, store, executor := newManager(t)
	executor.capable = false
	executor.capture = func(string, viewport.Spec, string) (string, error) {
		return "", capture.ErrNoToolAvailable
	}
	ctx := context.Background()

	for _, path := range []string{"/a", "/b", "/c"} {
		if _, err := manager.Enqueue(ctx, "https://example.com"+path, "desktop"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	result, err := manager.Drain(ctx, 0)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if result.Failed != 3 {
		t.Fatalf("expected 3 failures, got %#v", result)
	}
	if len(result.Failures) != 3 {
		t.Fatalf("expected every failure listed, got %#v", result.Failures)
	}
	if result.Failures[0].PageURL != "https://example.com/a" {
		t.Fatalf("expected FIFO failure order, got %#v", result.Failures)
	}
	for _, failure := range result.Failures {
		if failure.Reason != "no tool available" {
			t.Fatalf("unexpected failure reason %q", failure.Reason)
		}
	}

	items, _ := store.List(ctx, queue.StatusFailed)
	if len(items) != 3 {
		t.Fatalf("expected 3 failed rows, got %d", len(items))
	}
	for _, item := range items {
		if item.ErrorMessage != "no tool available" {
			t.Fatalf("unexpected error message %q", item.ErrorMessage)
		}
	}
}

func TestDrainHonorsLimit(t *testing.T) {
	manager, _, _ := newManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := manager.Enqueue(ctx, "https://example.com/", "desktop"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	result, err := manager.Drain(ctx, 2)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("expected 2 processed, got %#v", result)
	}
}

func TestDrainWaitsBetweenItems(t *testing.T) {
	manager, _, _ := newManager(t, testsupport.WithItemDelay(40))
	ctx := context.Background()

	for _, path := range []string{"/a", "/b"} {
		if _, err := manager.Enqueue(ctx, "https://example.com"+path, "desktop"); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	start := time.Now()
	result, err := manager.Drain(ctx, 0)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("expected 2 processed, got %#v", result)
	}
	// One pause between the two items; none before the first.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected inter-item delay, drain finished in %v", elapsed)
	}
}

func TestStatusDerivesJobState(t *testing.T) {
	manager, store, executor := newManager(t)
	ctx := context.Background()

	status, err := manager.Status(ctx, "screenshot_missing")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.State != screenshot.JobStateNotFound {
		t.Fatalf("expected not_found, got %s", status.State)
	}

	item, err := manager.Enqueue(ctx, "https://example.com/", "desktop")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	status, _ = manager.Status(ctx, item.JobID)
	if status.State != screenshot.JobStateQueued {
		t.Fatalf("expected queued, got %s", status.State)
	}

	executor.capture = func(string, viewport.Spec, string) (string, error) {
		return "2026/08/done.png", nil
	}
	if _, err := manager.Drain(ctx, 0); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	status, _ = manager.Status(ctx, item.JobID)
	if status.State != screenshot.JobStateCompleted {
		t.Fatalf("expected completed, got %s", status.State)
	}

	failed := testsupport.Enqueue(t, store, "job-all-failed", "https://example.com/x", "desktop")
	failed.MarkFailed("no tool available")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	status, _ = manager.Status(ctx, "job-all-failed")
	if status.State != screenshot.JobStateFailed {
		t.Fatalf("expected failed, got %s", status.State)
	}
}

func TestCancelStopsPendingItems(t *testing.T) {
	manager, store, _ := newManager(t)
	ctx := context.Background()

	item, err := manager.Enqueue(ctx, "https://example.com/", "desktop")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	changed, err := manager.Cancel(ctx, item.JobID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 cancelled item, got %d", changed)
	}

	result, err := manager.Drain(ctx, 0)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if result.Processed != 0 {
		t.Fatalf("cancelled items must not be processed, got %#v", result)
	}

	fetched, _ := store.GetByID(ctx, item.ID)
	if fetched.Status != queue.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", fetched.Status)
	}
}

func TestCapabilitiesReflectProbe(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	executor := &stubExecutor{capable: true}
	probe := deps.NewProbeWithLookup(func(name string) (string, error) {
		if name == "firefox" {
			return "/usr/bin/firefox", nil
		}
		return "", errors.New("not found")
	})
	manager := screenshot.NewManager(cfg, store, executor, probe, logging.NewNop())

	ctx := context.Background()
	if _, err := manager.Enqueue(ctx, "https://example.com/", ""); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	caps, err := manager.Capabilities(ctx)
	if err != nil {
		t.Fatalf("Capabilities failed: %v", err)
	}
	if !caps.Tools["firefox"] || caps.Tools["wkhtmltoimage"] || caps.Tools["chrome"] {
		t.Fatalf("unexpected tool availability: %#v", caps.Tools)
	}
	if !caps.Capable {
		t.Fatal("expected capable host")
	}
	if len(caps.Viewports) != 3 {
		t.Fatalf("expected built-in viewports, got %v", caps.Viewports)
	}
	if caps.MaxQueueSize != cfg.Queue.MaxSize {
		t.Fatalf("expected max queue size %d, got %d", cfg.Queue.MaxSize, caps.MaxQueueSize)
	}
	if caps.CurrentQueueSize != 1 {
		t.Fatalf("expected one outstanding item, got %d", caps.CurrentQueueSize)
	}
}
