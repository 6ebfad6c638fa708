package daemon_test

import (
	"context"
	"errors"
	"testing"

	"shutter/internal/analytics"
	"shutter/internal/capture"
	"shutter/internal/config"
	"shutter/internal/daemon"
	"shutter/internal/deps"
	"shutter/internal/logging"
	"shutter/internal/queue"
	"shutter/internal/retention"
	"shutter/internal/screenshot"
	"shutter/internal/testsupport"
	"shutter/internal/workflow"
)

func noToolLookup(string) (string, error) { return "", errors.New("not found") }

func newDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, *queue.Store) {
	t.Helper()

	store := testsupport.MustOpenStore(t, cfg)
	views, err := analytics.Open(cfg)
	if err != nil {
		t.Fatalf("analytics.Open: %v", err)
	}
	t.Cleanup(func() {
		views.Close()
	})

	logger := logging.NewNop()
	probe := deps.NewProbeWithLookup(noToolLookup)
	executor := capture.NewExecutor(cfg, probe, logger)
	screenshots := screenshot.NewManager(cfg, store, executor, probe, logger)
	sweeper := retention.NewSweeper(cfg, store, logger)
	wf := workflow.NewManager(cfg, screenshots, sweeper, logger)

	d, err := daemon.New(cfg, store, views, screenshots, sweeper, wf, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Stop()
	})
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Status(ctx).Running {
		t.Fatal("expected running daemon")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected stopped daemon")
	}
	d.Stop()
}

func TestDaemonLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, _ := newDaemon(t, cfg)
	second, _ := newDaemon(t, cfg)
	ctx := context.Background()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected lock conflict for second instance")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("expected lock to be released, got %v", err)
	}
}

func TestDaemonProxiesQueueOperations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, store := newDaemon(t, cfg)
	ctx := context.Background()

	item, err := d.Enqueue(ctx, "https://example.com/", "mobile")
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	items, err := d.ListQueue(ctx, nil)
	if err != nil {
		t.Fatalf("ListQueue failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("unexpected queue listing: %#v", items)
	}

	status, err := d.JobStatus(ctx, item.JobID)
	if err != nil {
		t.Fatalf("JobStatus failed: %v", err)
	}
	if status.State != screenshot.JobStateQueued {
		t.Fatalf("expected queued job, got %s", status.State)
	}

	removed, err := d.ClearQueue(ctx)
	if err != nil {
		t.Fatalf("ClearQueue failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed row, got %d", removed)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 0 {
		t.Fatalf("expected empty queue, got %#v", health)
	}
}

func TestDaemonStatusReportsPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)

	status := d.Status(context.Background())
	if status.QueueDBPath != cfg.QueueDatabasePath() {
		t.Fatalf("unexpected queue db path %q", status.QueueDBPath)
	}
	if status.AnalyticsDBPath != cfg.AnalyticsDatabasePath() {
		t.Fatalf("unexpected analytics db path %q", status.AnalyticsDBPath)
	}
	if status.PID == 0 {
		t.Fatal("expected daemon pid")
	}
	if len(status.Dependencies) != 3 {
		t.Fatalf("expected 3 tool dependencies, got %d", len(status.Dependencies))
	}
}
