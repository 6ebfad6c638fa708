package ipc_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shutter/internal/analytics"
	"shutter/internal/capture"
	"shutter/internal/daemon"
	"shutter/internal/deps"
	"shutter/internal/ipc"
	"shutter/internal/logging"
	"shutter/internal/retention"
	"shutter/internal/screenshot"
	"shutter/internal/testsupport"
	"shutter/internal/workflow"
)

func noToolLookup(string) (string, error) { return "", errors.New("not found") }

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	views, err := analytics.Open(cfg)
	if err != nil {
		t.Fatalf("analytics.Open: %v", err)
	}
	logger := logging.NewNop()
	probe := deps.NewProbeWithLookup(noToolLookup)
	executor := capture.NewExecutor(cfg, probe, logger)
	screenshots := screenshot.NewManager(cfg, store, executor, probe, logger)
	sweeper := retention.NewSweeper(cfg, store, logger)
	mgr := workflow.NewManager(cfg, screenshots, sweeper, logger)
	d, err := daemon.New(cfg, store, views, screenshots, sweeper, mgr, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.StateDir, "shutterd.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}

	enqueue, err := client.Enqueue("https://example.com/pricing", "mobile")
	if err != nil {
		t.Fatalf("Enqueue RPC failed: %v", err)
	}
	if !strings.HasPrefix(enqueue.Item.JobID, "screenshot_") {
		t.Fatalf("unexpected job id %q", enqueue.Item.JobID)
	}

	batch, err := client.EnqueueBatch([]ipc.BatchEntry{
		{PageURL: "https://example.com/a"},
		{PageURL: "bogus"},
	})
	if err != nil {
		t.Fatalf("EnqueueBatch RPC failed: %v", err)
	}
	if batch.Queued != 1 || len(batch.Errors) != 1 {
		t.Fatalf("unexpected batch response: %#v", batch)
	}

	jobStatus, err := client.JobStatus(enqueue.Item.JobID)
	if err != nil {
		t.Fatalf("JobStatus RPC failed: %v", err)
	}
	if jobStatus.State != "queued" || jobStatus.Total != 1 {
		t.Fatalf("unexpected job status: %#v", jobStatus)
	}

	process, err := client.Process(0)
	if err != nil {
		t.Fatalf("Process RPC failed: %v", err)
	}
	if process.Processed != 2 || process.Failed != 2 {
		t.Fatalf("expected both captures to fail without tools, got %#v", process)
	}
	if len(process.Failures) != 2 {
		t.Fatalf("expected per-URL failures in response, got %#v", process.Failures)
	}
	for _, failure := range process.Failures {
		if failure.PageURL == "" || failure.Reason != "no tool available" {
			t.Fatalf("unexpected failure entry: %#v", failure)
		}
	}

	jobStatus, err = client.JobStatus(enqueue.Item.JobID)
	if err != nil {
		t.Fatalf("JobStatus RPC failed: %v", err)
	}
	if jobStatus.State != "failed" {
		t.Fatalf("expected failed job after drain, got %s", jobStatus.State)
	}
	if len(jobStatus.Items) != 1 || jobStatus.Items[0].ErrorMessage != "no tool available" {
		t.Fatalf("unexpected job items: %#v", jobStatus.Items)
	}

	caps, err := client.Capabilities()
	if err != nil {
		t.Fatalf("Capabilities RPC failed: %v", err)
	}
	if caps.Capable {
		t.Fatal("expected incapable host without tools")
	}
	if len(caps.Viewports) != 3 {
		t.Fatalf("expected built-in viewports, got %v", caps.Viewports)
	}

	health, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth RPC failed: %v", err)
	}
	if health.Failed != 2 {
		t.Fatalf("unexpected queue health: %#v", health)
	}

	dbHealth, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth RPC failed: %v", err)
	}
	if !dbHealth.DatabaseExists || !dbHealth.TableExists {
		t.Fatalf("unexpected database health: %#v", dbHealth)
	}

	if _, err := client.TrackView("https://example.com/pricing", "page"); err != nil {
		t.Fatalf("TrackView RPC failed: %v", err)
	}
	topPages, err := client.TopPages(10, 0)
	if err != nil {
		t.Fatalf("TopPages RPC failed: %v", err)
	}
	if len(topPages.Pages) != 1 || topPages.Pages[0].ViewCount != 1 {
		t.Fatalf("unexpected top pages: %#v", topPages.Pages)
	}
	stats, err := client.AnalyticsStats()
	if err != nil {
		t.Fatalf("AnalyticsStats RPC failed: %v", err)
	}
	if stats.TotalPages != 1 || stats.TotalViews != 1 {
		t.Fatalf("unexpected analytics stats: %#v", stats)
	}

	cleared, err := client.QueueClearFailed()
	if err != nil {
		t.Fatalf("QueueClearFailed RPC failed: %v", err)
	}
	if cleared.Removed != 2 {
		t.Fatalf("expected 2 failed rows cleared, got %d", cleared.Removed)
	}

	cleanup, err := client.Cleanup(0)
	if err != nil {
		t.Fatalf("Cleanup RPC failed: %v", err)
	}
	if cleanup.FilesRemoved != 0 {
		t.Fatalf("expected no artifacts to remove, got %#v", cleanup)
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected Stopped=true")
	}
}
