package workflow_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"shutter/internal/logging"
	"shutter/internal/retention"
	"shutter/internal/screenshot"
	"shutter/internal/testsupport"
	"shutter/internal/workflow"
)

type countingDrainer struct {
	calls atomic.Int64
}

func (c *countingDrainer) Drain(context.Context, int) (*screenshot.DrainResult, error) {
	c.calls.Add(1)
	return &screenshot.DrainResult{}, nil
}

type countingSweeper struct {
	calls atomic.Int64
}

func (c *countingSweeper) Sweep(context.Context, int) (*retention.Result, error) {
	c.calls.Add(1)
	return &retention.Result{}, nil
}

func TestManagerRunsLoopsUntilStopped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	drainer := &countingDrainer{}
	sweeper := &countingSweeper{}
	manager := workflow.NewManager(cfg, drainer, sweeper, logging.NewNop(),
		workflow.WithIntervals(5*time.Millisecond, 5*time.Millisecond))

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !manager.Running() {
		t.Fatal("expected running manager")
	}
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for drainer.calls.Load() == 0 || sweeper.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("loops never fired: drains=%d sweeps=%d", drainer.calls.Load(), sweeper.calls.Load())
		}
		time.Sleep(time.Millisecond)
	}

	manager.Stop()
	if manager.Running() {
		t.Fatal("expected stopped manager")
	}

	status := manager.Status()
	if status.Running || status.LastDrain.IsZero() {
		t.Fatalf("unexpected status after stop: %#v", status)
	}

	drained := drainer.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if drainer.calls.Load() != drained {
		t.Fatal("drain loop kept running after Stop")
	}
}

func TestManagerStopIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := workflow.NewManager(cfg, &countingDrainer{}, &countingSweeper{}, logging.NewNop(),
		workflow.WithIntervals(time.Millisecond, time.Millisecond))

	manager.Stop()

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	manager.Stop()
	manager.Stop()
}
