package main

import (
	"context"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"shutter/internal/analytics"
	"shutter/internal/capture"
	"shutter/internal/config"
	"shutter/internal/daemon"
	"shutter/internal/deps"
	"shutter/internal/ipc"
	"shutter/internal/logging"
	"shutter/internal/queue"
	"shutter/internal/retention"
	"shutter/internal/screenshot"
	"shutter/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "*.log",
		Exclude: []string{filepath.Join(cfg.Paths.LogDir, "shutter.log")},
	})

	store, err := queue.Open(cfg)
	if err != nil {
		log.Fatalf("open queue store: %v", err)
	}

	views, err := analytics.Open(cfg)
	if err != nil {
		log.Fatalf("open analytics store: %v", err)
	}

	probe := deps.NewProbe()
	executor := capture.NewExecutor(cfg, probe, logger)
	screenshots := screenshot.NewManager(cfg, store, executor, probe, logger)
	sweeper := retention.NewSweeper(cfg, store, logger)
	workflowManager := workflow.NewManager(cfg, screenshots, sweeper, logger)

	d, err := daemon.New(cfg, store, views, screenshots, sweeper, workflowManager, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		log.Fatalf("start IPC server: %v", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Warn("daemon start", logging.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutterd shutting down")
}
