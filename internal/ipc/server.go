package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"shutter/internal/api"
	"shutter/internal/daemon"
	"shutter/internal/logging"
	"shutter/internal/queue"
	"shutter/internal/screenshot"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Shutter", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.DaemonStatus = s.daemon.Status(s.ctx)
	return nil
}

func (s *service) Enqueue(req EnqueueRequest, resp *EnqueueResponse) error {
	item, err := s.daemon.Enqueue(s.ctx, req.PageURL, req.Viewport)
	if err != nil {
		return err
	}
	resp.Item = api.FromQueueItem(item)
	s.logger.Info("screenshot enqueued via IPC",
		logging.String(logging.FieldJobID, item.JobID))
	return nil
}

func (s *service) EnqueueBatch(req EnqueueBatchRequest, resp *EnqueueBatchResponse) error {
	requests := make([]screenshot.BatchRequest, 0, len(req.Entries))
	for _, entry := range req.Entries {
		requests = append(requests, screenshot.BatchRequest{
			PageURL:  entry.PageURL,
			Viewport: entry.Viewport,
		})
	}
	result, err := s.daemon.EnqueueBatch(s.ctx, requests)
	if err != nil {
		return err
	}
	resp.JobID = result.JobID
	resp.Queued = result.Queued
	resp.Total = result.Total
	for _, failure := range result.Errors {
		resp.Errors = append(resp.Errors, BatchError{PageURL: failure.PageURL, Reason: failure.Reason})
	}
	return nil
}

func (s *service) JobStatus(req JobStatusRequest, resp *JobStatusResponse) error {
	status, err := s.daemon.JobStatus(s.ctx, req.JobID)
	if err != nil {
		return err
	}
	resp.JobSummary = api.FromJobStatus(status)
	return nil
}

func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	cancelled, err := s.daemon.CancelJob(s.ctx, req.JobID)
	if err != nil {
		return err
	}
	resp.Cancelled = cancelled
	return nil
}

func (s *service) Process(req ProcessRequest, resp *ProcessResponse) error {
	result, err := s.daemon.Drain(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Processed = result.Processed
	resp.Succeeded = result.Succeeded
	resp.Failed = result.Failed
	for _, failure := range result.Failures {
		resp.Failures = append(resp.Failures, ProcessFailure{PageURL: failure.PageURL, Reason: failure.Reason})
	}
	return nil
}

func (s *service) Capabilities(_ CapabilitiesRequest, resp *CapabilitiesResponse) error {
	caps, err := s.daemon.Capabilities(s.ctx)
	if err != nil {
		return err
	}
	resp.Capabilities = api.FromCapabilities(caps)
	return nil
}

func (s *service) Cleanup(req CleanupRequest, resp *CleanupResponse) error {
	result, err := s.daemon.Cleanup(s.ctx, req.Days)
	if err != nil {
		return err
	}
	resp.FilesRemoved = result.FilesRemoved
	resp.DirsRemoved = result.DirsRemoved
	resp.RowsPurged = result.RowsPurged
	resp.Errors = result.Errors
	return nil
}

func (s *service) QueueList(req QueueListRequest, resp *QueueListResponse) error {
	statuses := make([]queue.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		parsed, ok := queue.ParseStatus(raw)
		if !ok {
			return fmt.Errorf("unknown status %q", raw)
		}
		statuses = append(statuses, parsed)
	}
	items, err := s.daemon.ListQueue(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Items = api.FromQueueItems(items)
	return nil
}

func (s *service) QueueClear(_ QueueClearRequest, resp *QueueClearResponse) error {
	removed, err := s.daemon.ClearQueue(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.logger.Info("queue cleared", logging.Int64("removed", removed))
	return nil
}

func (s *service) QueueClearCompleted(_ QueueClearCompletedRequest, resp *QueueClearCompletedResponse) error {
	removed, err := s.daemon.ClearCompleted(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) QueueClearFailed(_ QueueClearFailedRequest, resp *QueueClearFailedResponse) error {
	removed, err := s.daemon.ClearFailed(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) QueueRemove(req QueueRemoveRequest, resp *QueueRemoveResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid queue item id %d", req.ID)
	}
	removed, err := s.daemon.RemoveQueueItem(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) QueueHealth(_ QueueHealthRequest, resp *QueueHealthResponse) error {
	health, err := s.daemon.QueueHealth(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = health.Total
	resp.Queued = health.Queued
	resp.Processing = health.Processing
	resp.Completed = health.Completed
	resp.Failed = health.Failed
	resp.Cancelled = health.Cancelled
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.TableExists = health.TableExists
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalItems = health.TotalItems
	resp.Error = health.Error
	return err
}

func (s *service) TrackView(req TrackViewRequest, resp *TrackViewResponse) error {
	if err := s.daemon.TrackView(s.ctx, req.PageURL, req.PageType); err != nil {
		return err
	}
	resp.Tracked = true
	return nil
}

func (s *service) TopPages(req TopPagesRequest, resp *TopPagesResponse) error {
	pages, err := s.daemon.TopPages(s.ctx, req.Limit, req.Days)
	if err != nil {
		return err
	}
	resp.Pages = make([]PageViews, 0, len(pages))
	for _, page := range pages {
		entry := PageViews{
			PageURL:   page.PageURL,
			ViewCount: page.ViewCount,
			PageType:  page.PageType,
		}
		if !page.LastViewed.IsZero() {
			entry.LastViewed = page.LastViewed.UTC().Format(time.RFC3339)
		}
		resp.Pages = append(resp.Pages, entry)
	}
	return nil
}

func (s *service) AnalyticsStats(_ AnalyticsStatsRequest, resp *AnalyticsStatsResponse) error {
	stats, err := s.daemon.AnalyticsStats(s.ctx)
	if err != nil {
		return err
	}
	resp.TotalPages = stats.TotalPages
	resp.TotalViews = stats.TotalViews
	resp.TodayViews = stats.TodayViews
	resp.WeekViews = stats.WeekViews
	return nil
}
