package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start processing.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Shutter.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Shutter.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Shutter.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Enqueue submits one page for capture.
func (c *Client) Enqueue(pageURL, viewport string) (*EnqueueResponse, error) {
	var resp EnqueueResponse
	req := EnqueueRequest{PageURL: pageURL, Viewport: viewport}
	if err := c.client.Call("Shutter.Enqueue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnqueueBatch submits several pages under one job.
func (c *Client) EnqueueBatch(entries []BatchEntry) (*EnqueueBatchResponse, error) {
	var resp EnqueueBatchResponse
	req := EnqueueBatchRequest{Entries: entries}
	if err := c.client.Call("Shutter.EnqueueBatch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JobStatus retrieves the derived state of a job.
func (c *Client) JobStatus(jobID string) (*JobStatusResponse, error) {
	var resp JobStatusResponse
	req := JobStatusRequest{JobID: jobID}
	if err := c.client.Call("Shutter.JobStatus", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel stops all pending items of a job.
func (c *Client) Cancel(jobID string) (*CancelResponse, error) {
	var resp CancelResponse
	req := CancelRequest{JobID: jobID}
	if err := c.client.Call("Shutter.Cancel", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Process drains up to limit queued captures immediately.
func (c *Client) Process(limit int) (*ProcessResponse, error) {
	var resp ProcessResponse
	req := ProcessRequest{Limit: limit}
	if err := c.client.Call("Shutter.Process", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Capabilities retrieves host capture capabilities.
func (c *Client) Capabilities() (*CapabilitiesResponse, error) {
	var resp CapabilitiesResponse
	if err := c.client.Call("Shutter.Capabilities", CapabilitiesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cleanup removes artifacts older than days (0 uses the configured horizon).
func (c *Client) Cleanup(days int) (*CleanupResponse, error) {
	var resp CleanupResponse
	req := CleanupRequest{Days: days}
	if err := c.client.Call("Shutter.Cleanup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueList returns queue items optionally filtered by statuses.
func (c *Client) QueueList(statuses []string) (*QueueListResponse, error) {
	var resp QueueListResponse
	req := QueueListRequest{Statuses: statuses}
	if err := c.client.Call("Shutter.QueueList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueClear removes all items from the queue.
func (c *Client) QueueClear() (*QueueClearResponse, error) {
	var resp QueueClearResponse
	if err := c.client.Call("Shutter.QueueClear", QueueClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueClearCompleted removes only completed items from the queue.
func (c *Client) QueueClearCompleted() (*QueueClearCompletedResponse, error) {
	var resp QueueClearCompletedResponse
	if err := c.client.Call("Shutter.QueueClearCompleted", QueueClearCompletedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueClearFailed removes only failed items from the queue.
func (c *Client) QueueClearFailed() (*QueueClearFailedResponse, error) {
	var resp QueueClearFailedResponse
	if err := c.client.Call("Shutter.QueueClearFailed", QueueClearFailedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueRemove deletes a single queue item.
func (c *Client) QueueRemove(id int64) (*QueueRemoveResponse, error) {
	var resp QueueRemoveResponse
	req := QueueRemoveRequest{ID: id}
	if err := c.client.Call("Shutter.QueueRemove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueHealth returns aggregate queue diagnostics.
func (c *Client) QueueHealth() (*QueueHealthResponse, error) {
	var resp QueueHealthResponse
	if err := c.client.Call("Shutter.QueueHealth", QueueHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth returns detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Shutter.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackView records one page view.
func (c *Client) TrackView(pageURL, pageType string) (*TrackViewResponse, error) {
	var resp TrackViewResponse
	req := TrackViewRequest{PageURL: pageURL, PageType: pageType}
	if err := c.client.Call("Shutter.TrackView", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TopPages returns the most viewed pages.
func (c *Client) TopPages(limit, days int) (*TopPagesResponse, error) {
	var resp TopPagesResponse
	req := TopPagesRequest{Limit: limit, Days: days}
	if err := c.client.Call("Shutter.TopPages", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnalyticsStats returns aggregate page-view counters.
func (c *Client) AnalyticsStats() (*AnalyticsStatsResponse, error) {
	var resp AnalyticsStatsResponse
	if err := c.client.Call("Shutter.AnalyticsStats", AnalyticsStatsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
