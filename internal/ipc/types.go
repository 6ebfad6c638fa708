package ipc

import "shutter/internal/api"

// QueueItem mirrors api.QueueItem for RPC payloads.
type QueueItem = api.QueueItem

// StartRequest asks the daemon to start background processing.
type StartRequest struct{}

// StartResponse reports the outcome of a start request.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message,omitempty"`
}

// StopRequest asks the daemon to stop background processing.
type StopRequest struct{}

// StopResponse confirms that processing stopped.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest asks for daemon runtime information.
type StatusRequest struct{}

// StatusResponse carries daemon runtime information.
type StatusResponse struct {
	api.DaemonStatus
}

// EnqueueRequest submits one page for capture.
type EnqueueRequest struct {
	PageURL  string `json:"pageUrl"`
	Viewport string `json:"viewport,omitempty"`
}

// EnqueueResponse returns the queued item.
type EnqueueResponse struct {
	Item QueueItem `json:"item"`
}

// BatchEntry is one page/viewport pair in a batch submission.
type BatchEntry struct {
	PageURL  string `json:"pageUrl"`
	Viewport string `json:"viewport,omitempty"`
}

// EnqueueBatchRequest submits several pages under one job.
type EnqueueBatchRequest struct {
	Entries []BatchEntry `json:"entries"`
}

// BatchError explains why one batch entry was rejected.
type BatchError struct {
	PageURL string `json:"pageUrl"`
	Reason  string `json:"reason"`
}

// EnqueueBatchResponse summarizes a batch submission.
type EnqueueBatchResponse struct {
	JobID  string       `json:"jobId"`
	Queued int          `json:"queued"`
	Total  int          `json:"total"`
	Errors []BatchError `json:"errors,omitempty"`
}

// JobStatusRequest asks for the derived state of a job.
type JobStatusRequest struct {
	JobID string `json:"jobId"`
}

// JobStatusResponse carries the derived job state with its items.
type JobStatusResponse struct {
	api.JobSummary
}

// CancelRequest stops all pending items of a job.
type CancelRequest struct {
	JobID string `json:"jobId"`
}

// CancelResponse reports how many items were cancelled.
type CancelResponse struct {
	Cancelled int64 `json:"cancelled"`
}

// ProcessRequest drains up to Limit queued captures immediately.
type ProcessRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ProcessFailure explains why one item failed during a drain pass.
type ProcessFailure struct {
	PageURL string `json:"pageUrl"`
	Reason  string `json:"reason"`
}

// ProcessResponse summarizes one drain pass.
type ProcessResponse struct {
	Processed int              `json:"processed"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Failures  []ProcessFailure `json:"failures,omitempty"`
}

// CapabilitiesRequest asks what the host can capture with.
type CapabilitiesRequest struct{}

// CapabilitiesResponse carries host capture capabilities.
type CapabilitiesResponse struct {
	api.Capabilities
}

// CleanupRequest removes artifacts older than Days (0 uses the configured
// horizon).
type CleanupRequest struct {
	Days int `json:"days,omitempty"`
}

// CleanupResponse summarizes one retention sweep.
type CleanupResponse struct {
	FilesRemoved int   `json:"filesRemoved"`
	DirsRemoved  int   `json:"dirsRemoved"`
	RowsPurged   int64 `json:"rowsPurged"`
	Errors       int   `json:"errors"`
}

// QueueListRequest lists queue items, optionally filtered by status.
type QueueListRequest struct {
	Statuses []string `json:"statuses,omitempty"`
}

// QueueListResponse carries the matching queue items.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueClearRequest removes all queue items.
type QueueClearRequest struct{}

// QueueClearResponse reports how many rows were removed.
type QueueClearResponse struct {
	Removed int64 `json:"removed"`
}

// QueueClearCompletedRequest removes only completed items.
type QueueClearCompletedRequest struct{}

// QueueClearCompletedResponse reports how many rows were removed.
type QueueClearCompletedResponse struct {
	Removed int64 `json:"removed"`
}

// QueueClearFailedRequest removes only failed items.
type QueueClearFailedRequest struct{}

// QueueClearFailedResponse reports how many rows were removed.
type QueueClearFailedResponse struct {
	Removed int64 `json:"removed"`
}

// QueueRemoveRequest deletes a single queue item.
type QueueRemoveRequest struct {
	ID int64 `json:"id"`
}

// QueueRemoveResponse reports whether the item existed.
type QueueRemoveResponse struct {
	Removed bool `json:"removed"`
}

// QueueHealthRequest asks for aggregate queue counts.
type QueueHealthRequest struct{}

// QueueHealthResponse carries aggregate queue counts.
type QueueHealthResponse struct {
	Total      int `json:"total"`
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Cancelled  int `json:"cancelled"`
}

// DatabaseHealthRequest asks for database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse carries database diagnostics.
type DatabaseHealthResponse struct {
	DBPath           string `json:"dbPath"`
	DatabaseExists   bool   `json:"databaseExists"`
	DatabaseReadable bool   `json:"databaseReadable"`
	TableExists      bool   `json:"tableExists"`
	IntegrityCheck   bool   `json:"integrityCheck"`
	TotalItems       int    `json:"totalItems"`
	Error            string `json:"error,omitempty"`
}

// TrackViewRequest records one page view.
type TrackViewRequest struct {
	PageURL  string `json:"pageUrl"`
	PageType string `json:"pageType,omitempty"`
}

// TrackViewResponse confirms the view was recorded.
type TrackViewResponse struct {
	Tracked bool `json:"tracked"`
}

// TopPagesRequest asks for the most viewed pages.
type TopPagesRequest struct {
	Limit int `json:"limit,omitempty"`
	Days  int `json:"days,omitempty"`
}

// PageViews is one ranked page-view counter.
type PageViews struct {
	PageURL    string `json:"pageUrl"`
	ViewCount  int    `json:"viewCount"`
	PageType   string `json:"pageType"`
	LastViewed string `json:"lastViewed,omitempty"`
}

// TopPagesResponse carries the ranked pages.
type TopPagesResponse struct {
	Pages []PageViews `json:"pages"`
}

// AnalyticsStatsRequest asks for aggregate page-view counters.
type AnalyticsStatsRequest struct{}

// AnalyticsStatsResponse carries aggregate page-view counters.
type AnalyticsStatsResponse struct {
	TotalPages int `json:"totalPages"`
	TotalViews int `json:"totalViews"`
	TodayViews int `json:"todayViews"`
	WeekViews  int `json:"weekViews"`
}
