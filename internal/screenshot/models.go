package screenshot

import "shutter/internal/queue"

// JobState is the aggregate state derived from a job's queue items.
type JobState string

const (
	JobStateNotFound   JobState = "not_found"
	JobStateQueued     JobState = "queued"
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
)

// DeriveJobState collapses per-item counts into a single job state.
// A job is completed or failed only when every item is; any item still
// in flight keeps the job in processing.
func DeriveJobState(summary queue.HealthSummary) JobState {
	switch {
	case summary.Total == 0:
		return JobStateNotFound
	case summary.Completed == summary.Total:
		return JobStateCompleted
	case summary.Failed == summary.Total:
		return JobStateFailed
	case summary.Processing > 0:
		return JobStateProcessing
	default:
		return JobStateQueued
	}
}

// JobStatus describes the aggregate and per-item state of one job.
type JobStatus struct {
	JobID   string
	State   JobState
	Summary queue.HealthSummary
	Items   []*queue.Item
}

// BatchRequest is one page/viewport pair submitted as part of a batch.
type BatchRequest struct {
	PageURL  string
	Viewport string
}

// BatchError records why one batch entry was rejected.
type BatchError struct {
	PageURL string
	Reason  string
}

// BatchResult summarizes a batch submission. Rejected entries do not abort
// the rest of the batch.
type BatchResult struct {
	JobID  string
	Queued int
	Total  int
	Errors []BatchError
}

// DrainFailure pairs a page with the reason its capture failed.
type DrainFailure struct {
	PageURL string
	Reason  string
}

// DrainResult summarizes one queue drain pass. Failures lists every item
// that reached a failed state during the pass.
type DrainResult struct {
	Processed int
	Succeeded int
	Failed    int
	Failures  []DrainFailure
}

// Capabilities reports what the host can capture with.
type Capabilities struct {
	Tools            map[string]bool
	Capable          bool
	Viewports        []string
	MaxQueueSize     int
	CurrentQueueSize int
}
