package api

import (
	"time"

	"shutter/internal/deps"
	"shutter/internal/queue"
	"shutter/internal/screenshot"
)

// FromQueueItem converts a persisted queue item into its transport view.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}
	return QueueItem{
		ID:             item.ID,
		JobID:          item.JobID,
		PageURL:        item.PageURL,
		Viewport:       item.Viewport,
		Status:         string(item.Status),
		ScreenshotPath: item.ScreenshotPath,
		ErrorMessage:   item.ErrorMessage,
		CreatedAt:      formatTime(item.CreatedAt),
		UpdatedAt:      formatTime(item.UpdatedAt),
	}
}

// FromQueueItems converts a slice of queue items, skipping nil entries.
func FromQueueItems(items []*queue.Item) []QueueItem {
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromJobStatus converts a derived job status into its transport view.
func FromJobStatus(status *screenshot.JobStatus) JobSummary {
	if status == nil {
		return JobSummary{}
	}
	return JobSummary{
		JobID:      status.JobID,
		State:      string(status.State),
		Total:      status.Summary.Total,
		Queued:     status.Summary.Queued,
		Processing: status.Summary.Processing,
		Completed:  status.Summary.Completed,
		Failed:     status.Summary.Failed,
		Cancelled:  status.Summary.Cancelled,
		Items:      FromQueueItems(status.Items),
	}
}

// FromCapabilities converts host capture capabilities into their transport view.
func FromCapabilities(caps screenshot.Capabilities) Capabilities {
	return Capabilities{
		Tools:            caps.Tools,
		Capable:          caps.Capable,
		Viewports:        caps.Viewports,
		MaxQueueSize:     caps.MaxQueueSize,
		CurrentQueueSize: caps.CurrentQueueSize,
	}
}

// FromDependencyStatuses converts tool probe results into their transport view.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, DependencyStatus{
			Name:        status.Name,
			Command:     status.Command,
			Description: status.Description,
			Optional:    status.Optional,
			Available:   status.Available,
			Detail:      status.Detail,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}
