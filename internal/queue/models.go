package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusQueued,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status will never change again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Item represents a screenshot request persisted in SQLite.
type Item struct {
	ID             int64
	JobID          string
	PageURL        string
	Viewport       string
	Status         Status
	ScreenshotPath string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MarkProcessing transitions the item to processing.
func (i *Item) MarkProcessing() {
	i.Status = StatusProcessing
}

// MarkCompleted records a successful capture. The error message is cleared so
// terminal rows never carry both a path and an error.
func (i *Item) MarkCompleted(path string) {
	i.Status = StatusCompleted
	i.ScreenshotPath = path
	i.ErrorMessage = ""
}

// MarkFailed records a failed capture.
func (i *Item) MarkFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ScreenshotPath = ""
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Completed  int
	Failed     int
	Cancelled  int
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}
