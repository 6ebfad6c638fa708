// Package api defines transport-friendly views of the queue and daemon state
// shared by the IPC layer and the CLI.
package api

// timeFormat is used for RFC3339 timestamps in payloads.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a queue entry in a transport-friendly format.
type QueueItem struct {
	ID             int64  `json:"id"`
	JobID          string `json:"jobId"`
	PageURL        string `json:"pageUrl"`
	Viewport       string `json:"viewport"`
	Status         string `json:"status"`
	ScreenshotPath string `json:"screenshotPath,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

// JobSummary aggregates the state of every item sharing a job identifier.
type JobSummary struct {
	JobID      string      `json:"jobId"`
	State      string      `json:"state"`
	Total      int         `json:"total"`
	Queued     int         `json:"queued"`
	Processing int         `json:"processing"`
	Completed  int         `json:"completed"`
	Failed     int         `json:"failed"`
	Cancelled  int         `json:"cancelled"`
	Items      []QueueItem `json:"items,omitempty"`
}

// Capabilities reports what the host can capture with.
type Capabilities struct {
	Tools            map[string]bool `json:"tools"`
	Capable          bool            `json:"capable"`
	Viewports        []string        `json:"viewports"`
	MaxQueueSize     int             `json:"maxQueueSize"`
	CurrentQueueSize int             `json:"currentQueueSize"`
}

// DependencyStatus captures availability of an external capture tool.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// WorkflowStatus summarizes the daemon's background loops.
type WorkflowStatus struct {
	Running   bool   `json:"running"`
	LastDrain string `json:"lastDrain,omitempty"`
	LastSweep string `json:"lastSweep,omitempty"`
}

// DaemonStatus aggregates daemon runtime information.
type DaemonStatus struct {
	Running         bool               `json:"running"`
	PID             int                `json:"pid"`
	QueueDBPath     string             `json:"queueDbPath"`
	AnalyticsDBPath string             `json:"analyticsDbPath"`
	LockFilePath    string             `json:"lockFilePath"`
	Workflow        WorkflowStatus     `json:"workflow"`
	QueueStats      map[string]int     `json:"queueStats"`
	Dependencies    []DependencyStatus `json:"dependencies"`
}
