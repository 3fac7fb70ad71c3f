package render

import (
	"context"
	"time"

	"github.com/AndrewPopesku/aive/internal/timeline"
)

// Status is the lifecycle state of a render job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final. Terminal jobs never change
// state again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Job is a single queued render. All fields are owned by the queue and read
// or written only under its lock; callers observe jobs through Snapshots.
type Job struct {
	ID         string
	Timeline   *timeline.Timeline
	OutputPath string
	Renderer   Renderer
	Options    Options
	Metadata   map[string]any

	Status      Status
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Progress    int // 0..100
	Error       string

	cancel context.CancelFunc // set while running
}

// duration returns completed-started in seconds, nil until both are set.
func (j *Job) duration() *float64 {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return nil
	}
	d := j.CompletedAt.Sub(*j.StartedAt).Seconds()
	return &d
}

// Snapshot is an immutable view of a job, safe to hold after the queue moves
// on. Timestamps are RFC3339 strings; unset ones are null.
type Snapshot struct {
	ID          string         `json:"id"`
	OutputPath  string         `json:"output_path"`
	Status      Status         `json:"status"`
	CreatedAt   string         `json:"created_at"`
	StartedAt   *string        `json:"started_at"`
	CompletedAt *string        `json:"completed_at"`
	Duration    *float64       `json:"duration"`
	Progress    int            `json:"progress"`
	Error       string         `json:"error_message,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// snapshot must be called with the queue lock held.
func (j *Job) snapshot() Snapshot {
	var meta map[string]any
	if len(j.Metadata) > 0 {
		meta = make(map[string]any, len(j.Metadata))
		for k, v := range j.Metadata {
			meta[k] = v
		}
	}
	return Snapshot{
		ID:          j.ID,
		OutputPath:  j.OutputPath,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt.Format(time.RFC3339),
		StartedAt:   formatTime(j.StartedAt),
		CompletedAt: formatTime(j.CompletedAt),
		Duration:    j.duration(),
		Progress:    j.Progress,
		Error:       j.Error,
		Metadata:    meta,
	}
}

// Stats summarizes the queue at a point in time.
type Stats struct {
	TotalJobs    int      `json:"total_jobs"`
	Pending      int      `json:"pending"`
	Running      int      `json:"running"`
	Completed    int      `json:"completed"`
	Failed       int      `json:"failed"`
	Cancelled    int      `json:"cancelled"`
	QueueRunning bool     `json:"queue_running"`
	AvgDuration  *float64 `json:"avg_duration"` // seconds, over completed jobs
}
