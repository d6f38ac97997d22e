package reconciliation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle of an async reconciliation job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job tracks one submitted reconciliation run. Status transitions
// (pending -> running -> completed|failed) must be visible to pollers
// immediately after each transition.
type Job struct {
	ID          string     `json:"job_id"`
	Status      JobStatus  `json:"status"`
	DateFrom    time.Time  `json:"date_from"`
	DateTo      time.Time  `json:"date_to"`
	Processors  []string   `json:"processors,omitempty"`
	ReportID    *uuid.UUID `json:"report_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// JobTracker is the injected key-value store for job status. Implementations
// must provide read-your-writes visibility; no cross-job ordering is
// required.
type JobTracker interface {
	// Get retrieves a job by ID. Returns nil when the job does not exist.
	Get(ctx context.Context, jobID string) (*Job, error)

	// Put stores or replaces a job record.
	Put(ctx context.Context, job *Job) error

	// List returns all tracked jobs, newest submission first.
	List(ctx context.Context) ([]*Job, error)
}

// InMemoryJobTracker is a process-lifetime JobTracker backed by a mutex-guarded map.
type InMemoryJobTracker struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string
}

// NewInMemoryJobTracker creates a new in-memory job tracker.
func NewInMemoryJobTracker() *InMemoryJobTracker {
	return &InMemoryJobTracker{
		jobs: make(map[string]*Job),
	}
}

// Get retrieves a job by ID.
func (t *InMemoryJobTracker) Get(_ context.Context, jobID string) (*Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[jobID]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

// Put stores or replaces a job record.
func (t *InMemoryJobTracker) Put(_ context.Context, job *Job) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.jobs[job.ID]; !exists {
		t.order = append(t.order, job.ID)
	}
	copied := *job
	t.jobs[job.ID] = &copied
	return nil
}

// List returns all tracked jobs, newest submission first.
func (t *InMemoryJobTracker) List(_ context.Context) ([]*Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	jobs := make([]*Job, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		copied := *t.jobs[t.order[i]]
		jobs = append(jobs, &copied)
	}
	return jobs, nil
}
