package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
)

// SubmitJobInput represents the input for submitting an async reconciliation run.
type SubmitJobInput struct {
	DateFrom   time.Time
	DateTo     time.Time
	Processors []string
}

// SubmitJobOutput is returned immediately; the caller polls the job ID for progress.
type SubmitJobOutput struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SubmitJobUseCase runs reconciliation as a fire-and-forget background job.
// Each submission gets a fresh job ID and exactly one goroutine, which gives
// at-most-once execution per job ID. There is no cancellation: a started run
// goes to completion or failure.
type SubmitJobUseCase struct {
	runUseCase *RunReconciliationUseCase
	tracker    JobTracker
}

// NewSubmitJobUseCase creates a new SubmitJobUseCase instance.
func NewSubmitJobUseCase(runUseCase *RunReconciliationUseCase, tracker JobTracker) *SubmitJobUseCase {
	return &SubmitJobUseCase{
		runUseCase: runUseCase,
		tracker:    tracker,
	}
}

// Execute registers the job as pending and starts it in the background.
func (uc *SubmitJobUseCase) Execute(ctx context.Context, input SubmitJobInput) (*SubmitJobOutput, error) {
	if input.DateFrom.After(input.DateTo) {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeInvalidDateRange,
			"invalid reconciliation date range",
			domainerror.ErrInvalidDateRange,
		)
	}

	job := &Job{
		ID:          uuid.New().String(),
		Status:      JobStatusPending,
		DateFrom:    input.DateFrom,
		DateTo:      input.DateTo,
		Processors:  input.Processors,
		SubmittedAt: time.Now().UTC(),
	}
	if err := uc.tracker.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to register job: %w", err)
	}

	// The run must outlive the submitting request, so it gets a background
	// context rather than the request-scoped one.
	go uc.runJob(context.Background(), *job)

	return &SubmitJobOutput{
		JobID:   job.ID,
		Status:  string(JobStatusPending),
		Message: "Reconciliation job submitted",
	}, nil
}

// runJob executes the reconciliation run and records every status transition.
func (uc *SubmitJobUseCase) runJob(ctx context.Context, job Job) {
	job.Status = JobStatusRunning
	if err := uc.tracker.Put(ctx, &job); err != nil {
		slog.Error("Failed to mark job running", "job_id", job.ID, "error", err)
	}

	report, err := uc.runUseCase.Execute(ctx, RunReconciliationInput{
		DateFrom:   job.DateFrom,
		DateTo:     job.DateTo,
		Processors: job.Processors,
	})

	if err != nil {
		job.Status = JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = JobStatusCompleted
	}
	if report != nil {
		reportID := report.ID
		job.ReportID = &reportID
	}

	if err := uc.tracker.Put(ctx, &job); err != nil {
		slog.Error("Failed to record job result", "job_id", job.ID, "error", err)
	}
}

// GetJobStatusUseCase looks up one async job for polling.
type GetJobStatusUseCase struct {
	tracker JobTracker
}

// NewGetJobStatusUseCase creates a new GetJobStatusUseCase instance.
func NewGetJobStatusUseCase(tracker JobTracker) *GetJobStatusUseCase {
	return &GetJobStatusUseCase{tracker: tracker}
}

// Execute retrieves a job by ID.
func (uc *GetJobStatusUseCase) Execute(ctx context.Context, jobID string) (*Job, error) {
	job, err := uc.tracker.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up job: %w", err)
	}
	if job == nil {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeJobNotFound,
			"job not found",
			domainerror.ErrJobNotFound,
		)
	}
	return job, nil
}

// ListJobsUseCase lists every tracked async job.
type ListJobsUseCase struct {
	tracker JobTracker
}

// NewListJobsUseCase creates a new ListJobsUseCase instance.
func NewListJobsUseCase(tracker JobTracker) *ListJobsUseCase {
	return &ListJobsUseCase{tracker: tracker}
}

// Execute returns all tracked jobs, newest first.
func (uc *ListJobsUseCase) Execute(ctx context.Context) ([]*Job, error) {
	return uc.tracker.List(ctx)
}
