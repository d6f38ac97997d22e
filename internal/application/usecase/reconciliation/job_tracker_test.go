package reconciliation

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
)

func TestInMemoryJobTracker(t *testing.T) {
	ctx := context.Background()

	t.Run("should return nil for an unknown job", func(t *testing.T) {
		tracker := NewInMemoryJobTracker()

		job, err := tracker.Get(ctx, "does-not-exist")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job != nil {
			t.Errorf("expected nil, got %+v", job)
		}
	})

	t.Run("should store and retrieve a job", func(t *testing.T) {
		tracker := NewInMemoryJobTracker()
		job := &Job{ID: "job-1", Status: JobStatusPending, SubmittedAt: time.Now().UTC()}

		if err := tracker.Put(ctx, job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := tracker.Get(ctx, "job-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.Status != JobStatusPending {
			t.Errorf("expected pending job, got %+v", got)
		}
	})

	t.Run("should make status transitions visible immediately", func(t *testing.T) {
		tracker := NewInMemoryJobTracker()
		job := &Job{ID: "job-2", Status: JobStatusPending}
		_ = tracker.Put(ctx, job)

		job.Status = JobStatusRunning
		_ = tracker.Put(ctx, job)

		got, _ := tracker.Get(ctx, "job-2")
		if got.Status != JobStatusRunning {
			t.Errorf("expected running, got %s", got.Status)
		}
	})

	t.Run("should return copies that do not alias stored state", func(t *testing.T) {
		tracker := NewInMemoryJobTracker()
		_ = tracker.Put(ctx, &Job{ID: "job-3", Status: JobStatusPending})

		got, _ := tracker.Get(ctx, "job-3")
		got.Status = JobStatusFailed

		again, _ := tracker.Get(ctx, "job-3")
		if again.Status != JobStatusPending {
			t.Error("mutating a returned job must not change the stored record")
		}
	})

	t.Run("should list jobs newest first", func(t *testing.T) {
		tracker := NewInMemoryJobTracker()
		_ = tracker.Put(ctx, &Job{ID: "job-a"})
		_ = tracker.Put(ctx, &Job{ID: "job-b"})
		_ = tracker.Put(ctx, &Job{ID: "job-c"})

		jobs, err := tracker.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jobs) != 3 {
			t.Fatalf("expected 3 jobs, got %d", len(jobs))
		}
		if jobs[0].ID != "job-c" || jobs[2].ID != "job-a" {
			t.Errorf("expected newest-first ordering, got %s..%s", jobs[0].ID, jobs[2].ID)
		}
	})
}

func TestGetJobStatusUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("should return a coded error for an unknown job", func(t *testing.T) {
		uc := NewGetJobStatusUseCase(NewInMemoryJobTracker())

		_, err := uc.Execute(ctx, "missing")
		if !errors.Is(err, domainerror.ErrJobNotFound) {
			t.Errorf("expected ErrJobNotFound, got %v", err)
		}
	})

	t.Run("should return a tracked job", func(t *testing.T) {
		tracker := NewInMemoryJobTracker()
		_ = tracker.Put(ctx, &Job{ID: "job-1", Status: JobStatusCompleted})

		uc := NewGetJobStatusUseCase(tracker)
		job, err := uc.Execute(ctx, "job-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Status != JobStatusCompleted {
			t.Errorf("expected completed, got %s", job.Status)
		}
	})
}

func TestSubmitJobUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	dateFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dateTo := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	newSubmitUseCase := func(tracker JobTracker) *SubmitJobUseCase {
		run := newEngineForTest(
			&fakeTransactionRepository{},
			&fakeSettlementRepository{},
			&fakeDiscrepancyRepository{},
			newFakeReportRepository(),
		)
		return NewSubmitJobUseCase(run, tracker)
	}

	t.Run("should reject an inverted date range before registering a job", func(t *testing.T) {
		tracker := NewInMemoryJobTracker()
		uc := newSubmitUseCase(tracker)

		_, err := uc.Execute(ctx, SubmitJobInput{DateFrom: dateTo, DateTo: dateFrom})
		if !errors.Is(err, domainerror.ErrInvalidDateRange) {
			t.Errorf("expected ErrInvalidDateRange, got %v", err)
		}

		jobs, _ := tracker.List(ctx)
		if len(jobs) != 0 {
			t.Errorf("expected no registered jobs, got %d", len(jobs))
		}
	})

	t.Run("should register the job and eventually complete it", func(t *testing.T) {
		tracker := NewInMemoryJobTracker()
		uc := newSubmitUseCase(tracker)

		out, err := uc.Execute(ctx, SubmitJobInput{DateFrom: dateFrom, DateTo: dateTo})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Status != string(JobStatusPending) {
			t.Errorf("expected pending on submission, got %s", out.Status)
		}

		deadline := time.Now().Add(2 * time.Second)
		for {
			job, getErr := tracker.Get(ctx, out.JobID)
			if getErr != nil {
				t.Fatalf("unexpected error: %v", getErr)
			}
			if job != nil && job.Status == JobStatusCompleted {
				if job.ReportID == nil {
					t.Error("expected the completed job to reference its report")
				}
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("job did not complete in time, last status: %+v", job)
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}
