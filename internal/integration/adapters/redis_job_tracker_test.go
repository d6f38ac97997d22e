package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/reconciliation"
)

func newTestTracker(t *testing.T) *RedisJobTracker {
	t.Helper()

	miniRedis, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(miniRedis.Close)

	client := redis.NewClient(&redis.Options{Addr: miniRedis.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisJobTracker(client)
}

func newTrackedJob(id string, status reconciliation.JobStatus, submittedAt time.Time) *reconciliation.Job {
	return &reconciliation.Job{
		ID:          id,
		Status:      status,
		DateFrom:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		SubmittedAt: submittedAt,
	}
}

func TestRedisJobTracker(t *testing.T) {
	ctx := context.Background()

	t.Run("should return nil for an unknown job", func(t *testing.T) {
		tracker := newTestTracker(t)

		job, err := tracker.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job != nil {
			t.Errorf("expected nil job, got %+v", job)
		}
	})

	t.Run("should round-trip a job through storage", func(t *testing.T) {
		tracker := newTestTracker(t)

		reportID := uuid.New()
		job := newTrackedJob("job-1", reconciliation.JobStatusCompleted, time.Now().UTC())
		job.Processors = []string{"payflow", "globalpay"}
		job.ReportID = &reportID

		if err := tracker.Put(ctx, job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		loaded, err := tracker.Get(ctx, "job-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded == nil {
			t.Fatal("expected job to be found")
		}
		if loaded.Status != reconciliation.JobStatusCompleted {
			t.Errorf("expected status completed, got %q", loaded.Status)
		}
		if loaded.ReportID == nil || *loaded.ReportID != reportID {
			t.Errorf("expected report ID %s, got %v", reportID, loaded.ReportID)
		}
		if len(loaded.Processors) != 2 || loaded.Processors[0] != "payflow" {
			t.Errorf("expected processors to round-trip, got %v", loaded.Processors)
		}
	})

	t.Run("should make status transitions immediately visible", func(t *testing.T) {
		tracker := newTestTracker(t)

		job := newTrackedJob("job-1", reconciliation.JobStatusPending, time.Now().UTC())
		if err := tracker.Put(ctx, job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		job.Status = reconciliation.JobStatusRunning
		if err := tracker.Put(ctx, job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		loaded, err := tracker.Get(ctx, "job-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.Status != reconciliation.JobStatusRunning {
			t.Errorf("expected status running, got %q", loaded.Status)
		}
	})

	t.Run("should list jobs newest submission first without duplicates", func(t *testing.T) {
		tracker := newTestTracker(t)

		base := time.Now().UTC()
		for i, id := range []string{"job-1", "job-2", "job-3"} {
			job := newTrackedJob(id, reconciliation.JobStatusPending, base.Add(time.Duration(i)*time.Second))
			if err := tracker.Put(ctx, job); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		// Updating an existing job must not reorder the index.
		updated := newTrackedJob("job-1", reconciliation.JobStatusCompleted, base)
		if err := tracker.Put(ctx, updated); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		jobs, err := tracker.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jobs) != 3 {
			t.Fatalf("expected 3 jobs, got %d", len(jobs))
		}
		for i, expected := range []string{"job-3", "job-2", "job-1"} {
			if jobs[i].ID != expected {
				t.Errorf("position %d: expected %s, got %s", i, expected, jobs[i].ID)
			}
		}
		if jobs[2].Status != reconciliation.JobStatusCompleted {
			t.Errorf("expected updated status for job-1, got %q", jobs[2].Status)
		}
	})
}
