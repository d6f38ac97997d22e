// Package adapters contains integration-layer implementations of
// application adapter interfaces backed by external services.
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/reconciliation"
)

const (
	jobKeyPrefix = "reconciler:job:"
	jobIndexKey  = "reconciler:jobs"
)

// RedisJobTracker implements reconciliation.JobTracker on Redis, so job
// status survives process restarts and is shared between API replicas.
// Jobs are stored as JSON values under reconciler:job:<id>, with a list at
// reconciler:jobs holding submission order.
type RedisJobTracker struct {
	client *redis.Client
}

// NewRedisJobTracker creates a new RedisJobTracker instance.
func NewRedisJobTracker(client *redis.Client) *RedisJobTracker {
	return &RedisJobTracker{client: client}
}

// Get retrieves a job by ID. Returns nil when the job does not exist.
func (t *RedisJobTracker) Get(ctx context.Context, jobID string) (*reconciliation.Job, error) {
	payload, err := t.client.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read job %s: %w", jobID, err)
	}

	var job reconciliation.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}
	return &job, nil
}

// Put stores or replaces a job record. New job IDs are appended to the
// submission index; updates leave the index untouched.
func (t *RedisJobTracker) Put(ctx context.Context, job *reconciliation.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	key := jobKeyPrefix + job.ID
	exists, err := t.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check job %s: %w", job.ID, err)
	}

	if err := t.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}

	if exists == 0 {
		if err := t.client.RPush(ctx, jobIndexKey, job.ID).Err(); err != nil {
			return fmt.Errorf("failed to index job %s: %w", job.ID, err)
		}
	}
	return nil
}

// List returns all tracked jobs, newest submission first. Index entries
// whose job key has expired are skipped.
func (t *RedisJobTracker) List(ctx context.Context) ([]*reconciliation.Job, error) {
	ids, err := t.client.LRange(ctx, jobIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*reconciliation.Job, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		job, err := t.Get(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		if job == nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
