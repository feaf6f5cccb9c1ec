package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mergeq/internal/domain"
	"mergeq/internal/infra"
)

// ErrNoJob is returned by Claim when no queued job is available.
var ErrNoJob = errors.New("no job available")

// SubmitRequest carries the fields of a new job. Attempts are fixed at
// submission time by the queue's configured default.
type SubmitRequest struct {
	SourceURL    string
	StreamID     string
	Container    string
	FilenameHint string
	Requester    string
}

// Queue is the durable Postgres-backed job queue. Claim relies on
// FOR UPDATE SKIP LOCKED so no two workers ever hold the same job, and a
// failed attempt is re-queued automatically while attempts remain.
type Queue struct {
	db       infra.SQLExecutor
	logger   zerolog.Logger
	attempts int
}

// New constructs a queue. attempts is the per-job attempt budget applied at
// submission (minimum 1).
func New(db infra.SQLExecutor, logger zerolog.Logger, attempts int) *Queue {
	if attempts < 1 {
		attempts = 1
	}
	return &Queue{db: db, logger: logger, attempts: attempts}
}

// Submit durably enqueues a job and returns its id. The insert commits before
// Submit returns; it never waits on worker availability.
func (q *Queue) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	query := `
INSERT INTO merge_jobs (id, source_url, stream_id, container, filename_hint, requester, state, progress, attempts_left)
VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8);
`
	id := uuid.NewString()
	_, err := q.db.Exec(ctx, query,
		id,
		req.SourceURL,
		req.StreamID,
		req.Container,
		req.FilenameHint,
		req.Requester,
		domain.JobStateQueued,
		q.attempts,
	)
	if err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return id, nil
}

// Claim atomically takes ownership of the oldest queued job and marks it
// active. Returns ErrNoJob when the queue is empty.
func (q *Queue) Claim(ctx context.Context) (*domain.Job, error) {
	query := `
WITH next_job AS (
    SELECT id
    FROM merge_jobs
    WHERE state = 'queued'
    ORDER BY created_at ASC
    FOR UPDATE SKIP LOCKED
    LIMIT 1
),
claimed AS (
    UPDATE merge_jobs
    SET state = 'active', updated_at = now()
    WHERE id IN (SELECT id FROM next_job)
    RETURNING id, source_url, stream_id, container, filename_hint, requester, state, progress, attempts_left, last_error, created_at, updated_at
)
SELECT * FROM claimed;
`
	row := q.db.QueryRow(ctx, query)
	var j domain.Job
	if err := row.Scan(
		&j.ID,
		&j.SourceURL,
		&j.StreamID,
		&j.Container,
		&j.FilenameHint,
		&j.Requester,
		&j.State,
		&j.Progress,
		&j.AttemptsLeft,
		&j.LastError,
		&j.CreatedAt,
		&j.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, ErrNoJob
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return &j, nil
}

// ReportProgress records an advisory progress percentage. Updates are clamped
// monotonically non-decreasing and failures are only logged; progress is a
// hint, never a completion signal.
func (q *Queue) ReportProgress(ctx context.Context, id string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	query := `
UPDATE merge_jobs
SET progress = GREATEST(progress, $2), updated_at = now()
WHERE id = $1;
`
	if _, err := q.db.Exec(ctx, query, id, percent); err != nil {
		q.logger.Warn().Err(err).Str("job_id", id).Msg("queue: progress update failed")
	}
}

// GetState returns the live state and progress of a job, or
// domain.JobStateNotFound when the record does not exist (or was pruned).
func (q *Queue) GetState(ctx context.Context, id string) (domain.JobState, int, error) {
	query := `
SELECT state, progress
FROM merge_jobs
WHERE id = $1;
`
	var state domain.JobState
	var progress int
	if err := q.db.QueryRow(ctx, query, id).Scan(&state, &progress); err != nil {
		if infra.IsNoRows(err) {
			return domain.JobStateNotFound, 0, nil
		}
		return "", 0, fmt.Errorf("get job state: %w", err)
	}
	return state, progress, nil
}

// Complete marks a job terminal-success.
func (q *Queue) Complete(ctx context.Context, id string) error {
	query := `
UPDATE merge_jobs
SET state = 'completed', progress = 100, updated_at = now()
WHERE id = $1;
`
	if _, err := q.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// Fail records a failed attempt. While attempts remain the job is re-queued
// for another run; once the budget is exhausted it becomes terminal-failure.
// The returned state tells the caller which of the two happened.
func (q *Queue) Fail(ctx context.Context, id string, cause error) (domain.JobState, error) {
	query := `
UPDATE merge_jobs
SET attempts_left = attempts_left - 1,
    state = CASE WHEN attempts_left > 1 THEN 'queued' ELSE 'failed' END,
    progress = CASE WHEN attempts_left > 1 THEN 0 ELSE progress END,
    last_error = $2,
    updated_at = now()
WHERE id = $1
RETURNING state;
`
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	var state domain.JobState
	if err := q.db.QueryRow(ctx, query, id, msg).Scan(&state); err != nil {
		return "", fmt.Errorf("fail job: %w", err)
	}
	return state, nil
}

// PruneCompleted deletes completed job rows older than retention. Failed rows
// are kept for inspection. Results of pruned jobs remain answerable through
// the result cache for as long as its TTL holds.
func (q *Queue) PruneCompleted(ctx context.Context, retention time.Duration) (int64, error) {
	query := `
DELETE FROM merge_jobs
WHERE state = 'completed' AND updated_at < now() - $1::interval;
`
	tag, err := q.db.Exec(ctx, query, retention.String())
	if err != nil {
		return 0, fmt.Errorf("prune completed jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}
