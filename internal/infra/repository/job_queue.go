package repository

import (
	"context"
	"time"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/infra/db"
	"stock-hold-service/internal/pkg/pgconv"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobQueue is the consumer side of the jobs table. Claims use
// FOR UPDATE SKIP LOCKED so concurrent workers never lease the same row.
type JobQueue struct {
	pool *pgxpool.Pool
}

func NewJobQueue(pool *pgxpool.Pool) *JobQueue {
	return &JobQueue{pool: pool}
}

const jobColumns = `id, kind, payload, run_at, attempts, status, last_error, locked_until, created_at, updated_at`

func (q *JobQueue) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]shared.Job, error) {
	const stmt = `
WITH due AS (
	SELECT id FROM jobs
	WHERE (status = 'queued' AND run_at <= $1)
	   OR (status = 'in_progress' AND locked_until < $1)
	ORDER BY run_at
	LIMIT $2
	FOR UPDATE SKIP LOCKED
)
UPDATE jobs j
SET status = 'in_progress', attempts = j.attempts + 1, locked_until = $3, updated_at = $1
FROM due
WHERE j.id = due.id
RETURNING j.id, j.kind, j.payload, j.run_at, j.attempts, j.status, j.last_error, j.locked_until, j.created_at, j.updated_at`

	return db.RunInTx(ctx, q.pool, func(tx pgx.Tx) ([]shared.Job, error) {
		rows, err := tx.Query(ctx, stmt, now, limit, now.Add(lease))
		if err != nil {
			return nil, infra.WrapRepoErr("failed to claim jobs", err)
		}
		defer rows.Close()

		var jobs []shared.Job
		for rows.Next() {
			job, err := scanJob(rows)
			if err != nil {
				return nil, infra.WrapRepoErr("failed to scan job", err)
			}
			jobs = append(jobs, job)
		}
		if err := rows.Err(); err != nil {
			return nil, infra.WrapRepoErr("failed to iterate jobs", err)
		}
		return jobs, nil
	})
}

func (q *JobQueue) Complete(ctx context.Context, id uuid.UUID, now time.Time) error {
	const stmt = `UPDATE jobs SET status = 'done', locked_until = NULL, updated_at = $2 WHERE id = $1`
	return q.exec(ctx, "failed to complete job", stmt, id, now)
}

func (q *JobQueue) Retry(ctx context.Context, id uuid.UUID, runAt time.Time, lastErr string, now time.Time) error {
	const stmt = `
UPDATE jobs SET status = 'queued', run_at = $2, last_error = $3, locked_until = NULL, updated_at = $4
WHERE id = $1`
	return q.exec(ctx, "failed to reschedule job", stmt, id, runAt, lastErr, now)
}

func (q *JobQueue) Fail(ctx context.Context, id uuid.UUID, lastErr string, now time.Time) error {
	const stmt = `UPDATE jobs SET status = 'failed', last_error = $2, locked_until = NULL, updated_at = $3 WHERE id = $1`
	return q.exec(ctx, "failed to mark job failed", stmt, id, lastErr, now)
}

// FindByKind lists jobs of one kind, oldest run_at first.
func (q *JobQueue) FindByKind(ctx context.Context, kind string) ([]shared.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE kind = $1 ORDER BY run_at`

	rows, err := q.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list jobs", err)
	}
	defer rows.Close()

	var jobs []shared.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan job", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (q *JobQueue) exec(ctx context.Context, msg, stmt string, args ...any) error {
	tag, err := q.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return infra.WrapRepoErr(msg, err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("job not found")
	}
	return nil
}

func scanJob(row pgx.Row) (shared.Job, error) {
	var (
		job                  shared.Job
		status               string
		lastError            pgtype.Text
		lockedUntil          pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
		runAt                pgtype.Timestamptz
	)
	err := row.Scan(&job.ID, &job.Kind, &job.Payload, &runAt, &job.Attempts, &status,
		&lastError, &lockedUntil, &createdAt, &updatedAt)
	if err != nil {
		return shared.Job{}, err
	}
	job.Status = shared.JobStatus(status)
	job.RunAt = pgconv.TimeFromPgtype(runAt)
	job.LastError = pgconv.StringPtrFromPgtype(lastError)
	job.LockedUntil = pgconv.TimePtrFromPgtype(lockedUntil)
	job.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	job.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return job, nil
}
