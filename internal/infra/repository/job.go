package repository

import (
	"context"

	"stock-hold-service/internal/infra/db"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
)

// JobRepository writes jobs inside the caller's transaction.
type JobRepository struct {
	db    db.DBTX
	clock clock.Clock
}

func NewJobRepository(db db.DBTX, clk clock.Clock) *JobRepository {
	return &JobRepository{db: db, clock: clk}
}

func (r *JobRepository) Enqueue(ctx context.Context, job shared.NewJob) (uuid.UUID, error) {
	const stmt = `
INSERT INTO jobs (id, kind, payload, run_at, attempts, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, $5, $6, $6)`

	payload := job.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	id := uuid.New()
	now := r.clock.Now()
	if _, err := r.db.Exec(ctx, stmt, id, job.Kind, payload, job.RunAt, string(shared.JobStatusQueued), now); err != nil {
		return uuid.Nil, wrapPgErr("failed to enqueue job", err)
	}
	return id, nil
}
