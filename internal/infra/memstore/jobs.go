package memstore

import (
	"context"
	"sort"
	"time"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
)

// JobQueue implements shared.JobQueue over the store's jobs map.
type JobQueue struct{ s *Store }

func (q *JobQueue) ClaimDue(_ context.Context, now time.Time, limit int, lease time.Duration) ([]shared.Job, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	due := make([]*shared.Job, 0)
	for _, job := range q.s.jobs {
		if claimable(job, now) {
			due = append(due, job)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].RunAt.Before(due[j].RunAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	lockedUntil := now.Add(lease)
	claimed := make([]shared.Job, 0, len(due))
	for _, job := range due {
		job.Status = shared.JobStatusInProgress
		job.Attempts++
		until := lockedUntil
		job.LockedUntil = &until
		job.UpdatedAt = now
		claimed = append(claimed, cloneJob(job))
	}
	return claimed, nil
}

func claimable(job *shared.Job, now time.Time) bool {
	switch job.Status {
	case shared.JobStatusQueued:
		return !job.RunAt.After(now)
	case shared.JobStatusInProgress:
		return job.LockedUntil != nil && job.LockedUntil.Before(now)
	default:
		return false
	}
}

func (q *JobQueue) Complete(_ context.Context, id uuid.UUID, now time.Time) error {
	return q.finish(id, func(job *shared.Job) {
		job.Status = shared.JobStatusDone
		job.LockedUntil = nil
		job.UpdatedAt = now
	})
}

func (q *JobQueue) Retry(_ context.Context, id uuid.UUID, runAt time.Time, lastErr string, now time.Time) error {
	return q.update(id, func(job *shared.Job) {
		job.Status = shared.JobStatusQueued
		job.RunAt = runAt
		job.LastError = &lastErr
		job.LockedUntil = nil
		job.UpdatedAt = now
	})
}

func (q *JobQueue) Fail(_ context.Context, id uuid.UUID, lastErr string, now time.Time) error {
	return q.finish(id, func(job *shared.Job) {
		job.Status = shared.JobStatusFailed
		job.LastError = &lastErr
		job.LockedUntil = nil
		job.UpdatedAt = now
	})
}

func (q *JobQueue) update(id uuid.UUID, fn func(job *shared.Job)) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	job, ok := q.s.jobs[id]
	if !ok {
		return infra.NotFound("job not found")
	}
	fn(job)
	return nil
}

// finish moves a job into a terminal state and evicts the oldest finished
// jobs beyond the store's retention.
func (q *JobQueue) finish(id uuid.UUID, fn func(job *shared.Job)) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	job, ok := q.s.jobs[id]
	if !ok {
		return infra.NotFound("job not found")
	}
	wasFinished := isFinished(job.Status)
	fn(job)
	if wasFinished {
		return nil
	}

	q.s.finished = append(q.s.finished, id)
	for len(q.s.finished) > q.s.finishedToKeep {
		delete(q.s.jobs, q.s.finished[0])
		q.s.finished = q.s.finished[1:]
	}
	return nil
}

func isFinished(status shared.JobStatus) bool {
	return status == shared.JobStatusDone || status == shared.JobStatusFailed
}

// Snapshot returns copies of all jobs of the given kind, oldest run_at first.
// An empty kind matches every job.
func (q *JobQueue) Snapshot(kind string) []shared.Job {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	out := make([]shared.Job, 0, len(q.s.jobs))
	for _, job := range q.s.jobs {
		if kind == "" || job.Kind == kind {
			out = append(out, cloneJob(job))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunAt.Before(out[j].RunAt) })
	return out
}

func cloneJob(job *shared.Job) shared.Job {
	c := *job
	c.Payload = append([]byte(nil), job.Payload...)
	if job.LastError != nil {
		v := *job.LastError
		c.LastError = &v
	}
	c.LockedUntil = copyTime(job.LockedUntil)
	return c
}
