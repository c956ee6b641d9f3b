package shared

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobKindReleaseHold  = "hold.release"
	JobKindPublishEvent = "event.publish"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

type NewJob struct {
	Kind    string
	Payload []byte
	RunAt   time.Time
}

type Job struct {
	ID          uuid.UUID
	Kind        string
	Payload     []byte
	RunAt       time.Time
	Attempts    int
	Status      JobStatus
	LastError   *string
	LockedUntil *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReleaseHoldPayload is the body of a hold.release job.
type ReleaseHoldPayload struct {
	HoldID uuid.UUID `json:"hold_id"`
}

const (
	EventHoldCreated   = "hold.created"
	EventHoldReleased  = "hold.released"
	EventOrderCreated  = "order.created"
	EventOrderResolved = "order.resolved"
	EventStockChanged  = "product.stock_changed"
)

// Event is the envelope stored in event.publish jobs and written to the broker.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        json.RawMessage `json:"data"`
}

// JobQueue is the consumer side of the jobs table.
type JobQueue interface {
	// ClaimDue leases up to limit jobs whose run_at has passed. Jobs whose
	// lease expired are claimable again.
	ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Job, error)
	Complete(ctx context.Context, id uuid.UUID, now time.Time) error
	Retry(ctx context.Context, id uuid.UUID, runAt time.Time, lastErr string, now time.Time) error
	Fail(ctx context.Context, id uuid.UUID, lastErr string, now time.Time) error
}

// LeaseManager grants a named exclusive lease that spans processes.
type LeaseManager interface {
	TryAcquire(ctx context.Context, name string) (release func(), acquired bool, err error)
}

// ProductCacheInvalidator drops cached product reads after a stock change.
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, productID uuid.UUID) error
}
