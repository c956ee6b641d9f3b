package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -destination=../../mock/queriesmock/queries.go -package=queriesmock stock-hold-service/internal/usecase/queries HoldQueries,OrderQueries,ProductQueries

// ProductView represents read-optimized product data
type ProductView struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	TotalStock     int             `json:"total_stock"`
	AvailableStock int             `json:"available_stock"`
	Price          decimal.Decimal `json:"price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type HoldState string

const (
	HoldStateActive   HoldState = "active"
	HoldStateExpired  HoldState = "expired"
	HoldStateReleased HoldState = "released"
	HoldStateUsed     HoldState = "used"
)

// HoldView represents read-optimized hold data
type HoldView struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Quantity      int        `json:"quantity"`
	HoldExpiresAt time.Time  `json:"hold_expires_at"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	State         HoldState  `json:"state"`
}

// OrderView represents read-optimized order data
type OrderView struct {
	ID                    uuid.UUID `json:"id"`
	HoldID                uuid.UUID `json:"hold_id"`
	Status                string    `json:"status"`
	PaymentIdempotencyKey *string   `json:"payment_idempotency_key,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Page selects a keyset page ordered by (created_at DESC, id DESC).
// A nil After starts from the newest row.
type Page struct {
	After *PageKey
	Limit int
}

type PageKey struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// resolveState derives the lifecycle state shown to operators.
func (v *HoldView) resolveState(now time.Time) {
	switch {
	case v.UsedAt != nil:
		v.State = HoldStateUsed
	case v.ReleasedAt != nil:
		v.State = HoldStateReleased
	case v.HoldExpiresAt.Before(now):
		v.State = HoldStateExpired
	default:
		v.State = HoldStateActive
	}
}
