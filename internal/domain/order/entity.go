package order

import (
	"strings"
	"time"

	"stock-hold-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrOrderNotPending  = errs.Category("order is not pending", errs.ErrInvalidState)
	ErrInvalidOutcome   = errs.Category("payment outcome must be paid or failed", errs.ErrValidation)
	ErrEmptyEventID     = errs.Category("payment event id cannot be empty", errs.ErrValidation)
	ErrInvalidOrderHold = errs.Category("order requires a hold", errs.ErrValidation)
)

type Order struct {
	id                    uuid.UUID
	holdID                uuid.UUID
	status                Status
	paymentIdempotencyKey *string
	createdAt             time.Time
	updatedAt             time.Time
}

func NewOrder(holdID uuid.UUID, now time.Time) (*Order, error) {
	if holdID == uuid.Nil {
		return nil, ErrInvalidOrderHold
	}
	return &Order{
		id:        uuid.New(),
		holdID:    holdID,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructOrder(id, holdID uuid.UUID, status Status, paymentIdempotencyKey *string, createdAt, updatedAt time.Time) *Order {
	return &Order{
		id:                    id,
		holdID:                holdID,
		status:                status,
		paymentIdempotencyKey: paymentIdempotencyKey,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// AlreadyApplied reports whether eventID is the payment event that resolved
// this order.
func (o *Order) AlreadyApplied(eventID string) bool {
	return o.paymentIdempotencyKey != nil && *o.paymentIdempotencyKey == eventID
}

// ApplyPayment moves a pending order to its terminal status and records the
// event that did it.
func (o *Order) ApplyPayment(eventID string, outcome PaymentOutcome, now time.Time) error {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return ErrEmptyEventID
	}
	if !outcome.IsValid() {
		return ErrInvalidOutcome
	}
	if o.status != StatusPending {
		return ErrOrderNotPending
	}
	o.status = outcome.TargetStatus()
	o.paymentIdempotencyKey = &eventID
	o.updatedAt = now
	return nil
}

func (o *Order) ID() uuid.UUID                  { return o.id }
func (o *Order) HoldID() uuid.UUID              { return o.holdID }
func (o *Order) Status() Status                 { return o.status }
func (o *Order) PaymentIdempotencyKey() *string { return o.paymentIdempotencyKey }
func (o *Order) CreatedAt() time.Time           { return o.createdAt }
func (o *Order) UpdatedAt() time.Time           { return o.updatedAt }

func (o *Order) Clone() *Order {
	c := *o
	return &c
}
