package hold

import (
	"time"

	"stock-hold-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity = errs.Category("hold quantity must be positive", errs.ErrValidation)
	ErrInvalidTTL      = errs.Category("hold ttl must be positive", errs.ErrValidation)
	ErrHoldExpired     = errs.Category("hold has expired", errs.ErrInvalidState)
	ErrHoldReleased    = errs.Category("hold has been released", errs.ErrInvalidState)
	ErrHoldAlreadyUsed = errs.Category("hold has already been used", errs.ErrInvalidState)
)

// Hold is a temporary claim on product stock. A hold ends either released
// (stock returned) or used (converted into an order), never both.
type Hold struct {
	id            uuid.UUID
	productID     uuid.UUID
	quantity      int
	holdExpiresAt time.Time
	releasedAt    *time.Time
	usedAt        *time.Time
	createdAt     time.Time
}

func NewHold(productID uuid.UUID, quantity int, ttl time.Duration, now time.Time) (*Hold, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &Hold{
		id:            uuid.New(),
		productID:     productID,
		quantity:      quantity,
		holdExpiresAt: now.Add(ttl),
		createdAt:     now,
	}, nil
}

func ReconstructHold(id, productID uuid.UUID, quantity int, holdExpiresAt time.Time, releasedAt, usedAt *time.Time, createdAt time.Time) *Hold {
	return &Hold{
		id:            id,
		productID:     productID,
		quantity:      quantity,
		holdExpiresAt: holdExpiresAt,
		releasedAt:    releasedAt,
		usedAt:        usedAt,
		createdAt:     createdAt,
	}
}

func (h *Hold) IsExpired(now time.Time) bool { return h.holdExpiresAt.Before(now) }
func (h *Hold) IsReleased() bool             { return h.releasedAt != nil }
func (h *Hold) IsUsed() bool                 { return h.usedAt != nil }

// Consume checks, in this order, expiry, release and prior use, then marks
// the hold used.
func (h *Hold) Consume(now time.Time) error {
	if h.IsExpired(now) {
		return ErrHoldExpired
	}
	if h.IsReleased() {
		return ErrHoldReleased
	}
	if h.IsUsed() {
		return ErrHoldAlreadyUsed
	}
	t := now
	h.usedAt = &t
	return nil
}

func (h *Hold) MarkReleased(now time.Time) error {
	if h.IsReleased() {
		return ErrHoldReleased
	}
	if h.IsUsed() {
		return ErrHoldAlreadyUsed
	}
	t := now
	h.releasedAt = &t
	return nil
}

func (h *Hold) ID() uuid.UUID            { return h.id }
func (h *Hold) ProductID() uuid.UUID     { return h.productID }
func (h *Hold) Quantity() int            { return h.quantity }
func (h *Hold) HoldExpiresAt() time.Time { return h.holdExpiresAt }
func (h *Hold) ReleasedAt() *time.Time   { return h.releasedAt }
func (h *Hold) UsedAt() *time.Time       { return h.usedAt }
func (h *Hold) CreatedAt() time.Time     { return h.createdAt }

func (h *Hold) Clone() *Hold {
	c := *h
	return &c
}
