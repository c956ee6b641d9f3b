package shared

import (
	"context"

	"stock-hold-service/internal/domain/hold"
	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/domain/product"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within runs fn in a single write transaction. Row locks taken through
	// the *ForUpdate methods are held until fn returns; a non-nil error rolls
	// everything back.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Products() ProductRepository
	Holds() HoldRepository
	Orders() OrderRepository
	Jobs() JobRepository
}

type ProductRepository interface {
	Create(ctx context.Context, p *product.Product) error
	FindForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error)
	UpdateStock(ctx context.Context, p *product.Product) error
}

type HoldRepository interface {
	Create(ctx context.Context, h *hold.Hold) error
	FindForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error)
	// FindUnreleasedForUpdate locks the hold only while released_at is NULL and
	// reports NOT_FOUND otherwise.
	FindUnreleasedForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error)
	Update(ctx context.Context, h *hold.Hold) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
}

// JobRepository enqueues deferred work in the same transaction as the state
// change that requires it.
type JobRepository interface {
	Enqueue(ctx context.Context, job NewJob) (uuid.UUID, error)
}
