package repository

import (
	"context"

	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/infra/db"
	"stock-hold-service/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(db db.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	const stmt = `
INSERT INTO orders (id, hold_id, status, payment_idempotency_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, stmt,
		o.ID(),
		o.HoldID(),
		o.Status().String(),
		pgconv.StringPtrToPgtype(o.PaymentIdempotencyKey()),
		o.CreatedAt(),
		o.UpdatedAt(),
	)
	if err != nil {
		return wrapPgErr("failed to create order", err)
	}
	return nil
}

func (r *OrderRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	const query = `
SELECT id, hold_id, status, payment_idempotency_key, created_at, updated_at
FROM orders
WHERE id = $1
FOR UPDATE`

	var (
		oid, holdID          uuid.UUID
		status               string
		key                  pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&oid, &holdID, &status, &key, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NotFound("order not found")
		}
		return nil, infra.WrapRepoErr("failed to lock order", err)
	}
	return order.ReconstructOrder(oid, holdID, order.Status(status), pgconv.StringPtrFromPgtype(key),
		pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt)), nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	const stmt = `UPDATE orders SET status = $2, payment_idempotency_key = $3, updated_at = $4 WHERE id = $1`

	tag, err := r.db.Exec(ctx, stmt, o.ID(), o.Status().String(), pgconv.StringPtrToPgtype(o.PaymentIdempotencyKey()), o.UpdatedAt())
	if err != nil {
		return wrapPgErr("failed to update order", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("order not found")
	}
	return nil
}
