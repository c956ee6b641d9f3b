package readstore

import (
	"context"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/infra/db"
	"stock-hold-service/internal/pkg/pgconv"
	"stock-hold-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

const orderViewColumns = `id, hold_id, status, payment_idempotency_key, created_at, updated_at`

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	const query = `SELECT ` + orderViewColumns + ` FROM orders WHERE id = $1`

	view, err := scanOrderView(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get order view by id", err)
	}
	return view, nil
}

func (r *OrderReadStore) List(ctx context.Context, page queries.Page) ([]*queries.OrderView, error) {
	const query = `SELECT ` + orderViewColumns + ` FROM orders
WHERE ` + keysetClause + `
ORDER BY created_at DESC, id DESC
LIMIT $1`

	limit, afterAt, afterID := keysetArgs(page)
	rows, err := r.db.Query(ctx, query, limit, afterAt, afterID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	views := make([]*queries.OrderView, 0, limit)
	for rows.Next() {
		view, err := scanOrderView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan order view", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	return views, nil
}

func scanOrderView(row pgx.Row) (*queries.OrderView, error) {
	var (
		v                    queries.OrderView
		key                  pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&v.ID, &v.HoldID, &v.Status, &key, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	v.PaymentIdempotencyKey = pgconv.StringPtrFromPgtype(key)
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &v, nil
}
