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

type ProductReadStore struct {
	db db.DBTX
}

func NewProductReadStore(db db.DBTX) *ProductReadStore {
	return &ProductReadStore{db: db}
}

const productViewColumns = `id, name, total_stock, available_stock, price, created_at, updated_at`

func (r *ProductReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	const query = `SELECT ` + productViewColumns + ` FROM products WHERE id = $1`

	view, err := scanProductView(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get product view by id", err)
	}
	return view, nil
}

func (r *ProductReadStore) List(ctx context.Context, page queries.Page) ([]*queries.ProductView, error) {
	const query = `SELECT ` + productViewColumns + ` FROM products
WHERE ` + keysetClause + `
ORDER BY created_at DESC, id DESC
LIMIT $1`

	limit, afterAt, afterID := keysetArgs(page)
	rows, err := r.db.Query(ctx, query, limit, afterAt, afterID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products", err)
	}
	defer rows.Close()

	views := make([]*queries.ProductView, 0, limit)
	for rows.Next() {
		view, err := scanProductView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan product view", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to list products", err)
	}
	return views, nil
}

func scanProductView(row pgx.Row) (*queries.ProductView, error) {
	var (
		v                    queries.ProductView
		price                pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&v.ID, &v.Name, &v.TotalStock, &v.AvailableStock, &price, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	amount, err := pgconv.DecimalFromNumeric(price)
	if err != nil {
		return nil, err
	}
	v.Price = amount
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &v, nil
}
