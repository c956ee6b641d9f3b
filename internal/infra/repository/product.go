package repository

import (
	"context"

	"stock-hold-service/internal/domain/product"
	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/infra/db"
	"stock-hold-service/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductRepository struct {
	db db.DBTX
}

func NewProductRepository(db db.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	const stmt = `
INSERT INTO products (id, name, total_stock, available_stock, price, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, stmt,
		p.ID(),
		p.Name(),
		p.TotalStock(),
		p.AvailableStock(),
		pgconv.DecimalToNumeric(p.Price()),
		p.CreatedAt(),
		p.UpdatedAt(),
	)
	if err != nil {
		return wrapPgErr("failed to create product", err)
	}
	return nil
}

func (r *ProductRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	const query = `
SELECT id, name, total_stock, available_stock, price, created_at, updated_at
FROM products
WHERE id = $1
FOR UPDATE`

	var (
		pid              uuid.UUID
		name             string
		total, available int
		price            pgtype.Numeric
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&pid, &name, &total, &available, &price, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NotFound("product not found")
		}
		return nil, infra.WrapRepoErr("failed to lock product", err)
	}

	amount, err := pgconv.DecimalFromNumeric(price)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode product price", err)
	}
	return product.ReconstructProduct(pid, name, total, available, amount,
		pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt)), nil
}

func (r *ProductRepository) UpdateStock(ctx context.Context, p *product.Product) error {
	const stmt = `UPDATE products SET available_stock = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, stmt, p.ID(), p.AvailableStock(), p.UpdatedAt())
	if err != nil {
		return wrapPgErr("failed to update product stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("product not found")
	}
	return nil
}
