package repository

import (
	"context"

	"stock-hold-service/internal/domain/hold"
	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/infra/db"
	"stock-hold-service/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type HoldRepository struct {
	db db.DBTX
}

func NewHoldRepository(db db.DBTX) *HoldRepository {
	return &HoldRepository{db: db}
}

const holdColumns = `id, product_id, quantity, hold_expires_at, released_at, used_at, created_at`

func (r *HoldRepository) Create(ctx context.Context, h *hold.Hold) error {
	const stmt = `
INSERT INTO holds (` + holdColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, stmt,
		h.ID(),
		h.ProductID(),
		h.Quantity(),
		h.HoldExpiresAt(),
		pgconv.TimePtrToPgtype(h.ReleasedAt()),
		pgconv.TimePtrToPgtype(h.UsedAt()),
		h.CreatedAt(),
	)
	if err != nil {
		return wrapPgErr("failed to create hold", err)
	}
	return nil
}

func (r *HoldRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	const query = `SELECT ` + holdColumns + ` FROM holds WHERE id = $1 FOR UPDATE`
	return r.lockOne(ctx, query, id)
}

// The released_at predicate is rechecked after the lock wait, so a caller
// that queued behind a concurrent release gets NOT_FOUND.
func (r *HoldRepository) FindUnreleasedForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	const query = `SELECT ` + holdColumns + ` FROM holds WHERE id = $1 AND released_at IS NULL FOR UPDATE`
	return r.lockOne(ctx, query, id)
}

func (r *HoldRepository) lockOne(ctx context.Context, query string, id uuid.UUID) (*hold.Hold, error) {
	h, err := scanHold(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NotFound("hold not found")
		}
		return nil, infra.WrapRepoErr("failed to lock hold", err)
	}
	return h, nil
}

func (r *HoldRepository) Update(ctx context.Context, h *hold.Hold) error {
	const stmt = `UPDATE holds SET released_at = $2, used_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, stmt, h.ID(), pgconv.TimePtrToPgtype(h.ReleasedAt()), pgconv.TimePtrToPgtype(h.UsedAt()))
	if err != nil {
		return wrapPgErr("failed to update hold", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("hold not found")
	}
	return nil
}

func scanHold(row pgx.Row) (*hold.Hold, error) {
	var (
		id, productID        uuid.UUID
		quantity             int
		expiresAt, createdAt pgtype.Timestamptz
		releasedAt, usedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&id, &productID, &quantity, &expiresAt, &releasedAt, &usedAt, &createdAt); err != nil {
		return nil, err
	}
	return hold.ReconstructHold(id, productID, quantity,
		pgconv.TimeFromPgtype(expiresAt),
		pgconv.TimePtrFromPgtype(releasedAt),
		pgconv.TimePtrFromPgtype(usedAt),
		pgconv.TimeFromPgtype(createdAt)), nil
}
