package readstore

import (
	"context"
	"time"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/infra/db"
	"stock-hold-service/internal/pkg/pgconv"
	"stock-hold-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type HoldReadStore struct {
	db db.DBTX
}

func NewHoldReadStore(db db.DBTX) *HoldReadStore {
	return &HoldReadStore{db: db}
}

const holdViewColumns = `id, product_id, quantity, hold_expires_at, released_at, used_at, created_at`

func (r *HoldReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.HoldView, error) {
	const query = `SELECT ` + holdViewColumns + ` FROM holds WHERE id = $1`

	view, err := scanHoldView(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("hold not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get hold view by id", err)
	}
	return view, nil
}

func (r *HoldReadStore) List(ctx context.Context, page queries.Page) ([]*queries.HoldView, error) {
	const query = `SELECT ` + holdViewColumns + ` FROM holds
WHERE ` + keysetClause + `
ORDER BY created_at DESC, id DESC
LIMIT $1`

	limit, afterAt, afterID := keysetArgs(page)
	rows, err := r.db.Query(ctx, query, limit, afterAt, afterID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list holds", err)
	}
	defer rows.Close()

	views := make([]*queries.HoldView, 0, limit)
	for rows.Next() {
		view, err := scanHoldView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan hold view", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to list holds", err)
	}
	return views, nil
}

// FindExpiredUnreleased feeds the sweep. Used holds are excluded so their
// stock is never returned.
func (r *HoldReadStore) FindExpiredUnreleased(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	const query = `
SELECT id FROM holds
WHERE hold_expires_at < $1 AND released_at IS NULL AND used_at IS NULL
ORDER BY hold_expires_at
LIMIT $2`

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find expired holds", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan expired holds", err)
	}
	return ids, nil
}

func scanHoldView(row pgx.Row) (*queries.HoldView, error) {
	var (
		v                    queries.HoldView
		expiresAt, createdAt pgtype.Timestamptz
		releasedAt, usedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&v.ID, &v.ProductID, &v.Quantity, &expiresAt, &releasedAt, &usedAt, &createdAt); err != nil {
		return nil, err
	}
	v.HoldExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	v.ReleasedAt = pgconv.TimePtrFromPgtype(releasedAt)
	v.UsedAt = pgconv.TimePtrFromPgtype(usedAt)
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	return &v, nil
}
