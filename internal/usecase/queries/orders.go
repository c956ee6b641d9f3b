package queries

import (
	"context"
	"time"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.Category("order not found", errs.ErrNotFound)

type OrderReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	List(ctx context.Context, page Page) ([]*OrderView, error)
}

type OrderQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	List(ctx context.Context, cursor *Cursor, limit int) ([]*OrderView, *Cursor, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
}

func NewOrderQueries(store OrderReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *orderQueriesImpl) List(ctx context.Context, cursor *Cursor, limit int) ([]*OrderView, *Cursor, error) {
	page, err := pageFor(cursor, limit)
	if err != nil {
		return nil, nil, err
	}
	items, err := q.store.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	items, next := trimPage(items, limit, func(v *OrderView) (time.Time, uuid.UUID) { return v.CreatedAt, v.ID })
	return items, next, nil
}
