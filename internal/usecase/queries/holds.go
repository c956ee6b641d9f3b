package queries

import (
	"context"
	"time"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrHoldNotFound = errs.Category("hold not found", errs.ErrNotFound)

type HoldReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*HoldView, error)
	List(ctx context.Context, page Page) ([]*HoldView, error)
}

type HoldQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*HoldView, error)
	List(ctx context.Context, cursor *Cursor, limit int) ([]*HoldView, *Cursor, error)
}

type holdQueriesImpl struct {
	store HoldReadStore
	clock clock.Clock
}

func NewHoldQueries(store HoldReadStore, clk clock.Clock) HoldQueries {
	return &holdQueriesImpl{store: store, clock: clk}
}

func (q *holdQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*HoldView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	view.resolveState(q.clock.Now())
	return view, nil
}

func (q *holdQueriesImpl) List(ctx context.Context, cursor *Cursor, limit int) ([]*HoldView, *Cursor, error) {
	page, err := pageFor(cursor, limit)
	if err != nil {
		return nil, nil, err
	}
	items, err := q.store.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	items, next := trimPage(items, limit, func(v *HoldView) (time.Time, uuid.UUID) { return v.CreatedAt, v.ID })

	now := q.clock.Now()
	for _, v := range items {
		v.resolveState(now)
	}
	return items, next, nil
}
