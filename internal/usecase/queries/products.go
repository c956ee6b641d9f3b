package queries

import (
	"context"
	"log/slog"
	"time"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errs.Category("product not found", errs.ErrNotFound)
	ErrInvalidCursor   = errs.Category("invalid cursor", errs.ErrValidation)
)

type ProductReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
	List(ctx context.Context, page Page) ([]*ProductView, error)
}

// ProductCache is a read-through cache in front of ProductReadStore.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*ProductView, bool, error)
	Set(ctx context.Context, view *ProductView, ttl time.Duration) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type ProductQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
	List(ctx context.Context, cursor *Cursor, limit int) ([]*ProductView, *Cursor, error)
}

type productQueriesImpl struct {
	store ProductReadStore
	cache ProductCache
	ttl   time.Duration
	log   *slog.Logger
}

func NewProductQueries(store ProductReadStore, cache ProductCache, cfg config.CacheConfig, log *slog.Logger) ProductQueries {
	return &productQueriesImpl{store: store, cache: cache, ttl: cfg.TTL, log: log}
}

func (q *productQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	if q.cache != nil {
		view, hit, err := q.cache.Get(ctx, id)
		if err != nil {
			q.log.Warn("product cache read failed", "product_id", id, "error", err)
		} else if hit {
			return view, nil
		}
	}

	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if q.cache != nil {
		if err := q.cache.Set(ctx, view, q.ttl); err != nil {
			q.log.Warn("product cache write failed", "product_id", id, "error", err)
		}
	}
	return view, nil
}

func (q *productQueriesImpl) List(ctx context.Context, cursor *Cursor, limit int) ([]*ProductView, *Cursor, error) {
	page, err := pageFor(cursor, limit)
	if err != nil {
		return nil, nil, err
	}
	items, err := q.store.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	items, next := trimPage(items, limit, func(v *ProductView) (time.Time, uuid.UUID) { return v.CreatedAt, v.ID })
	return items, next, nil
}
