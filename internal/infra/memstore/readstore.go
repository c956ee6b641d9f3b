package memstore

import (
	"context"
	"sort"
	"time"

	"stock-hold-service/internal/domain/hold"
	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/domain/product"
	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/usecase/queries"

	"github.com/google/uuid"
)

// Keyset comparisons use microseconds, the precision cursors carry.
func keyBefore(createdAt time.Time, id uuid.UUID, after *queries.PageKey) bool {
	if after == nil {
		return true
	}
	a, b := createdAt.Truncate(time.Microsecond), after.CreatedAt.Truncate(time.Microsecond)
	if a.Equal(b) {
		return id.String() < after.ID.String()
	}
	return a.Before(b)
}

// newestFirst orders by (created_at DESC, id DESC) and applies the page.
func newestFirst[T any](rows []T, key func(T) (time.Time, uuid.UUID), page queries.Page) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		createdAt, id := key(r)
		if keyBefore(createdAt, id, page.After) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, idi := key(out[i])
		tj, idj := key(out[j])
		ti, tj = ti.Truncate(time.Microsecond), tj.Truncate(time.Microsecond)
		if ti.Equal(tj) {
			return idi.String() > idj.String()
		}
		return ti.After(tj)
	})
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out
}

type ProductReadStore struct{ s *Store }

func (r *ProductReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.ProductView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, infra.NotFound("product not found")
	}
	return productView(p), nil
}

func (r *ProductReadStore) List(_ context.Context, page queries.Page) ([]*queries.ProductView, error) {
	r.s.mu.RLock()
	views := make([]*queries.ProductView, 0, len(r.s.products))
	for _, p := range r.s.products {
		views = append(views, productView(p))
	}
	r.s.mu.RUnlock()
	return newestFirst(views, func(v *queries.ProductView) (time.Time, uuid.UUID) { return v.CreatedAt, v.ID }, page), nil
}

func productView(p *product.Product) *queries.ProductView {
	return &queries.ProductView{
		ID:             p.ID(),
		Name:           p.Name(),
		TotalStock:     p.TotalStock(),
		AvailableStock: p.AvailableStock(),
		Price:          p.Price(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

type HoldReadStore struct{ s *Store }

func (r *HoldReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.HoldView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	h, ok := r.s.holds[id]
	if !ok {
		return nil, infra.NotFound("hold not found")
	}
	return holdView(h), nil
}

func (r *HoldReadStore) List(_ context.Context, page queries.Page) ([]*queries.HoldView, error) {
	r.s.mu.RLock()
	views := make([]*queries.HoldView, 0, len(r.s.holds))
	for _, h := range r.s.holds {
		views = append(views, holdView(h))
	}
	r.s.mu.RUnlock()
	return newestFirst(views, func(v *queries.HoldView) (time.Time, uuid.UUID) { return v.CreatedAt, v.ID }, page), nil
}

// FindExpiredUnreleased returns the oldest-expiring holds first.
func (r *HoldReadStore) FindExpiredUnreleased(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	expired := make([]*hold.Hold, 0)
	for _, h := range r.s.holds {
		if h.IsExpired(now) && !h.IsReleased() && !h.IsUsed() {
			expired = append(expired, h)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].HoldExpiresAt().Before(expired[j].HoldExpiresAt())
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	ids := make([]uuid.UUID, len(expired))
	for i, h := range expired {
		ids[i] = h.ID()
	}
	return ids, nil
}

func holdView(h *hold.Hold) *queries.HoldView {
	return &queries.HoldView{
		ID:            h.ID(),
		ProductID:     h.ProductID(),
		Quantity:      h.Quantity(),
		HoldExpiresAt: h.HoldExpiresAt(),
		ReleasedAt:    copyTime(h.ReleasedAt()),
		UsedAt:        copyTime(h.UsedAt()),
		CreatedAt:     h.CreatedAt(),
	}
}

type OrderReadStore struct{ s *Store }

func (r *OrderReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, infra.NotFound("order not found")
	}
	return orderView(o), nil
}

func (r *OrderReadStore) List(_ context.Context, page queries.Page) ([]*queries.OrderView, error) {
	r.s.mu.RLock()
	views := make([]*queries.OrderView, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		views = append(views, orderView(o))
	}
	r.s.mu.RUnlock()
	return newestFirst(views, func(v *queries.OrderView) (time.Time, uuid.UUID) { return v.CreatedAt, v.ID }, page), nil
}

func orderView(o *order.Order) *queries.OrderView {
	var key *string
	if k := o.PaymentIdempotencyKey(); k != nil {
		v := *k
		key = &v
	}
	return &queries.OrderView{
		ID:                    o.ID(),
		HoldID:                o.HoldID(),
		Status:                o.Status().String(),
		PaymentIdempotencyKey: key,
		CreatedAt:             o.CreatedAt(),
		UpdatedAt:             o.UpdatedAt(),
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
