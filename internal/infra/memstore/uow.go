package memstore

import (
	"context"

	"stock-hold-service/internal/domain/hold"
	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/domain/product"
	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
)

// Within implements shared.UnitOfWork.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		store:    s,
		locks:    make(map[rowKey]func()),
		products: make(map[uuid.UUID]*product.Product),
		holds:    make(map[uuid.UUID]*hold.Hold),
		orders:   make(map[uuid.UUID]*order.Order),
	}
	defer tx.unlockAll()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

// memTx stages writes until commit. Staged values are private copies, so
// nothing a caller mutates is visible to other transactions before commit.
type memTx struct {
	store *Store
	locks map[rowKey]func()

	products map[uuid.UUID]*product.Product
	holds    map[uuid.UUID]*hold.Hold
	orders   map[uuid.UUID]*order.Order
	jobs     []shared.Job
}

func (tx *memTx) Products() shared.ProductRepository { return productRepo{tx: tx} }
func (tx *memTx) Holds() shared.HoldRepository       { return holdRepo{tx: tx} }
func (tx *memTx) Orders() shared.OrderRepository     { return orderRepo{tx: tx} }
func (tx *memTx) Jobs() shared.JobRepository         { return jobRepo{tx: tx} }

func (tx *memTx) lock(t table, id uuid.UUID) {
	key := rowKey{table: t, id: id}
	if _, held := tx.locks[key]; held {
		return
	}
	tx.locks[key] = tx.store.rows.Lock(key)
}

func (tx *memTx) isLocked(t table, id uuid.UUID) bool {
	_, ok := tx.locks[rowKey{table: t, id: id}]
	return ok
}

func (tx *memTx) unlockAll() {
	for key, unlock := range tx.locks {
		unlock()
		delete(tx.locks, key)
	}
}

var errRowNotLocked = infra.WrapRepoErr("row must be locked before update", nil)

type productRepo struct{ tx *memTx }

func (r productRepo) Create(_ context.Context, p *product.Product) error {
	r.tx.lock(tableProducts, p.ID())
	if _, staged := r.tx.products[p.ID()]; staged {
		return infra.WrapRepoErr("product already exists", nil, infra.KindDuplicateKey)
	}
	r.tx.store.mu.RLock()
	_, exists := r.tx.store.products[p.ID()]
	r.tx.store.mu.RUnlock()
	if exists {
		return infra.WrapRepoErr("product already exists", nil, infra.KindDuplicateKey)
	}
	r.tx.products[p.ID()] = p.Clone()
	return nil
}

func (r productRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.tx.lock(tableProducts, id)
	if p, ok := r.tx.products[id]; ok {
		return p.Clone(), nil
	}
	r.tx.store.mu.RLock()
	p, ok := r.tx.store.products[id]
	r.tx.store.mu.RUnlock()
	if !ok {
		return nil, infra.NotFound("product not found")
	}
	return p.Clone(), nil
}

func (r productRepo) UpdateStock(_ context.Context, p *product.Product) error {
	if !r.tx.isLocked(tableProducts, p.ID()) {
		return errRowNotLocked
	}
	r.tx.products[p.ID()] = p.Clone()
	return nil
}

type holdRepo struct{ tx *memTx }

func (r holdRepo) Create(_ context.Context, h *hold.Hold) error {
	r.tx.lock(tableHolds, h.ID())
	r.tx.store.mu.RLock()
	_, exists := r.tx.store.holds[h.ID()]
	r.tx.store.mu.RUnlock()
	if _, staged := r.tx.holds[h.ID()]; exists || staged {
		return infra.WrapRepoErr("hold already exists", nil, infra.KindDuplicateKey)
	}
	r.tx.holds[h.ID()] = h.Clone()
	return nil
}

func (r holdRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.tx.lock(tableHolds, id)
	if h, ok := r.tx.holds[id]; ok {
		return h.Clone(), nil
	}
	r.tx.store.mu.RLock()
	h, ok := r.tx.store.holds[id]
	r.tx.store.mu.RUnlock()
	if !ok {
		return nil, infra.NotFound("hold not found")
	}
	return h.Clone(), nil
}

func (r holdRepo) FindUnreleasedForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	h, err := r.FindForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.IsReleased() {
		return nil, infra.NotFound("unreleased hold not found")
	}
	return h, nil
}

func (r holdRepo) Update(_ context.Context, h *hold.Hold) error {
	if !r.tx.isLocked(tableHolds, h.ID()) {
		return errRowNotLocked
	}
	r.tx.holds[h.ID()] = h.Clone()
	return nil
}

type orderRepo struct{ tx *memTx }

func (r orderRepo) Create(_ context.Context, o *order.Order) error {
	r.tx.lock(tableOrders, o.ID())
	for _, staged := range r.tx.orders {
		if staged.HoldID() == o.HoldID() {
			return infra.WrapRepoErr("order for hold already exists", nil, infra.KindDuplicateKey)
		}
	}
	r.tx.store.mu.RLock()
	_, taken := r.tx.store.orderByHold[o.HoldID()]
	r.tx.store.mu.RUnlock()
	if taken {
		return infra.WrapRepoErr("order for hold already exists", nil, infra.KindDuplicateKey)
	}
	r.tx.orders[o.ID()] = o.Clone()
	return nil
}

func (r orderRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.tx.lock(tableOrders, id)
	if o, ok := r.tx.orders[id]; ok {
		return o.Clone(), nil
	}
	r.tx.store.mu.RLock()
	o, ok := r.tx.store.orders[id]
	r.tx.store.mu.RUnlock()
	if !ok {
		return nil, infra.NotFound("order not found")
	}
	return o.Clone(), nil
}

func (r orderRepo) Update(_ context.Context, o *order.Order) error {
	if !r.tx.isLocked(tableOrders, o.ID()) {
		return errRowNotLocked
	}
	r.tx.orders[o.ID()] = o.Clone()
	return nil
}

type jobRepo struct{ tx *memTx }

func (r jobRepo) Enqueue(_ context.Context, job shared.NewJob) (uuid.UUID, error) {
	now := r.tx.store.clock.Now()
	id := uuid.New()
	payload := make([]byte, len(job.Payload))
	copy(payload, job.Payload)
	r.tx.jobs = append(r.tx.jobs, shared.Job{
		ID:        id,
		Kind:      job.Kind,
		Payload:   payload,
		RunAt:     job.RunAt,
		Status:    shared.JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return id, nil
}
