// Package memstore is the in-process persistence driver. It offers the same
// transactional guarantees as the Postgres driver within one process: rows are
// locked per entity until the unit of work ends, writes are staged and applied
// in a single step on commit, and a failed unit of work leaves no trace.
package memstore

import (
	"sync"

	"stock-hold-service/internal/domain/hold"
	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/domain/product"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/lockmap"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type table string

const (
	tableProducts table = "products"
	tableHolds    table = "holds"
	tableOrders   table = "orders"
)

type rowKey struct {
	table table
	id    uuid.UUID
}

type Store struct {
	mu          sync.RWMutex
	products    map[uuid.UUID]*product.Product
	holds       map[uuid.UUID]*hold.Hold
	orders      map[uuid.UUID]*order.Order
	orderByHold map[uuid.UUID]uuid.UUID
	jobs        map[uuid.UUID]*shared.Job
	// finished holds done and failed job ids, oldest first.
	finished       []uuid.UUID
	finishedToKeep int

	rows   *lockmap.Map[rowKey]
	leases *lockmap.Map[string]
	clock  clock.Clock
}

// DefaultFinishedJobs is how many done or failed jobs a Store keeps for
// inspection before dropping the oldest.
const DefaultFinishedJobs = 1000

type Option func(*Store)

// WithFinishedJobs bounds how many done or failed jobs stay in memory.
func WithFinishedJobs(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.finishedToKeep = n
		}
	}
}

func New(clk clock.Clock, opts ...Option) *Store {
	s := &Store{
		products:    make(map[uuid.UUID]*product.Product),
		holds:       make(map[uuid.UUID]*hold.Hold),
		orders:      make(map[uuid.UUID]*order.Order),
		orderByHold: make(map[uuid.UUID]uuid.UUID),
		jobs:        make(map[uuid.UUID]*shared.Job),
		rows:        lockmap.New[rowKey](),
		leases:      lockmap.New[string](),
		clock:       clk,

		finishedToKeep: DefaultFinishedJobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ProductReads() *ProductReadStore { return &ProductReadStore{s: s} }
func (s *Store) HoldReads() *HoldReadStore       { return &HoldReadStore{s: s} }
func (s *Store) OrderReads() *OrderReadStore     { return &OrderReadStore{s: s} }
func (s *Store) JobQueue() *JobQueue             { return &JobQueue{s: s} }
func (s *Store) Leases() *LeaseManager           { return &LeaseManager{s: s} }

func (s *Store) commit(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range tx.products {
		s.products[id] = p
	}
	for id, h := range tx.holds {
		s.holds[id] = h
	}
	for id, o := range tx.orders {
		s.orders[id] = o
		s.orderByHold[o.HoldID()] = id
	}
	for i := range tx.jobs {
		job := tx.jobs[i]
		s.jobs[job.ID] = &job
	}
}
