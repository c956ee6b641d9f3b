package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"stock-hold-service/internal/infra/memstore"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const holdTTL = 2 * time.Minute

type spyInvalidator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (s *spyInvalidator) Invalidate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return nil
}

func (s *spyInvalidator) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

type fixture struct {
	store    *memstore.Store
	clock    *clock.MockClock
	cache    *spyInvalidator
	products commands.ProductCommands
	holds    commands.HoldCommands
	orders   commands.OrderCommands
	payments commands.PaymentCommands
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewMockClock(baseTime)
	store := memstore.New(clk)
	cache := &spyInvalidator{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		store:    store,
		clock:    clk,
		cache:    cache,
		products: commands.NewProductCommands(store, clk, cache, log),
		holds:    commands.NewHoldCommands(store, clk, cache, log, config.HoldConfig{TTL: holdTTL}),
		orders:   commands.NewOrderCommands(store, clk, log),
		payments: commands.NewPaymentCommands(store, clk, log),
	}
}

func (f *fixture) createProduct(t *testing.T, stock int) uuid.UUID {
	t.Helper()
	id, err := f.products.CreateProduct(context.Background(), commands.CreateProductInput{
		Name:       "Limited sneaker",
		TotalStock: stock,
		Price:      decimal.RequireFromString("129.90"),
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) available(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	view, err := f.store.ProductReads().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return view.AvailableStock
}

func (f *fixture) createHold(t *testing.T, productID uuid.UUID, qty int) *commands.CreateHoldResult {
	t.Helper()
	res, err := f.holds.CreateHold(context.Background(), commands.CreateHoldInput{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
	return res
}

func (f *fixture) createOrder(t *testing.T, productID uuid.UUID) *commands.CreateOrderResult {
	t.Helper()
	h := f.createHold(t, productID, 1)
	res, err := f.orders.CreateOrder(context.Background(), h.HoldID)
	require.NoError(t, err)
	return res
}

func (f *fixture) jobs(kind string) []shared.Job {
	return f.store.JobQueue().Snapshot(kind)
}
