package reclaim_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"stock-hold-service/internal/infra/memstore"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/reclaim"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseTime   = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))
	sweepCfg   = config.SweepConfig{Interval: time.Minute, BatchSize: 100}
)

type env struct {
	store    *memstore.Store
	clock    *clock.MockClock
	products commands.ProductCommands
	holds    commands.HoldCommands
	orders   commands.OrderCommands
}

func newEnv() *env {
	clk := clock.NewMockClock(baseTime)
	store := memstore.New(clk)
	return &env{
		store:    store,
		clock:    clk,
		products: commands.NewProductCommands(store, clk, nil, discardLog),
		holds:    commands.NewHoldCommands(store, clk, nil, discardLog, config.HoldConfig{TTL: 2 * time.Minute}),
		orders:   commands.NewOrderCommands(store, clk, discardLog),
	}
}

func (e *env) product(t *testing.T, stock int) uuid.UUID {
	t.Helper()
	id, err := e.products.CreateProduct(context.Background(), commands.CreateProductInput{Name: "Kettle", TotalStock: stock, Price: decimal.NewFromInt(30)})
	require.NoError(t, err)
	return id
}

func (e *env) hold(t *testing.T, productID uuid.UUID, qty int) uuid.UUID {
	t.Helper()
	res, err := e.holds.CreateHold(context.Background(), commands.CreateHoldInput{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
	return res.HoldID
}

func (e *env) available(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	v, err := e.store.ProductReads().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return v.AvailableStock
}

func TestSweeper_ReleasesOnlyExpiredUnusedHolds(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	productID := e.product(t, 20)

	expired1 := e.hold(t, productID, 2)
	expired2 := e.hold(t, productID, 3)
	used := e.hold(t, productID, 4)
	_, err := e.orders.CreateOrder(ctx, used)
	require.NoError(t, err)

	e.clock.Add(3 * time.Minute)
	fresh := e.hold(t, productID, 5)
	assert.Equal(t, 6, e.available(t, productID))

	sweeper := reclaim.NewSweeper(e.store.HoldReads(), e.holds, e.store.Leases(), e.clock, discardLog, sweepCfg)
	res, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 2, res.Released)
	assert.Zero(t, res.Failed)

	// 6 + 2 + 3; the used hold's 4 stay sold and the fresh hold's 5 stay held
	assert.Equal(t, 11, e.available(t, productID))

	for _, id := range []uuid.UUID{expired1, expired2} {
		v, err := e.store.HoldReads().FindByID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, v.ReleasedAt)
	}
	for _, id := range []uuid.UUID{used, fresh} {
		v, err := e.store.HoldReads().FindByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, v.ReleasedAt)
	}

	again, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Scanned)
	assert.Equal(t, 11, e.available(t, productID))
}

type flakyReleaser struct {
	inner commands.HoldCommands
	fail  uuid.UUID
}

func (f flakyReleaser) ReleaseHold(ctx context.Context, id uuid.UUID) (*commands.ReleaseHoldResult, error) {
	if id == f.fail {
		return nil, errors.New("lock timeout")
	}
	return f.inner.ReleaseHold(ctx, id)
}

func TestSweeper_IsolatesPerHoldFailures(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	productID := e.product(t, 10)

	bad := e.hold(t, productID, 1)
	e.clock.Add(time.Second)
	good := e.hold(t, productID, 2)
	e.clock.Add(5 * time.Minute)

	sweeper := reclaim.NewSweeper(e.store.HoldReads(), flakyReleaser{inner: e.holds, fail: bad}, e.store.Leases(), e.clock, discardLog, sweepCfg)
	res, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Released)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, bad, res.Failures[0].HoldID)

	assert.Equal(t, 9, e.available(t, productID))
	v, err := e.store.HoldReads().FindByID(ctx, good)
	require.NoError(t, err)
	assert.NotNil(t, v.ReleasedAt)
}

func TestSweeper_RacingReleasesCountAsSkipped(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	productID := e.product(t, 10)
	holdID := e.hold(t, productID, 3)
	e.clock.Add(5 * time.Minute)

	// the deferred job wins between the sweep's scan and its release
	finder := finderFunc(func(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
		ids, err := e.store.HoldReads().FindExpiredUnreleased(ctx, now, limit)
		if err != nil {
			return nil, err
		}
		_, err = e.holds.ReleaseHold(ctx, holdID)
		return ids, err
	})

	sweeper := reclaim.NewSweeper(finder, e.holds, e.store.Leases(), e.clock, discardLog, sweepCfg)
	res, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scanned)
	assert.Zero(t, res.Released)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 10, e.available(t, productID))
}

type finderFunc func(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)

func (f finderFunc) FindExpiredUnreleased(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	return f(ctx, now, limit)
}

func TestSweeper_NeverOverlaps(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	productID := e.product(t, 10)
	e.hold(t, productID, 1)
	e.clock.Add(5 * time.Minute)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	blocking := finderFunc(func(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
		close(entered)
		<-proceed
		return e.store.HoldReads().FindExpiredUnreleased(ctx, now, limit)
	})

	sweeper := reclaim.NewSweeper(blocking, e.holds, e.store.Leases(), e.clock, discardLog, sweepCfg)

	var wg sync.WaitGroup
	wg.Add(1)
	var first *reclaim.SweepResult
	go func() {
		defer wg.Done()
		var err error
		first, err = sweeper.Run(ctx)
		assert.NoError(t, err)
	}()
	<-entered

	_, err := sweeper.Run(ctx)
	require.ErrorIs(t, err, reclaim.ErrSweepInProgress)
	assert.True(t, errs.Is(err, errs.ErrConflict))

	// a second process shares the lease but not the in-process flag
	other := reclaim.NewSweeper(e.store.HoldReads(), e.holds, e.store.Leases(), e.clock, discardLog, sweepCfg)
	_, err = other.Run(ctx)
	require.ErrorIs(t, err, reclaim.ErrSweepInProgress)

	close(proceed)
	wg.Wait()
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Released)

	res, err := other.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Scanned)
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingSweeper) Run(context.Context) (*reclaim.SweepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return &reclaim.SweepResult{}, c.err
}

func (c *countingSweeper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestScheduler_RunsImmediatelyAndPeriodically(t *testing.T) {
	sweeper := &countingSweeper{err: reclaim.ErrSweepInProgress}
	sched := reclaim.NewScheduler(sweeper, discardLog, config.SweepConfig{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sweeper.count() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
