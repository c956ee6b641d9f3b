package commands_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"stock-hold-service/internal/domain/hold"
	"stock-hold-service/internal/domain/product"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHold(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves stock and schedules release", func(t *testing.T) {
		f := newFixture(t)
		productID := f.createProduct(t, 10)

		res, err := f.holds.CreateHold(ctx, commands.CreateHoldInput{ProductID: productID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, baseTime.Add(holdTTL), res.HoldExpiresAt)
		assert.Equal(t, 7, f.available(t, productID))

		jobs := f.jobs(shared.JobKindReleaseHold)
		require.Len(t, jobs, 1)
		assert.Equal(t, res.HoldExpiresAt, jobs[0].RunAt)
		var payload shared.ReleaseHoldPayload
		require.NoError(t, json.Unmarshal(jobs[0].Payload, &payload))
		assert.Equal(t, res.HoldID, payload.HoldID)

		events := f.jobs(shared.JobKindPublishEvent)
		require.Len(t, events, 1)
		var evt shared.Event
		require.NoError(t, json.Unmarshal(events[0].Payload, &evt))
		assert.Equal(t, shared.EventHoldCreated, evt.Type)
		assert.Equal(t, res.HoldID, evt.AggregateID)

		assert.Equal(t, 1, f.cache.count())
	})

	t.Run("insufficient stock leaves nothing behind", func(t *testing.T) {
		f := newFixture(t)
		productID := f.createProduct(t, 2)

		_, err := f.holds.CreateHold(ctx, commands.CreateHoldInput{ProductID: productID, Quantity: 3})
		require.ErrorIs(t, err, product.ErrInsufficientStock)
		assert.True(t, errs.Is(err, errs.ErrInsufficientStock))
		assert.Equal(t, 2, f.available(t, productID))
		assert.Empty(t, f.jobs(""))
		assert.Zero(t, f.cache.count())
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.holds.CreateHold(ctx, commands.CreateHoldInput{ProductID: uuid.New(), Quantity: 1})
		require.ErrorIs(t, err, commands.ErrProductNotFound)
		assert.True(t, errs.Is(err, errs.ErrNotFound))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		f := newFixture(t)
		productID := f.createProduct(t, 2)
		_, err := f.holds.CreateHold(ctx, commands.CreateHoldInput{ProductID: productID, Quantity: 0})
		require.ErrorIs(t, err, hold.ErrInvalidQuantity)
	})
}

func TestCreateHold_ConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	productID := f.createProduct(t, 10)

	const clients = 40
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.holds.CreateHold(ctx, commands.CreateHoldInput{ProductID: productID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errs.Is(err, product.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, clients-10, insufficient)
	assert.Equal(t, 0, f.available(t, productID))
	assert.Len(t, f.jobs(shared.JobKindReleaseHold), 10)
}

func TestReleaseHold(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stock once", func(t *testing.T) {
		f := newFixture(t)
		productID := f.createProduct(t, 10)
		h := f.createHold(t, productID, 4)

		first, err := f.holds.ReleaseHold(ctx, h.HoldID)
		require.NoError(t, err)
		assert.Equal(t, commands.ReleaseStatusReleased, first.Status)
		assert.Equal(t, productID, first.ProductID)
		assert.Equal(t, 10, f.available(t, productID))

		second, err := f.holds.ReleaseHold(ctx, h.HoldID)
		require.NoError(t, err)
		assert.Equal(t, commands.ReleaseStatusNoop, second.Status)
		assert.Equal(t, 10, f.available(t, productID))

		view, err := f.store.HoldReads().FindByID(ctx, h.HoldID)
		require.NoError(t, err)
		require.NotNil(t, view.ReleasedAt)
	})

	t.Run("unknown hold is a no-op", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.holds.ReleaseHold(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, commands.ReleaseStatusNoop, res.Status)
	})

	t.Run("used hold keeps its stock", func(t *testing.T) {
		f := newFixture(t)
		productID := f.createProduct(t, 5)
		h := f.createHold(t, productID, 2)
		_, err := f.orders.CreateOrder(ctx, h.HoldID)
		require.NoError(t, err)

		f.clock.Add(holdTTL + time.Minute)
		res, err := f.holds.ReleaseHold(ctx, h.HoldID)
		require.NoError(t, err)
		assert.Equal(t, commands.ReleaseStatusConsumed, res.Status)
		assert.Equal(t, 3, f.available(t, productID))

		view, err := f.store.HoldReads().FindByID(ctx, h.HoldID)
		require.NoError(t, err)
		assert.Nil(t, view.ReleasedAt)
	})
}

func TestReleaseHold_ConcurrentReleasesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	productID := f.createProduct(t, 10)
	h := f.createHold(t, productID, 6)
	f.clock.Add(holdTTL + time.Second)

	const racers = 20
	statuses := make(chan commands.ReleaseStatus, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.holds.ReleaseHold(ctx, h.HoldID)
			if !assert.NoError(t, err) {
				return
			}
			statuses <- res.Status
		}()
	}
	wg.Wait()
	close(statuses)

	released := 0
	for s := range statuses {
		if s == commands.ReleaseStatusReleased {
			released++
		} else {
			assert.Equal(t, commands.ReleaseStatusNoop, s)
		}
	}
	assert.Equal(t, 1, released)
	assert.Equal(t, 10, f.available(t, productID))
	assert.Len(t, f.jobs(shared.JobKindPublishEvent), 2, "hold.created and exactly one hold.released")
}

// Stock 100: a hold of 60 leaves 40, so 50 cannot be held until the first
// hold expires and is reclaimed.
func TestHoldLifecycle_ExpiryFreesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	productID := f.createProduct(t, 100)

	big := f.createHold(t, productID, 60)
	assert.Equal(t, 40, f.available(t, productID))

	_, err := f.holds.CreateHold(ctx, commands.CreateHoldInput{ProductID: productID, Quantity: 50})
	require.ErrorIs(t, err, product.ErrInsufficientStock)

	f.clock.Add(holdTTL + time.Second)
	res, err := f.holds.ReleaseHold(ctx, big.HoldID)
	require.NoError(t, err)
	require.Equal(t, commands.ReleaseStatusReleased, res.Status)
	assert.Equal(t, 100, f.available(t, productID))

	second := f.createHold(t, productID, 50)
	assert.NotEqual(t, big.HoldID, second.HoldID)
	assert.Equal(t, 50, f.available(t, productID))
}
