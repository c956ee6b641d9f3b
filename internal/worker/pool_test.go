package worker_test

import (
	"context"
	"encoding/json"
	"errors"
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
	"stock-hold-service/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseTime   = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func workerConfig() config.WorkerConfig {
	return config.WorkerConfig{
		Count:       3,
		BatchSize:   10,
		MaxAttempts: 3,
		RetryBase:   time.Second,
		Lease:       30 * time.Second,
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func enqueue(t *testing.T, s *memstore.Store, job shared.NewJob) {
	t.Helper()
	require.NoError(t, s.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Jobs().Enqueue(ctx, job)
		return err
	}))
}

func TestPool_ReleasesExpiredHolds(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(baseTime)
	store := memstore.New(clk)

	products := commands.NewProductCommands(store, clk, nil, discardLog)
	holds := commands.NewHoldCommands(store, clk, nil, discardLog, config.HoldConfig{TTL: 2 * time.Minute})

	productID, err := products.CreateProduct(ctx, commands.CreateProductInput{Name: "Lamp", TotalStock: 10, Price: decimal.NewFromInt(40)})
	require.NoError(t, err)
	h, err := holds.CreateHold(ctx, commands.CreateHoldInput{ProductID: productID, Quantity: 4})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	pool := worker.NewPool(store.JobQueue(), clk, discardLog, workerConfig())
	pool.Handle(shared.JobKindReleaseHold, worker.ReleaseHoldHandler(holds))
	pool.Handle(shared.JobKindPublishEvent, worker.PublishEventHandler(pub))

	// Before expiry only the hold.created event is due.
	n, err := pool.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	view, err := store.ProductReads().FindByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 6, view.AvailableStock)

	clk.Add(2*time.Minute + time.Second)
	n, err = pool.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	view, err = store.ProductReads().FindByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, view.AvailableStock)

	// hold.released event published on the next tick
	_, err = pool.Tick(ctx)
	require.NoError(t, err)
	require.Len(t, pub.events, 2)
	assert.Equal(t, shared.EventHoldCreated, pub.events[0].Type)
	assert.Equal(t, shared.EventHoldReleased, pub.events[1].Type)
	assert.Equal(t, h.HoldID, pub.events[1].AggregateID)

	for _, job := range store.JobQueue().Snapshot("") {
		assert.Equal(t, shared.JobStatusDone, job.Status, job.Kind)
	}
}

func TestPool_RetriesWithBackoffThenFails(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(baseTime)
	store := memstore.New(clk)

	payload, err := json.Marshal(shared.Event{ID: uuid.New(), Type: shared.EventOrderCreated})
	require.NoError(t, err)
	enqueue(t, store, shared.NewJob{Kind: shared.JobKindPublishEvent, Payload: payload, RunAt: baseTime})

	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	pool := worker.NewPool(store.JobQueue(), clk, discardLog, workerConfig())
	pool.Handle(shared.JobKindPublishEvent, worker.PublishEventHandler(pub))

	_, err = pool.Tick(ctx)
	require.NoError(t, err)
	job := store.JobQueue().Snapshot("")[0]
	assert.Equal(t, shared.JobStatusQueued, job.Status)
	assert.Equal(t, baseTime.Add(time.Second), job.RunAt)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "broker unavailable")

	clk.Add(time.Second)
	_, err = pool.Tick(ctx)
	require.NoError(t, err)
	job = store.JobQueue().Snapshot("")[0]
	assert.Equal(t, clk.Now().Add(2*time.Second), job.RunAt)

	clk.Add(2 * time.Second)
	_, err = pool.Tick(ctx)
	require.NoError(t, err)
	job = store.JobQueue().Snapshot("")[0]
	assert.Equal(t, shared.JobStatusFailed, job.Status)
	assert.Equal(t, 3, job.Attempts)

	clk.Add(time.Hour)
	n, err := pool.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPool_PermanentFailures(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(baseTime)
	store := memstore.New(clk)

	enqueue(t, store, shared.NewJob{Kind: shared.JobKindReleaseHold, Payload: []byte("{not json"), RunAt: baseTime})
	enqueue(t, store, shared.NewJob{Kind: "mystery", Payload: []byte("{}"), RunAt: baseTime})

	pool := worker.NewPool(store.JobQueue(), clk, discardLog, workerConfig())
	pool.Handle(shared.JobKindReleaseHold, worker.ReleaseHoldHandler(nil))

	n, err := pool.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, job := range store.JobQueue().Snapshot("") {
		assert.Equal(t, shared.JobStatusFailed, job.Status, job.Kind)
		assert.Equal(t, 1, job.Attempts)
	}
}

func TestPool_RunStopsOnCancel(t *testing.T) {
	clk := clock.NewMockClock(baseTime)
	store := memstore.New(clk)
	cfg := workerConfig()
	cfg.PollInterval = 5 * time.Millisecond

	pub := &recordingPublisher{}
	payload, err := json.Marshal(shared.Event{ID: uuid.New(), Type: shared.EventOrderResolved})
	require.NoError(t, err)
	enqueue(t, store, shared.NewJob{Kind: shared.JobKindPublishEvent, Payload: payload, RunAt: baseTime})

	pool := worker.NewPool(store.JobQueue(), clk, discardLog, cfg)
	pool.Handle(shared.JobKindPublishEvent, worker.PublishEventHandler(pub))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.events) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop")
	}
}
