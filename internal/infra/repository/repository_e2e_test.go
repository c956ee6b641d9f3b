//go:build e2e

package repository_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/infra/repository"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/testutil/pgtest"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestJobQueue(t *testing.T) {
	pool, _ := pgtest.NewDatabase(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	clk := clock.NewMockClock(now)

	jobs := repository.NewJobRepository(pool, clk)
	queue := repository.NewJobQueue(pool)

	enqueue := func(t *testing.T, runAt time.Time) uuid.UUID {
		t.Helper()
		id, err := jobs.Enqueue(ctx, shared.NewJob{
			Kind:    shared.JobKindReleaseHold,
			Payload: []byte(`{"hold_id":"` + uuid.NewString() + `"}`),
			RunAt:   runAt,
		})
		require.NoError(t, err)
		return id
	}

	t.Run("only due jobs are claimed and each claim counts an attempt", func(t *testing.T) {
		pgtest.Reset(t, pool)
		due := enqueue(t, now.Add(-time.Second))
		enqueue(t, now.Add(time.Hour))

		claimed, err := queue.ClaimDue(ctx, now, 10, 30*time.Second)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, due, claimed[0].ID)
		assert.Equal(t, 1, claimed[0].Attempts)
		assert.Equal(t, shared.JobStatusInProgress, claimed[0].Status)

		again, err := queue.ClaimDue(ctx, now, 10, 30*time.Second)
		require.NoError(t, err)
		assert.Empty(t, again, "leased job must not be claimed twice")

		expired, err := queue.ClaimDue(ctx, now.Add(time.Minute), 10, 30*time.Second)
		require.NoError(t, err)
		require.Len(t, expired, 1, "job with an expired lease is claimable again")
		assert.Equal(t, 2, expired[0].Attempts)
	})

	t.Run("concurrent claimers never share a job", func(t *testing.T) {
		pgtest.Reset(t, pool)
		for range 40 {
			enqueue(t, now.Add(-time.Second))
		}

		var (
			mu   sync.Mutex
			seen = map[uuid.UUID]int{}
			wg   sync.WaitGroup
		)
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				claimed, err := queue.ClaimDue(ctx, now, 15, 30*time.Second)
				assert.NoError(t, err)
				mu.Lock()
				defer mu.Unlock()
				for _, j := range claimed {
					seen[j.ID]++
				}
			}()
		}
		wg.Wait()

		assert.Len(t, seen, 40)
		for id, n := range seen {
			assert.Equal(t, 1, n, "job %s claimed %d times", id, n)
		}
	})

	t.Run("complete, retry and fail transitions", func(t *testing.T) {
		pgtest.Reset(t, pool)
		a := enqueue(t, now.Add(-time.Second))
		b := enqueue(t, now.Add(-time.Second))
		c := enqueue(t, now.Add(-time.Second))
		_, err := queue.ClaimDue(ctx, now, 10, time.Minute)
		require.NoError(t, err)

		require.NoError(t, queue.Complete(ctx, a, now))
		require.NoError(t, queue.Retry(ctx, b, now.Add(time.Minute), "broker down", now))
		require.NoError(t, queue.Fail(ctx, c, "bad payload", now))

		all, err := queue.FindByKind(ctx, shared.JobKindReleaseHold)
		require.NoError(t, err)
		byID := map[uuid.UUID]shared.Job{}
		for _, j := range all {
			byID[j.ID] = j
		}
		assert.Equal(t, shared.JobStatusDone, byID[a].Status)
		assert.Equal(t, shared.JobStatusQueued, byID[b].Status)
		require.NotNil(t, byID[b].LastError)
		assert.Equal(t, "broker down", *byID[b].LastError)
		assert.Equal(t, shared.JobStatusFailed, byID[c].Status)

		err = queue.Complete(ctx, uuid.New(), now)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

func TestAdvisoryLeaseManager(t *testing.T) {
	pool, _ := pgtest.NewDatabase(t)
	ctx := context.Background()
	leases := repository.NewAdvisoryLeaseManager(pool, discardLog)

	release, ok, err := leases.TryAcquire(ctx, "sweep")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = leases.TryAcquire(ctx, "sweep")
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	other, ok, err := leases.TryAcquire(ctx, "another")
	require.NoError(t, err)
	assert.True(t, ok, "different names do not conflict")
	other()

	release()
	release()

	again, ok, err := leases.TryAcquire(ctx, "sweep")
	require.NoError(t, err)
	assert.True(t, ok, "lease is free after release")
	again()
}
