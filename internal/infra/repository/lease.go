package repository

import (
	"context"
	"log/slog"
	"sync"

	"stock-hold-service/internal/infra"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLeaseManager maps lease names onto session-level advisory locks.
// The lock lives on a dedicated pool connection until release is called, and
// Postgres drops it if the process dies.
type AdvisoryLeaseManager struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewAdvisoryLeaseManager(pool *pgxpool.Pool, log *slog.Logger) *AdvisoryLeaseManager {
	return &AdvisoryLeaseManager{pool: pool, log: log}
}

func (m *AdvisoryLeaseManager) TryAcquire(ctx context.Context, name string) (func(), bool, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, false, infra.WrapRepoErr("failed to acquire connection for lease", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtextextended($1, 0))`, name).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, infra.WrapRepoErr("failed to try advisory lock", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// The caller's ctx may already be cancelled; unlocking must still happen.
			if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, name); err != nil {
				m.log.Warn("failed to release advisory lock", "lease", name, "error", err)
				// Closing the connection drops the session lock.
				_ = conn.Conn().Close(context.Background())
			}
			conn.Release()
		})
	}
	return release, true, nil
}
