package components

import (
	"context"
	"log/slog"
	"time"

	"stock-hold-service/internal/infra/db"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const migrationTimeout = time.Minute

// NewDB opens the pool and, when enabled, brings the schema up to date before
// anything else touches it.
func NewDB(lc fx.Lifecycle, cfg config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	if cfg.Store.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()
		applied, err := migrations.Apply(ctx, pool)
		if err != nil {
			cleanup()
			return nil, err
		}
		log.Info("migrations applied", "count", len(applied), "files", applied)
	}

	return pool, nil
}
