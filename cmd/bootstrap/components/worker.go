package components

import (
	"context"
	"log/slog"

	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/reclaim"
	"stock-hold-service/internal/usecase/shared"
	"stock-hold-service/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(NewWorkerPool),
	fx.Invoke(
		startWorkerPool,
		startSweepScheduler,
	),
)

func NewWorkerPool(queue shared.JobQueue, clk clock.Clock, log *slog.Logger, cfg config.WorkerConfig, holds commands.HoldCommands, pub worker.EventPublisher) *worker.Pool {
	pool := worker.NewPool(queue, clk, log, cfg)
	pool.Handle(shared.JobKindReleaseHold, worker.ReleaseHoldHandler(holds))
	pool.Handle(shared.JobKindPublishEvent, worker.PublishEventHandler(pub))
	return pool
}

func startWorkerPool(lc fx.Lifecycle, pool *worker.Pool, cfg config.WorkerConfig, log *slog.Logger) {
	if !cfg.Enabled {
		log.Warn("job worker disabled; holds are only reclaimed by the sweep")
		return
	}
	runInBackground(lc, pool.Run)
}

func startSweepScheduler(lc fx.Lifecycle, sweeper reclaim.SweepRunner, cfg config.SweepConfig, log *slog.Logger) {
	if !cfg.Enabled {
		log.Warn("periodic expired hold sweep disabled")
		return
	}
	runInBackground(lc, reclaim.NewScheduler(sweeper, log, cfg).Run)
}

// runInBackground starts run on OnStart and waits for it to return on OnStop.
func runInBackground(lc fx.Lifecycle, run func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
