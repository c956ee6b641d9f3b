package reclaim

import (
	"context"
	"log/slog"
	"time"

	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/errs"
)

//go:generate mockgen -destination=../../mock/reclaimmock/reclaim.go -package=reclaimmock stock-hold-service/internal/usecase/reclaim SweepRunner

type SweepRunner interface {
	Run(ctx context.Context) (*SweepResult, error)
}

// Scheduler invokes the sweep once at start and then every interval.
type Scheduler struct {
	sweeper  SweepRunner
	interval time.Duration
	log      *slog.Logger
}

func NewScheduler(sweeper SweepRunner, log *slog.Logger, cfg config.SweepConfig) *Scheduler {
	return &Scheduler{sweeper: sweeper, interval: cfg.Interval, log: log}
}

func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("expired hold sweep scheduled", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("expired hold sweep scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.sweeper.Run(ctx)
	switch {
	case err == nil:
	case errs.Is(err, ErrSweepInProgress):
		s.log.Info("skipping sweep, previous run still active")
	case ctx.Err() != nil:
	default:
		s.log.Error("expired hold sweep failed", "error", err)
	}
}
