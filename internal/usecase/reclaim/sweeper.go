// Package reclaim returns stock held by expired holds. The sweep is the safety
// net behind the per-hold release jobs: it picks up anything those jobs missed
// (worker down, job dead-lettered) and releases each hold in its own
// transaction so one bad hold cannot block the rest.
package reclaim

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/pkg/patch"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// LeaseName identifies the sweep lease shared by every process.
const LeaseName = "reclaim.expired-hold-sweep"

const defaultBatchSize = 500

var ErrSweepInProgress = errs.Category("expired hold sweep already in progress", errs.ErrConflict)

var tracer = otel.Tracer("stock-hold-service/usecase/reclaim")

// ExpiredHoldFinder lists holds past their expiry that are neither released
// nor used.
type ExpiredHoldFinder interface {
	FindExpiredUnreleased(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type HoldReleaser interface {
	ReleaseHold(ctx context.Context, holdID uuid.UUID) (*commands.ReleaseHoldResult, error)
}

type HoldFailure struct {
	HoldID uuid.UUID `json:"hold_id"`
	Error  string    `json:"error"`
}

type SweepResult struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Scanned    int           `json:"scanned"`
	Released   int           `json:"released"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Failures   []HoldFailure `json:"failures,omitempty"`
}

type Sweeper struct {
	finder    ExpiredHoldFinder
	releaser  HoldReleaser
	leases    shared.LeaseManager
	clock     clock.Clock
	log       *slog.Logger
	batchSize int
	running   atomic.Bool
}

func NewSweeper(finder ExpiredHoldFinder, releaser HoldReleaser, leases shared.LeaseManager, clk clock.Clock, log *slog.Logger, cfg config.SweepConfig) *Sweeper {
	return &Sweeper{
		finder:    finder,
		releaser:  releaser,
		leases:    leases,
		clock:     clk,
		log:       log,
		batchSize: patch.OrDefault(cfg.BatchSize, defaultBatchSize),
	}
}

// Run performs one sweep. It returns ErrSweepInProgress when another sweep,
// in this process or any other, holds the lease.
func (s *Sweeper) Run(ctx context.Context) (*SweepResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	release, acquired, err := s.leases.TryAcquire(ctx, LeaseName)
	if err != nil {
		return nil, errs.Wrap(err, "acquire sweep lease")
	}
	if !acquired {
		return nil, ErrSweepInProgress
	}
	defer release()

	ctx, span := tracer.Start(ctx, "Sweeper.Run")
	defer span.End()

	result := &SweepResult{StartedAt: s.clock.Now()}
	ids, err := s.finder.FindExpiredUnreleased(ctx, result.StartedAt, s.batchSize)
	if err != nil {
		span.RecordError(err)
		return nil, errs.Wrap(err, "find expired holds")
	}
	result.Scanned = len(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		res, err := s.releaser.ReleaseHold(ctx, id)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, HoldFailure{HoldID: id, Error: err.Error()})
			s.log.Error("failed to release expired hold", "hold_id", id, "error", err)
			continue
		}
		if res.Status == commands.ReleaseStatusReleased {
			result.Released++
		} else {
			result.Skipped++
		}
	}
	result.FinishedAt = s.clock.Now()

	span.SetAttributes(
		attribute.Int("sweep.scanned", result.Scanned),
		attribute.Int("sweep.released", result.Released),
		attribute.Int("sweep.failed", result.Failed),
	)
	s.log.Info("expired hold sweep finished",
		"scanned", result.Scanned,
		"released", result.Released,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}
