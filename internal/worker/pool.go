// Package worker executes jobs from the durable job queue. Delivery is
// at-least-once: a failed job is retried with exponential backoff until it
// runs out of attempts and is marked failed.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/pkg/patch"
	"stock-hold-service/internal/usecase/shared"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrPermanent marks a job failure that retrying cannot fix.
var ErrPermanent = errs.New("permanent job failure")

const maxBackoff = 10 * time.Minute

var tracer = otel.Tracer("stock-hold-service/worker")

type Handler func(ctx context.Context, job shared.Job) error

type Pool struct {
	queue    shared.JobQueue
	clock    clock.Clock
	log      *slog.Logger
	handlers map[string]Handler

	workers      int
	batchSize    int
	pollInterval time.Duration
	maxAttempts  int
	retryBase    time.Duration
	lease        time.Duration
}

func NewPool(queue shared.JobQueue, clk clock.Clock, log *slog.Logger, cfg config.WorkerConfig) *Pool {
	return &Pool{
		queue:        queue,
		clock:        clk,
		log:          log,
		handlers:     make(map[string]Handler),
		workers:      patch.OrDefault(cfg.Count, 1),
		batchSize:    patch.OrDefault(cfg.BatchSize, 50),
		pollInterval: patch.OrDefault(cfg.PollInterval, time.Second),
		maxAttempts:  patch.OrDefault(cfg.MaxAttempts, 5),
		retryBase:    patch.OrDefault(cfg.RetryBase, 2*time.Second),
		lease:        patch.OrDefault(cfg.Lease, 30*time.Second),
	}
}

// Handle registers the handler for a job kind. Must be called before Run.
func (p *Pool) Handle(kind string, h Handler) {
	p.handlers[kind] = h
}

// Run polls the queue until ctx is cancelled. Jobs already claimed are
// finished before Run returns.
func (p *Pool) Run(ctx context.Context) {
	p.log.Info("worker pool started", "workers", p.workers, "poll_interval", p.pollInterval)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("worker pool stopping")
			return
		case <-ticker.C:
			if _, err := p.Tick(ctx); err != nil && ctx.Err() == nil {
				p.log.Error("job poll failed", "error", err)
			}
		}
	}
}

// Tick claims one batch of due jobs and processes it across the workers. It
// returns the number of jobs claimed.
func (p *Pool) Tick(ctx context.Context) (int, error) {
	jobs, err := p.queue.ClaimDue(ctx, p.clock.Now(), p.batchSize, p.lease)
	if err != nil {
		return 0, errs.Wrap(err, "claim due jobs")
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	// Claimed jobs run to completion even if ctx is cancelled meanwhile.
	jobCtx := context.WithoutCancel(ctx)

	feed := make(chan shared.Job)
	var wg sync.WaitGroup
	for i := 0; i < min(p.workers, len(jobs)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range feed {
				p.process(jobCtx, job)
			}
		}()
	}
	for _, job := range jobs {
		feed <- job
	}
	close(feed)
	wg.Wait()

	return len(jobs), nil
}

func (p *Pool) process(ctx context.Context, job shared.Job) {
	ctx, span := tracer.Start(ctx, "job "+job.Kind)
	span.SetAttributes(
		attribute.String("job.id", job.ID.String()),
		attribute.Int("job.attempt", job.Attempts),
	)
	defer span.End()

	log := p.log.With("job_id", job.ID, "kind", job.Kind, "attempt", job.Attempts)

	handler, ok := p.handlers[job.Kind]
	if !ok {
		p.fail(ctx, log, job, "no handler for job kind")
		return
	}

	err := handler(ctx, job)
	now := p.clock.Now()
	if err == nil {
		if err := p.queue.Complete(ctx, job.ID, now); err != nil {
			log.Error("failed to mark job done", "error", err)
		}
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if errs.Is(err, ErrPermanent) || job.Attempts >= p.maxAttempts {
		p.fail(ctx, log, job, err.Error())
		return
	}

	runAt := now.Add(p.backoff(job.Attempts))
	log.Warn("job failed, retrying", "error", err, "run_at", runAt)
	if err := p.queue.Retry(ctx, job.ID, runAt, err.Error(), now); err != nil {
		log.Error("failed to reschedule job", "error", err)
	}
}

func (p *Pool) fail(ctx context.Context, log *slog.Logger, job shared.Job, reason string) {
	log.Error("job failed permanently", "error", reason)
	if err := p.queue.Fail(ctx, job.ID, reason, p.clock.Now()); err != nil {
		log.Error("failed to mark job failed", "error", err)
	}
}

// backoff doubles per attempt: base, 2*base, 4*base, ...
func (p *Pool) backoff(attempt int) time.Duration {
	d := p.retryBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
