package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"stock-hold-service/internal/domain/hold"
	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type CreateHoldInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateHoldResult struct {
	HoldID        uuid.UUID
	ProductID     uuid.UUID
	Quantity      int
	HoldExpiresAt time.Time
}

type ReleaseStatus string

const (
	// ReleaseStatusReleased means this call returned the stock.
	ReleaseStatusReleased ReleaseStatus = "released"
	// ReleaseStatusNoop means the hold was missing or already released.
	ReleaseStatusNoop ReleaseStatus = "noop"
	// ReleaseStatusConsumed means the hold became an order; its stock stays sold.
	ReleaseStatusConsumed ReleaseStatus = "consumed"
)

type ReleaseHoldResult struct {
	HoldID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Status    ReleaseStatus
}

type HoldCommands interface {
	CreateHold(ctx context.Context, in CreateHoldInput) (*CreateHoldResult, error)
	// ReleaseHold is idempotent: concurrent or repeated calls for one hold
	// return its stock at most once.
	ReleaseHold(ctx context.Context, holdID uuid.UUID) (*ReleaseHoldResult, error)
}

type holdCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cache shared.ProductCacheInvalidator
	log   *slog.Logger
	ttl   time.Duration
}

func NewHoldCommands(uow shared.UnitOfWork, clk clock.Clock, cache shared.ProductCacheInvalidator, log *slog.Logger, cfg config.HoldConfig) HoldCommands {
	return &holdCommandsImpl{uow: uow, clock: clk, cache: cache, log: log, ttl: cfg.TTL}
}

func (uc *holdCommandsImpl) CreateHold(ctx context.Context, in CreateHoldInput) (res *CreateHoldResult, err error) {
	ctx, span := tracer.Start(ctx, "HoldCommands.CreateHold")
	span.SetAttributes(attribute.String("product.id", in.ProductID.String()), attribute.Int("hold.quantity", in.Quantity))
	defer func() { finishSpan(span, err) }()

	if in.Quantity <= 0 {
		return nil, hold.ErrInvalidQuantity
	}

	now := uc.clock.Now()
	var created *hold.Hold
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, derr := tx.Products().FindForUpdate(ctx, in.ProductID)
		if derr != nil {
			return notFoundAs(derr, ErrProductNotFound)
		}
		if derr = p.Reserve(in.Quantity, now); derr != nil {
			return derr
		}
		h, derr := hold.NewHold(p.ID(), in.Quantity, uc.ttl, now)
		if derr != nil {
			return derr
		}

		if derr = tx.Products().UpdateStock(ctx, p); derr != nil {
			return derr
		}
		if derr = tx.Holds().Create(ctx, h); derr != nil {
			return derr
		}

		payload, derr := json.Marshal(shared.ReleaseHoldPayload{HoldID: h.ID()})
		if derr != nil {
			return errs.Wrap(derr, "marshal release payload")
		}
		if _, derr = tx.Jobs().Enqueue(ctx, shared.NewJob{
			Kind:    shared.JobKindReleaseHold,
			Payload: payload,
			RunAt:   h.HoldExpiresAt(),
		}); derr != nil {
			return derr
		}

		created = h
		return enqueueEvent(ctx, tx, shared.EventHoldCreated, h.ID(), map[string]any{
			"product_id":      p.ID(),
			"quantity":        h.Quantity(),
			"hold_expires_at": h.HoldExpiresAt(),
			"available_stock": p.AvailableStock(),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	invalidateProduct(ctx, uc.cache, uc.log, in.ProductID)
	uc.log.Info("hold created",
		"hold_id", created.ID(),
		"product_id", in.ProductID,
		"quantity", in.Quantity,
		"hold_expires_at", created.HoldExpiresAt())

	return &CreateHoldResult{
		HoldID:        created.ID(),
		ProductID:     created.ProductID(),
		Quantity:      created.Quantity(),
		HoldExpiresAt: created.HoldExpiresAt(),
	}, nil
}

func (uc *holdCommandsImpl) ReleaseHold(ctx context.Context, holdID uuid.UUID) (res *ReleaseHoldResult, err error) {
	ctx, span := tracer.Start(ctx, "HoldCommands.ReleaseHold")
	span.SetAttributes(attribute.String("hold.id", holdID.String()))
	defer func() { finishSpan(span, err) }()

	now := uc.clock.Now()
	var result ReleaseHoldResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// Reset on every attempt; the unit of work may retry this closure.
		result = ReleaseHoldResult{HoldID: holdID, Status: ReleaseStatusNoop}

		h, derr := tx.Holds().FindUnreleasedForUpdate(ctx, holdID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return nil
			}
			return derr
		}
		result.ProductID = h.ProductID()
		result.Quantity = h.Quantity()

		if h.IsUsed() {
			result.Status = ReleaseStatusConsumed
			return nil
		}

		p, derr := tx.Products().FindForUpdate(ctx, h.ProductID())
		if derr != nil {
			return notFoundAs(derr, ErrProductNotFound)
		}
		if derr = p.Release(h.Quantity(), now); derr != nil {
			return derr
		}
		if derr = h.MarkReleased(now); derr != nil {
			return derr
		}
		if derr = tx.Products().UpdateStock(ctx, p); derr != nil {
			return derr
		}
		if derr = tx.Holds().Update(ctx, h); derr != nil {
			return derr
		}

		result.Status = ReleaseStatusReleased
		return enqueueEvent(ctx, tx, shared.EventHoldReleased, h.ID(), map[string]any{
			"product_id":      p.ID(),
			"quantity":        h.Quantity(),
			"available_stock": p.AvailableStock(),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("hold.release_status", string(result.Status)))
	switch result.Status {
	case ReleaseStatusReleased:
		invalidateProduct(ctx, uc.cache, uc.log, result.ProductID)
		uc.log.Info("hold released", "hold_id", holdID, "product_id", result.ProductID, "quantity", result.Quantity)
	case ReleaseStatusConsumed:
		uc.log.Warn("release skipped for used hold", "hold_id", holdID)
	default:
		uc.log.Debug("hold already released or missing", "hold_id", holdID)
	}
	return &result, nil
}
