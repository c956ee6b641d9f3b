package commands

import (
	"context"
	"log/slog"
	"strings"

	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type ApplyPaymentInput struct {
	OrderID uuid.UUID
	EventID string
	Outcome order.PaymentOutcome
}

type ApplyPaymentResult struct {
	OrderID uuid.UUID
	Status  order.Status
	// Duplicate is set when EventID had already been applied; nothing changed.
	Duplicate bool
}

type PaymentCommands interface {
	ApplyPaymentResult(ctx context.Context, in ApplyPaymentInput) (*ApplyPaymentResult, error)
}

type paymentCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	log   *slog.Logger
}

func NewPaymentCommands(uow shared.UnitOfWork, clk clock.Clock, log *slog.Logger) PaymentCommands {
	return &paymentCommandsImpl{uow: uow, clock: clk, log: log}
}

func (uc *paymentCommandsImpl) ApplyPaymentResult(ctx context.Context, in ApplyPaymentInput) (res *ApplyPaymentResult, err error) {
	ctx, span := tracer.Start(ctx, "PaymentCommands.ApplyPaymentResult")
	span.SetAttributes(
		attribute.String("order.id", in.OrderID.String()),
		attribute.String("payment.event_id", in.EventID),
		attribute.String("payment.outcome", string(in.Outcome)),
	)
	defer func() { finishSpan(span, err) }()

	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" {
		return nil, order.ErrEmptyEventID
	}
	if !in.Outcome.IsValid() {
		return nil, order.ErrInvalidOutcome
	}

	now := uc.clock.Now()
	var result ApplyPaymentResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = ApplyPaymentResult{OrderID: in.OrderID}

		o, derr := tx.Orders().FindForUpdate(ctx, in.OrderID)
		if derr != nil {
			return notFoundAs(derr, ErrOrderNotFound)
		}
		if o.AlreadyApplied(eventID) {
			result.Status = o.Status()
			result.Duplicate = true
			return nil
		}
		if derr = o.ApplyPayment(eventID, in.Outcome, now); derr != nil {
			return derr
		}
		if derr = tx.Orders().Update(ctx, o); derr != nil {
			return derr
		}

		result.Status = o.Status()
		return enqueueEvent(ctx, tx, shared.EventOrderResolved, o.ID(), map[string]any{
			"hold_id":  o.HoldID(),
			"status":   o.Status(),
			"event_id": eventID,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		uc.log.Info("payment event already processed", "order_id", in.OrderID, "event_id", eventID)
	} else {
		uc.log.Info("payment applied", "order_id", in.OrderID, "event_id", eventID, "status", result.Status)
	}
	return &result, nil
}
