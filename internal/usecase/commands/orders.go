package commands

import (
	"context"
	"log/slog"

	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type CreateOrderResult struct {
	OrderID uuid.UUID
	HoldID  uuid.UUID
	Status  order.Status
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, holdID uuid.UUID) (*CreateOrderResult, error)
}

type orderCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	log   *slog.Logger
}

func NewOrderCommands(uow shared.UnitOfWork, clk clock.Clock, log *slog.Logger) OrderCommands {
	return &orderCommandsImpl{uow: uow, clock: clk, log: log}
}

func (uc *orderCommandsImpl) CreateOrder(ctx context.Context, holdID uuid.UUID) (res *CreateOrderResult, err error) {
	ctx, span := tracer.Start(ctx, "OrderCommands.CreateOrder")
	span.SetAttributes(attribute.String("hold.id", holdID.String()))
	defer func() { finishSpan(span, err) }()

	now := uc.clock.Now()
	var created *order.Order
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, derr := tx.Holds().FindForUpdate(ctx, holdID)
		if derr != nil {
			return notFoundAs(derr, ErrHoldNotFound)
		}
		if derr = h.Consume(now); derr != nil {
			return derr
		}
		o, derr := order.NewOrder(h.ID(), now)
		if derr != nil {
			return derr
		}
		if derr = tx.Holds().Update(ctx, h); derr != nil {
			return derr
		}
		if derr = tx.Orders().Create(ctx, o); derr != nil {
			return derr
		}

		created = o
		return enqueueEvent(ctx, tx, shared.EventOrderCreated, o.ID(), map[string]any{
			"hold_id":    h.ID(),
			"product_id": h.ProductID(),
			"quantity":   h.Quantity(),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("order created", "order_id", created.ID(), "hold_id", holdID)
	return &CreateOrderResult{OrderID: created.ID(), HoldID: created.HoldID(), Status: created.Status()}, nil
}
