package commands

import (
	"context"
	"log/slog"

	"stock-hold-service/internal/domain/product"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/patch"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type CreateProductInput struct {
	Name       string
	TotalStock int
	// AvailableStock defaults to TotalStock when nil.
	AvailableStock *int
	Price          decimal.Decimal
}

type PurchaseResult struct {
	ProductID      uuid.UUID
	Amount         int
	AvailableStock int
}

type ProductCommands interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (uuid.UUID, error)
	// PurchaseDirect decrements stock without a hold.
	PurchaseDirect(ctx context.Context, productID uuid.UUID, amount int) (*PurchaseResult, error)
}

type productCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cache shared.ProductCacheInvalidator
	log   *slog.Logger
}

func NewProductCommands(uow shared.UnitOfWork, clk clock.Clock, cache shared.ProductCacheInvalidator, log *slog.Logger) ProductCommands {
	return &productCommandsImpl{uow: uow, clock: clk, cache: cache, log: log}
}

func (uc *productCommandsImpl) CreateProduct(ctx context.Context, in CreateProductInput) (id uuid.UUID, err error) {
	ctx, span := tracer.Start(ctx, "ProductCommands.CreateProduct")
	defer func() { finishSpan(span, err) }()

	p, err := product.NewProduct(in.Name, in.TotalStock, patch.Coalesce(in.AvailableStock, in.TotalStock), in.Price, uc.clock.Now())
	if err != nil {
		return uuid.Nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Products().Create(ctx, p)
	})
	if err != nil {
		return uuid.Nil, err
	}

	uc.log.Info("product created", "product_id", p.ID(), "total_stock", p.TotalStock())
	return p.ID(), nil
}

func (uc *productCommandsImpl) PurchaseDirect(ctx context.Context, productID uuid.UUID, amount int) (res *PurchaseResult, err error) {
	ctx, span := tracer.Start(ctx, "ProductCommands.PurchaseDirect")
	span.SetAttributes(attribute.String("product.id", productID.String()), attribute.Int("purchase.amount", amount))
	defer func() { finishSpan(span, err) }()

	if amount <= 0 {
		return nil, product.ErrInvalidQuantity
	}

	now := uc.clock.Now()
	var result PurchaseResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, derr := tx.Products().FindForUpdate(ctx, productID)
		if derr != nil {
			return notFoundAs(derr, ErrProductNotFound)
		}
		if derr = p.Purchase(amount, now); derr != nil {
			return derr
		}
		if derr = tx.Products().UpdateStock(ctx, p); derr != nil {
			return derr
		}
		result = PurchaseResult{ProductID: p.ID(), Amount: amount, AvailableStock: p.AvailableStock()}
		return enqueueEvent(ctx, tx, shared.EventStockChanged, p.ID(), map[string]any{
			"reason":          "purchase",
			"amount":          amount,
			"available_stock": p.AvailableStock(),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	invalidateProduct(ctx, uc.cache, uc.log, productID)
	uc.log.Info("direct purchase", "product_id", productID, "amount", amount, "available_stock", result.AvailableStock)
	return &result, nil
}
