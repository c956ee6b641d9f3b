package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"stock-hold-service/internal/infra"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -destination=../../mock/commandsmock/commands.go -package=commandsmock stock-hold-service/internal/usecase/commands HoldCommands,OrderCommands,PaymentCommands,ProductCommands

var (
	ErrProductNotFound = errs.Category("product not found", errs.ErrNotFound)
	ErrHoldNotFound    = errs.Category("hold not found", errs.ErrNotFound)
	ErrOrderNotFound   = errs.Category("order not found", errs.ErrNotFound)
)

var tracer = otel.Tracer("stock-hold-service/usecase/commands")

// notFoundAs swaps a repository NOT_FOUND for the command-level sentinel.
func notFoundAs(err error, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return sentinel
	}
	return err
}

func enqueueEvent(ctx context.Context, tx shared.Tx, eventType string, aggregateID uuid.UUID, data any, now time.Time) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errs.Wrap(err, "marshal event data")
	}
	payload, err := json.Marshal(shared.Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  now,
		Data:        raw,
	})
	if err != nil {
		return errs.Wrap(err, "marshal event")
	}
	_, err = tx.Jobs().Enqueue(ctx, shared.NewJob{
		Kind:    shared.JobKindPublishEvent,
		Payload: payload,
		RunAt:   now,
	})
	return err
}

func invalidateProduct(ctx context.Context, cache shared.ProductCacheInvalidator, log *slog.Logger, productID uuid.UUID) {
	if cache == nil {
		return
	}
	// The write is already committed; a stale entry only lives until its TTL.
	if err := cache.Invalidate(ctx, productID); err != nil {
		log.Warn("failed to invalidate product cache", "product_id", productID, "error", err)
	}
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
