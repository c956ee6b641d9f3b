package commands_test

import (
	"context"
	"sync"
	"testing"

	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queriesPage(limit int) queries.Page { return queries.Page{Limit: limit} }

func TestApplyPaymentResult(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		outcome order.PaymentOutcome
		want    order.Status
	}{
		{name: "paid completes", outcome: order.OutcomePaid, want: order.StatusCompleted},
		{name: "failed cancels", outcome: order.OutcomeFailed, want: order.StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			productID := f.createProduct(t, 3)
			o := f.createOrder(t, productID)

			res, err := f.payments.ApplyPaymentResult(ctx, commands.ApplyPaymentInput{
				OrderID: o.OrderID, EventID: "evt_1", Outcome: tc.outcome,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Status)
			assert.False(t, res.Duplicate)

			view, err := f.store.OrderReads().FindByID(ctx, o.OrderID)
			require.NoError(t, err)
			assert.Equal(t, string(tc.want), view.Status)
			require.NotNil(t, view.PaymentIdempotencyKey)
			assert.Equal(t, "evt_1", *view.PaymentIdempotencyKey)

			// a failed payment does not restock
			assert.Equal(t, 2, f.available(t, productID))
		})
	}
}

func TestApplyPaymentResult_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	productID := f.createProduct(t, 3)
	o := f.createOrder(t, productID)

	_, err := f.payments.ApplyPaymentResult(ctx, commands.ApplyPaymentInput{OrderID: uuid.New(), EventID: "e", Outcome: order.OutcomePaid})
	require.ErrorIs(t, err, commands.ErrOrderNotFound)

	_, err = f.payments.ApplyPaymentResult(ctx, commands.ApplyPaymentInput{OrderID: o.OrderID, EventID: "  ", Outcome: order.OutcomePaid})
	require.ErrorIs(t, err, order.ErrEmptyEventID)

	_, err = f.payments.ApplyPaymentResult(ctx, commands.ApplyPaymentInput{OrderID: o.OrderID, EventID: "e", Outcome: "refunded"})
	require.ErrorIs(t, err, order.ErrInvalidOutcome)

	_, err = f.payments.ApplyPaymentResult(ctx, commands.ApplyPaymentInput{OrderID: o.OrderID, EventID: "evt_1", Outcome: order.OutcomePaid})
	require.NoError(t, err)

	_, err = f.payments.ApplyPaymentResult(ctx, commands.ApplyPaymentInput{OrderID: o.OrderID, EventID: "evt_2", Outcome: order.OutcomeFailed})
	require.ErrorIs(t, err, order.ErrOrderNotPending)

	view, err := f.store.OrderReads().FindByID(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusCompleted), view.Status)
}

func TestApplyPaymentResult_DuplicateDeliveries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	productID := f.createProduct(t, 3)
	o := f.createOrder(t, productID)
	eventsBefore := len(f.jobs("event.publish"))

	const deliveries = 25
	results := make(chan *commands.ApplyPaymentResult, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.payments.ApplyPaymentResult(ctx, commands.ApplyPaymentInput{
				OrderID: o.OrderID, EventID: "evt_dup", Outcome: order.OutcomePaid,
			})
			if assert.NoError(t, err) {
				results <- res
			}
		}()
	}
	wg.Wait()
	close(results)

	applied := 0
	for res := range results {
		assert.Equal(t, order.StatusCompleted, res.Status)
		if !res.Duplicate {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Len(t, f.jobs("event.publish"), eventsBefore+1)
}
