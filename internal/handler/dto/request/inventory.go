package request

import (
	"strings"

	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name           string           `json:"name" binding:"required,max=255"`
	TotalStock     *int             `json:"total_stock" binding:"required,min=0"`
	AvailableStock *int             `json:"available_stock" binding:"omitempty,min=0"`
	Price          *decimal.Decimal `json:"price" binding:"required"`
}

func (r CreateProductRequest) ToInput() commands.CreateProductInput {
	return commands.CreateProductInput{
		Name:           strings.TrimSpace(r.Name),
		TotalStock:     *r.TotalStock,
		AvailableStock: r.AvailableStock,
		Price:          *r.Price,
	}
}

type PurchaseRequest struct {
	Amount int `json:"amount" binding:"required,min=1"`
}

type CreateHoldRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

func (r CreateHoldRequest) ToInput() commands.CreateHoldInput {
	return commands.CreateHoldInput{ProductID: r.ProductID, Quantity: r.Quantity}
}

type CreateOrderRequest struct {
	HoldID uuid.UUID `json:"hold_id" binding:"required"`
}

type PaymentWebhookRequest struct {
	EventID string    `json:"event_id" binding:"required,max=255"`
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Status  string    `json:"status" binding:"required,oneof=paid failed"`
}

func (r PaymentWebhookRequest) ToInput() commands.ApplyPaymentInput {
	return commands.ApplyPaymentInput{
		OrderID: r.OrderID,
		EventID: strings.TrimSpace(r.EventID),
		Outcome: order.PaymentOutcome(r.Status),
	}
}

// ListQuery is bound from the query string of list endpoints.
type ListQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}
