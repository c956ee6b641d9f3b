package response

import (
	"time"

	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	TotalStock     int             `json:"total_stock"`
	AvailableStock int             `json:"available_stock"`
	Price          decimal.Decimal `json:"price" swaggertype:"string"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type HoldCreatedResponse struct {
	HoldID        uuid.UUID `json:"hold_id"`
	HoldExpiresAt time.Time `json:"hold_expires_at"`
}

type HoldResponse struct {
	ID            uuid.UUID         `json:"id"`
	ProductID     uuid.UUID         `json:"product_id"`
	Quantity      int               `json:"quantity"`
	HoldExpiresAt time.Time         `json:"hold_expires_at"`
	ReleasedAt    *time.Time        `json:"released_at,omitempty"`
	UsedAt        *time.Time        `json:"used_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	State         queries.HoldState `json:"state" swaggertype:"string"`
}

type OrderCreatedResponse struct {
	OrderID uuid.UUID    `json:"order_id"`
	Status  order.Status `json:"status" swaggertype:"string"`
}

type OrderResponse struct {
	ID                    uuid.UUID `json:"id"`
	HoldID                uuid.UUID `json:"hold_id"`
	Status                string    `json:"status"`
	PaymentIdempotencyKey *string   `json:"payment_idempotency_key,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type PaymentWebhookResponse struct {
	OrderID   uuid.UUID    `json:"order_id"`
	Status    order.Status `json:"status" swaggertype:"string"`
	Duplicate bool         `json:"duplicate"`
	Message   string       `json:"message"`
}

type ListResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func FromProductView(v *queries.ProductView) (*ProductResponse, error) {
	var res ProductResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

func FromHoldView(v *queries.HoldView) (*HoldResponse, error) {
	var res HoldResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

func FromOrderView(v *queries.OrderView) (*OrderResponse, error) {
	var res OrderResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	return &res, nil
}

// FromList copies a page of views into response items.
func FromList[V any, R any](views []*V, next *queries.Cursor) (*ListResponse[R], error) {
	items := make([]R, len(views))
	for i, v := range views {
		if err := copier.Copy(&items[i], v); err != nil {
			return nil, err
		}
	}
	res := &ListResponse[R]{Items: items}
	if next != nil {
		res.NextCursor = next.After
	}
	return res, nil
}

func FromCreateHoldResult(r *commands.CreateHoldResult) *HoldCreatedResponse {
	return &HoldCreatedResponse{HoldID: r.HoldID, HoldExpiresAt: r.HoldExpiresAt}
}

func FromCreateOrderResult(r *commands.CreateOrderResult) *OrderCreatedResponse {
	return &OrderCreatedResponse{OrderID: r.OrderID, Status: r.Status}
}

func FromApplyPaymentResult(r *commands.ApplyPaymentResult) *PaymentWebhookResponse {
	msg := "Payment processed"
	if r.Duplicate {
		msg = "Already processed"
	}
	return &PaymentWebhookResponse{
		OrderID:   r.OrderID,
		Status:    r.Status,
		Duplicate: r.Duplicate,
		Message:   msg,
	}
}
