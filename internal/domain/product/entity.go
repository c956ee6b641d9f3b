package product

import (
	"strings"
	"time"
	"unicode/utf8"

	"stock-hold-service/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const MaxNameLength = 255

var (
	ErrEmptyName         = errs.Category("product name cannot be empty", errs.ErrValidation)
	ErrNameTooLong       = errs.Category("product name exceeds maximum length", errs.ErrValidation)
	ErrNegativeStock     = errs.Category("stock cannot be negative", errs.ErrValidation)
	ErrAvailableAbove    = errs.Category("available stock cannot exceed total stock", errs.ErrValidation)
	ErrNegativePrice     = errs.Category("price cannot be negative", errs.ErrValidation)
	ErrInvalidQuantity   = errs.Category("quantity must be positive", errs.ErrValidation)
	ErrInsufficientStock = errs.Category("insufficient stock", errs.ErrInsufficientStock)
	ErrStockOverflow     = errs.Category("release would exceed total stock", errs.ErrInvalidState)
)

type Product struct {
	id             uuid.UUID
	name           string
	totalStock     int
	availableStock int
	price          decimal.Decimal
	createdAt      time.Time
	updatedAt      time.Time
}

func NewProduct(name string, totalStock, availableStock int, price decimal.Decimal, now time.Time) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}
	if totalStock < 0 || availableStock < 0 {
		return nil, ErrNegativeStock
	}
	if availableStock > totalStock {
		return nil, ErrAvailableAbove
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}

	return &Product{
		id:             uuid.New(),
		name:           name,
		totalStock:     totalStock,
		availableStock: availableStock,
		price:          price,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructProduct(id uuid.UUID, name string, totalStock, availableStock int, price decimal.Decimal, createdAt, updatedAt time.Time) *Product {
	return &Product{
		id:             id,
		name:           name,
		totalStock:     totalStock,
		availableStock: availableStock,
		price:          price,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// Reserve takes qty units out of the available pool for a hold.
func (p *Product) Reserve(qty int, now time.Time) error {
	return p.take(qty, now)
}

// Purchase takes amount units out of the available pool without a hold.
func (p *Product) Purchase(amount int, now time.Time) error {
	return p.take(amount, now)
}

// Release returns qty units previously taken by Reserve.
func (p *Product) Release(qty int, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.availableStock+qty > p.totalStock {
		return ErrStockOverflow
	}
	p.availableStock += qty
	p.updatedAt = now
	return nil
}

func (p *Product) take(qty int, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.availableStock < qty {
		return ErrInsufficientStock
	}
	p.availableStock -= qty
	p.updatedAt = now
	return nil
}

func (p *Product) ID() uuid.UUID          { return p.id }
func (p *Product) Name() string           { return p.name }
func (p *Product) TotalStock() int        { return p.totalStock }
func (p *Product) AvailableStock() int    { return p.availableStock }
func (p *Product) Price() decimal.Decimal { return p.price }
func (p *Product) CreatedAt() time.Time   { return p.createdAt }
func (p *Product) UpdatedAt() time.Time   { return p.updatedAt }

// Clone returns an independent copy; stores hand these out so callers cannot
// mutate committed state through a shared pointer.
func (p *Product) Clone() *Product {
	c := *p
	return &c
}
