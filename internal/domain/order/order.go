package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. Transitions only move forward:
// Processing -> Paid -> Delivered.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusPaid       Status = "Paid"
	StatusDelivered  Status = "Delivered"
)

// Sentinel errors for order validation and transitions.
var (
	ErrNotFound         = errors.New("order not found")
	ErrEmptyItems       = errors.New("order items required")
	ErrForbidden        = errors.New("not authorized for this order")
	ErrAlreadyPaid      = errors.New("order already paid")
	ErrNotPaid          = errors.New("order has not been paid")
	ErrAlreadyDelivered = errors.New("order already delivered")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// OutOfStockError indicates a line requested more units than are available.
// Placement is all-or-nothing: when any line fails, no stock is decremented.
type OutOfStockError struct {
	ProductID string
	Name      string
	Stock     int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s is out of stock: %d available", e.Name, e.Stock)
}

// Item is a line captured at order time. Snapshot fields (name, image,
// price) must not change when the source product is later edited.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// ShippingAddress is the destination entered during checkout.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentResult holds the metadata from an external payment confirmation.
// The ID doubles as the idempotency key for the Paid transition.
type PaymentResult struct {
	ID         string
	Status     string
	UpdateTime string
	Email      string
}

// Order is an immutable record of a placed order. Only the payment and
// delivery transitions mutate it after creation.
type Order struct {
	ID              string
	UserID          uuid.UUID
	Items           []Item
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
	TotalPrice      decimal.Decimal
	Status          Status
	IsPaid          bool
	PaidAt          *time.Time
	PaymentResult   *PaymentResult
	IsDelivered     bool
	DeliveredAt     *time.Time
	CreatedAt       time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order, decrements stock for every item with a
	// conditional update (stock >= quantity), and clears the owner's cart,
	// all in one transaction. When any line cannot be covered it returns an
	// *OutOfStockError and nothing is written.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	// SetPaid persists the payment fields of o.
	SetPaid(ctx context.Context, o *Order) error
	// SetDelivered persists the delivery fields of o.
	SetDelivered(ctx context.Context, o *Order) error
}
