package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	// ErrQuantityTooLow is returned for mutations requesting less than one unit.
	ErrQuantityTooLow = errors.New("quantity must be at least 1")
	// ErrLineNotFound is returned when updating a product that is not in the cart.
	ErrLineNotFound = errors.New("product not in cart")
)

// InsufficientStockError indicates the catalog cannot cover the requested
// quantity. This check is advisory; the authoritative check happens at order
// placement.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Stock     int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: %d available", e.Name, e.Stock)
}

// Line is one (product, quantity) pairing within a cart.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart holds a user's current lines, unique per product.
type Cart struct {
	UserID uuid.UUID
	Lines  []Line
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// find returns the index of the line for productID, or -1.
func (c *Cart) find(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// ErrUnchanged aborts a Mutate callback without writing. Mutate then returns
// the loaded cart and a nil error.
var ErrUnchanged = errors.New("cart unchanged")

// Repository persists one cart document per user. Implementations must
// serialize concurrent mutations to the same user's cart.
type Repository interface {
	// Get returns the user's cart, or an empty cart when none exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)
	// Mutate loads the user's cart, applies fn, and persists the result,
	// holding whatever lock serializes writers to that user for the whole
	// read-modify-write. A non-nil error from fn is returned as-is and
	// nothing is written; ErrUnchanged skips the write without failing.
	Mutate(ctx context.Context, userID uuid.UUID, fn func(*Cart) error) (*Cart, error)
	// Clear removes the user's cart document. Clearing an absent cart is a no-op.
	Clear(ctx context.Context, userID uuid.UUID) error
}
