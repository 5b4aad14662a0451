package wishlist

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Sentinel errors for wishlist operations.
var (
	ErrDuplicate = errors.New("product already in wishlist")
	ErrNotFound  = errors.New("wishlist item not found")
)

// Item is a saved product reference. Items keep their insertion order.
type Item struct {
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}

// Repository defines persistence operations for per-user wishlists.
type Repository interface {
	// List returns the user's items in insertion order, oldest first.
	List(ctx context.Context, userID uuid.UUID) ([]Item, error)
	// Add inserts the item. Adding a product already present returns
	// ErrDuplicate.
	Add(ctx context.Context, userID uuid.UUID, item Item) error
	// Remove deletes the item for productID. Removing an absent item is a
	// no-op.
	Remove(ctx context.Context, userID uuid.UUID, productID string) error
}
