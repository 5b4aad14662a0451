package wishlist

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/trendmart/storefront/internal/domain/cart"
	"github.com/trendmart/storefront/internal/domain/product"
)

// CartAdder is the slice of the cart service the wishlist needs for
// move-to-cart.
type CartAdder interface {
	Add(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*cart.Cart, error)
}

// Service maintains per-user wishlists.
type Service struct {
	items    Repository
	products product.Repository
	index    *product.IDIndex
	carts    CartAdder
	now      func() time.Time
}

// NewService creates a wishlist Service. The id index may be nil.
func NewService(items Repository, products product.Repository, index *product.IDIndex, carts CartAdder) *Service {
	return &Service{
		items:    items,
		products: products,
		index:    index,
		carts:    carts,
		now:      time.Now,
	}
}

// List returns the user's wishlist in insertion order.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	return s.items.List(ctx, userID)
}

// Add saves a product to the wishlist. The product must exist and must not
// already be present.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, productID string) (Item, error) {
	if !s.index.MayContain(productID) {
		return Item{}, product.ErrNotFound
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return Item{}, err
	}

	item := Item{ProductID: productID, AddedAt: s.now()}
	if err := s.items.Add(ctx, userID, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Remove deletes a product from the wishlist. Removing an absent product is
// a no-op.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, productID string) error {
	return s.items.Remove(ctx, userID, productID)
}

// MoveToCart adds one unit of the product to the user's cart and then
// removes it from the wishlist. The cart add runs first so a failure (say,
// the product went out of stock) leaves the wishlist intact.
func (s *Service) MoveToCart(ctx context.Context, userID uuid.UUID, productID string) (*cart.Cart, error) {
	c, err := s.carts.Add(ctx, userID, productID, 1)
	if err != nil {
		return nil, err
	}
	if err := s.items.Remove(ctx, userID, productID); err != nil {
		return nil, errors.Wrap(err, "remove wishlist item")
	}
	return c, nil
}
