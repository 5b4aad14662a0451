package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/trendmart/storefront/internal/domain/product"
)

// Service maintains per-user carts and keeps client and server views
// reconciled. Stock checks here are advisory reads of the catalog; nothing
// is reserved until order placement.
type Service struct {
	carts    Repository
	products product.Repository
	index    *product.IDIndex
}

// NewService creates a cart Service. The id index may be nil, in which case
// every lookup goes straight to the catalog.
func NewService(carts Repository, products product.Repository, index *product.IDIndex) *Service {
	return &Service{carts: carts, products: products, index: index}
}

// Get returns the user's current cart.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	return s.carts.Get(ctx, userID)
}

// lookupProduct resolves a product id, short-circuiting ids the index has
// never seen.
func (s *Service) lookupProduct(ctx context.Context, id string) (*product.Product, error) {
	if !s.index.MayContain(id) {
		return nil, product.ErrNotFound
	}
	return s.products.GetByID(ctx, id)
}

// Add puts quantity units of a product into the cart, accumulating with any
// existing line for the same product.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrQuantityTooLow
	}

	p, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.carts.Mutate(ctx, userID, func(c *Cart) error {
		newQty := quantity
		idx := c.find(productID)
		if idx >= 0 {
			newQty += c.Lines[idx].Quantity
		}
		if p.Stock < newQty {
			return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
		}

		if idx >= 0 {
			c.Lines[idx].Quantity = newQty
		} else {
			c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
		}
		return nil
	})
}

// UpdateQuantity replaces the quantity of an existing line.
func (s *Service) UpdateQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, ErrQuantityTooLow
	}

	p, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock < quantity {
		return nil, &InsufficientStockError{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
	}

	return s.carts.Mutate(ctx, userID, func(c *Cart) error {
		idx := c.find(productID)
		if idx < 0 {
			return ErrLineNotFound
		}
		c.Lines[idx].Quantity = quantity
		return nil
	})
}

// Remove deletes the line for productID. Removing an absent line is a no-op.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, productID string) (*Cart, error) {
	return s.carts.Mutate(ctx, userID, func(c *Cart) error {
		idx := c.find(productID)
		if idx < 0 {
			return ErrUnchanged
		}
		c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
		return nil
	})
}

// Clear empties the user's cart.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.carts.Clear(ctx, userID)
}

// Sync reconciles a client-local cart with the server cart after login.
// The server cart wins when it exists and is non-empty; otherwise the local
// lines are validated against the catalog and promoted to the server cart.
// Local lines naming unknown products or out-of-stock products are dropped;
// quantities above available stock are clamped.
func (s *Service) Sync(ctx context.Context, userID uuid.UUID, local []Line) (*Cart, error) {
	// Validate the submitted lines against the catalog before taking the
	// cart lock; the lookups are reads and need no serialization.
	promoted := make([]Line, 0, len(local))
	seen := make(map[string]struct{}, len(local))
	for _, l := range local {
		if l.Quantity < 1 {
			continue
		}
		if _, dup := seen[l.ProductID]; dup {
			continue
		}
		p, err := s.lookupProduct(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if p.Stock < 1 {
			continue
		}
		qty := l.Quantity
		if qty > p.Stock {
			qty = p.Stock
		}
		seen[l.ProductID] = struct{}{}
		promoted = append(promoted, Line{ProductID: l.ProductID, Quantity: qty})
	}

	return s.carts.Mutate(ctx, userID, func(c *Cart) error {
		if !c.IsEmpty() || len(promoted) == 0 {
			return ErrUnchanged
		}
		c.Lines = promoted
		return nil
	})
}
