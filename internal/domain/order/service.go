package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/trendmart/storefront/internal/domain/auth"
	"github.com/trendmart/storefront/internal/domain/pricing"
	"github.com/trendmart/storefront/internal/domain/product"
)

// LineRequest is one requested (product, quantity) pair.
type LineRequest struct {
	ProductID string
	Quantity  int
}

// PlaceRequest holds the input for placing an order. Totals are never taken
// from the client; they are recomputed from current catalog prices.
type PlaceRequest struct {
	UserID          uuid.UUID
	Items           []LineRequest
	ShippingAddress ShippingAddress
	PaymentMethod   string
}

// Service encapsulates the order workflow: placement, payment confirmation,
// delivery, and authorized retrieval.
type Service struct {
	products product.Repository
	index    *product.IDIndex
	orders   Repository
	pricing  pricing.Config
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, index *product.IDIndex, orders Repository, cfg pricing.Config) *Service {
	return &Service{
		products: products,
		index:    index,
		orders:   orders,
		pricing:  cfg,
		now:      time.Now,
	}
}

// Place validates the requested lines against the catalog, prices them,
// and persists an immutable order. Stock is decremented atomically per line
// inside the repository transaction; any shortfall rejects the whole order
// and leaves every product's stock untouched. The owner's cart is cleared in
// the same transaction.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		if !s.index.MayContain(item.ProductID) {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Build snapshot items and pricing lines; pre-check stock so obviously
	// uncoverable orders fail before the transaction. The conditional
	// decrement in the repository remains the authoritative check.
	items := make([]Item, len(req.Items))
	lines := make([]pricing.Line, len(req.Items))
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		if p.Stock < item.Quantity {
			return nil, &OutOfStockError{ProductID: p.ID, Name: p.Name, Stock: p.Stock}
		}

		price := p.EffectivePrice()
		items[i] = Item{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Price:     price,
			Quantity:  item.Quantity,
		}
		lines[i] = pricing.Line{UnitPrice: price, Quantity: item.Quantity}
	}

	quote := s.pricing.Quote(lines)

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      quote.ItemsPrice,
		ShippingPrice:   quote.ShippingPrice,
		TaxPrice:        quote.TaxPrice,
		TotalPrice:      quote.TotalPrice,
		Status:          StatusProcessing,
		CreatedAt:       s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		var oos *OutOfStockError
		if errors.As(err, &oos) {
			return nil, oos
		}
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// Get returns the order when the identity owns it or holds the admin role.
func (s *Service) Get(ctx context.Context, id string, ident auth.Identity) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != ident.UserID && !ident.IsAdmin() {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListByUser returns all orders owned by userID, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order. Callers must gate this behind the admin role.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}

// Pay applies an external payment confirmation to the order. The transition
// is idempotent on the confirmation id: repeating a confirmation that was
// already applied is a no-op, while a different confirmation for a paid
// order is rejected.
func (s *Service) Pay(ctx context.Context, id string, ident auth.Identity, result PaymentResult) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != ident.UserID && !ident.IsAdmin() {
		return nil, ErrForbidden
	}

	if o.IsPaid {
		if o.PaymentResult != nil && o.PaymentResult.ID == result.ID {
			return o, nil
		}
		return nil, ErrAlreadyPaid
	}

	paidAt := s.now()
	o.IsPaid = true
	o.PaidAt = &paidAt
	o.PaymentResult = &result
	o.Status = StatusPaid

	if err := s.orders.SetPaid(ctx, o); err != nil {
		return nil, errors.Wrap(err, "set paid")
	}
	return o, nil
}

// Deliver marks a paid order as delivered. The transition is irreversible
// and cannot be repeated.
func (s *Service) Deliver(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsPaid {
		return nil, ErrNotPaid
	}
	if o.IsDelivered {
		return nil, ErrAlreadyDelivered
	}

	deliveredAt := s.now()
	o.IsDelivered = true
	o.DeliveredAt = &deliveredAt
	o.Status = StatusDelivered

	if err := s.orders.SetDelivered(ctx, o); err != nil {
		return nil, errors.Wrap(err, "set delivered")
	}
	return o, nil
}
