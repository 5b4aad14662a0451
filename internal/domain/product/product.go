package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID            string
	Name          string
	Brand         string
	Category      string
	Description   string
	Image         string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
	Rating        decimal.Decimal
	NumReviews    int
	CreatedAt     time.Time
}

// EffectivePrice returns the discount price when one is set and it is lower
// than the list price, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}

// SortKey selects the ordering of catalog listings.
type SortKey string

const (
	// SortDefault orders by insertion (product id).
	SortDefault SortKey = ""
	// SortPriceAsc orders by list price, cheapest first.
	SortPriceAsc SortKey = "price-asc"
	// SortPriceDesc orders by list price, most expensive first.
	SortPriceDesc SortKey = "price-desc"
	// SortNewest orders by creation time, newest first.
	SortNewest SortKey = "newest"
)

// DefaultPageSize is the catalog page size when none is requested.
const DefaultPageSize = 10

// ListQuery holds catalog filter, sort, and pagination parameters.
// All provided filters are combined conjunctively.
type ListQuery struct {
	Category  string
	Brand     string
	PriceMin  *decimal.Decimal
	PriceMax  *decimal.Decimal
	MinRating *decimal.Decimal
	Sort      SortKey
	Page      int
	PageSize  int
}

// Normalize clamps pagination to sane values.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
}

// ListResult is one page of catalog results.
type ListResult struct {
	Products []Product
	Page     int
	Pages    int
	Count    int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	Search(ctx context.Context, keyword string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	ListIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
