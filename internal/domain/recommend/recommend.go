package recommend

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is a single recommendation shown to a user. Recommendations are
// display-only suggestions, not catalog products, so they carry their own
// denormalized fields.
type Item struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
}

// Provider produces fresh recommendations for a user, typically by calling
// an external service.
type Provider interface {
	Recommend(ctx context.Context, userID string) ([]Item, error)
}

// Cache stores recommendation lists per user. Get returns (nil, false, nil)
// on a miss.
type Cache interface {
	Get(ctx context.Context, userID string) ([]Item, bool, error)
	Set(ctx context.Context, userID string, items []Item) error
}

// DefaultItems returns the static fallback list served when the provider is
// unavailable and nothing is cached.
func DefaultItems() []Item {
	return []Item{
		{
			Name:        "Classic White Sneakers",
			Description: "Timeless white sneakers that go with everything",
			Image:       "/images/recommend/sneakers.jpg",
			Price:       decimal.RequireFromString("79.99"),
		},
		{
			Name:        "Slim Fit Jeans",
			Description: "Comfortable stretch denim with a modern cut",
			Image:       "/images/recommend/jeans.jpg",
			Price:       decimal.RequireFromString("59.99"),
		},
		{
			Name:        "Oversized Blazer",
			Description: "A versatile layer for work or weekends",
			Image:       "/images/recommend/blazer.jpg",
			Price:       decimal.RequireFromString("129.99"),
		},
		{
			Name:        "Cashmere Sweater",
			Description: "Soft, warm and made to last",
			Image:       "/images/recommend/sweater.jpg",
			Price:       decimal.RequireFromString("149.99"),
		},
		{
			Name:        "Leather Crossbody Bag",
			Description: "Compact bag in full-grain leather",
			Image:       "/images/recommend/bag.jpg",
			Price:       decimal.RequireFromString("89.99"),
		},
	}
}
