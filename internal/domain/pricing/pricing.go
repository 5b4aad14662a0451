// Package pricing derives order totals from a cart snapshot. It is pure
// computation: no storage, no clock, no side effects.
package pricing

import "github.com/shopspring/decimal"

// Config holds the pricing rule set. Two flat-rate shipping configurations
// are in production use (10.00 and 5.99); the threshold and tax toggle vary
// per deployment as well.
type Config struct {
	// FreeShippingThreshold waives shipping when the subtotal strictly
	// exceeds it.
	FreeShippingThreshold decimal.Decimal
	// ShippingFlat is charged when the subtotal does not exceed the threshold.
	ShippingFlat decimal.Decimal
	// TaxRate is applied to the subtotal when TaxEnabled is set.
	TaxRate    decimal.Decimal
	TaxEnabled bool
}

// DefaultConfig returns the standard rule set: free shipping above 100,
// 10.00 flat rate otherwise, 15% tax.
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFlat:          decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.15"),
		TaxEnabled:            true,
	}
}

// Line is one cart line with its effective unit price already resolved.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the priced breakdown of a cart.
type Quote struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Quote computes subtotal, shipping, tax, and total for the given lines.
// All components are rounded to 2 decimal places.
func (c Config) Quote(lines []Line) Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := c.ShippingFlat
	if subtotal.GreaterThan(c.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	shipping = shipping.Round(2)

	tax := decimal.Zero
	if c.TaxEnabled {
		tax = subtotal.Mul(c.TaxRate).Round(2)
	}

	return Quote{
		ItemsPrice:    subtotal,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    subtotal.Add(shipping).Add(tax).Round(2),
	}
}
