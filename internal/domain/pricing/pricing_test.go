package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQuote_WorkedExample(t *testing.T) {
	// cart = [{price:50, qty:2}, {price:10, qty:1}] -> subtotal 110,
	// free shipping, 15% tax = 16.5, total 126.5.
	q := DefaultConfig().Quote([]Line{
		{UnitPrice: dec("50"), Quantity: 2},
		{UnitPrice: dec("10"), Quantity: 1},
	})

	assert.True(t, dec("110").Equal(q.ItemsPrice), "items: %s", q.ItemsPrice)
	assert.True(t, decimal.Zero.Equal(q.ShippingPrice), "shipping: %s", q.ShippingPrice)
	assert.True(t, dec("16.5").Equal(q.TaxPrice), "tax: %s", q.TaxPrice)
	assert.True(t, dec("126.5").Equal(q.TotalPrice), "total: %s", q.TotalPrice)
}

func TestQuote_ShippingThresholdIsStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaxEnabled = false

	// Exactly at the threshold still pays shipping.
	q := cfg.Quote([]Line{{UnitPrice: dec("100"), Quantity: 1}})
	assert.True(t, dec("10").Equal(q.ShippingPrice))
	assert.True(t, dec("110").Equal(q.TotalPrice))

	// One cent over is free.
	q = cfg.Quote([]Line{{UnitPrice: dec("100.01"), Quantity: 1}})
	assert.True(t, decimal.Zero.Equal(q.ShippingPrice))
}

func TestQuote_AlternateFlatRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShippingFlat = dec("5.99")
	cfg.TaxEnabled = false

	q := cfg.Quote([]Line{{UnitPrice: dec("20"), Quantity: 1}})
	assert.True(t, dec("5.99").Equal(q.ShippingPrice))
	assert.True(t, dec("25.99").Equal(q.TotalPrice))
}

func TestQuote_TaxDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaxEnabled = false

	q := cfg.Quote([]Line{{UnitPrice: dec("200"), Quantity: 1}})
	assert.True(t, decimal.Zero.Equal(q.TaxPrice))
	assert.True(t, dec("200").Equal(q.TotalPrice))
}

func TestQuote_TaxRounding(t *testing.T) {
	// 33.33 * 0.15 = 4.9995 -> 5.00 at two places.
	cfg := DefaultConfig()
	q := cfg.Quote([]Line{{UnitPrice: dec("33.33"), Quantity: 1}})
	assert.True(t, dec("5.00").Equal(q.TaxPrice), "tax: %s", q.TaxPrice)
}

func TestQuote_EmptyCart(t *testing.T) {
	q := DefaultConfig().Quote(nil)
	assert.True(t, decimal.Zero.Equal(q.ItemsPrice))
	// An empty cart never reaches checkout, but the math stays total = flat + tax(0).
	assert.True(t, dec("10").Equal(q.TotalPrice))
}
