package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		want     string
	}{
		{name: "no discount", price: "49.99", want: "49.99"},
		{name: "discount lower", price: "49.99", discount: "39.99", want: "39.99"},
		{name: "discount equal is ignored", price: "49.99", discount: "49.99", want: "49.99"},
		{name: "discount higher is ignored", price: "49.99", discount: "59.99", want: "49.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: dec(tt.price)}
			if tt.discount != "" {
				d := dec(tt.discount)
				p.DiscountPrice = &d
			}
			assert.True(t, dec(tt.want).Equal(p.EffectivePrice()))
		})
	}
}

func TestListQueryNormalize(t *testing.T) {
	q := ListQuery{Page: 0, PageSize: -3}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
}

func TestIDIndex(t *testing.T) {
	ix := NewIDIndex([]string{"p1", "p2"})
	assert.True(t, ix.MayContain("p1"))
	assert.True(t, ix.MayContain("p2"))
	assert.False(t, ix.MayContain("definitely-not-a-product"))

	ix.Add("p3")
	assert.True(t, ix.MayContain("p3"))

	var nilIndex *IDIndex
	assert.True(t, nilIndex.MayContain("anything"))
}
