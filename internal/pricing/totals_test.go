package pricing

import (
	"testing"

	"storefront-sync/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price string) models.Product {
	return models.Product{ID: id, Name: "P", Price: decimal.RequireFromString(price)}
}

func TestCompute_EmptyCart(t *testing.T) {
	totals := Compute(nil, nil)

	assert.Equal(t, "0.00", Format(totals.Subtotal))
	assert.Equal(t, "4.99", Format(totals.Shipping))
	assert.Equal(t, "4.99", Format(totals.Total))
	assert.False(t, totals.FreeShipping())
	assert.Empty(t, totals.Lines)
}

func TestCompute_SingleLineOverThreshold(t *testing.T) {
	products := []models.Product{product(1, "20.00")}
	items := []models.CartItem{{ProductID: 1, Quantity: 3}}

	totals := Compute(items, products)

	assert.Equal(t, "60.00", Format(totals.Subtotal))
	assert.True(t, totals.Shipping.IsZero())
	assert.Equal(t, "60.00", Format(totals.Total))
	assert.True(t, totals.FreeShipping())
}

func TestShippingFor_Boundary(t *testing.T) {
	tests := []struct {
		subtotal string
		want     string
	}{
		{"0", "4.99"},
		{"49.99", "4.99"},
		{"50", "4.99"},
		{"50.00", "4.99"},
		{"50.001", "0.00"},
		{"50.01", "0.00"},
		{"120", "0.00"},
	}
	for _, tt := range tests {
		got := ShippingFor(decimal.RequireFromString(tt.subtotal))
		assert.Equal(t, tt.want, Format(got), "subtotal %s", tt.subtotal)
	}
}

func TestCompute_UnresolvedProductContributesZero(t *testing.T) {
	products := []models.Product{product(1, "10.00")}
	items := []models.CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 99, Quantity: 5},
	}

	totals := Compute(items, products)

	require.Len(t, totals.Lines, 2)
	assert.True(t, totals.Lines[0].Resolved())
	assert.False(t, totals.Lines[1].Resolved())
	assert.Equal(t, "Product #99", totals.Lines[1].DisplayName())
	assert.True(t, totals.Lines[1].LineTotal.IsZero())
	assert.Equal(t, "20.00", Format(totals.Subtotal))
	assert.Equal(t, "24.99", Format(totals.Total))
}

func TestCompute_NoIntermediateRounding(t *testing.T) {
	products := []models.Product{product(1, "0.333"), product(2, "0.333")}
	items := []models.CartItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 3},
	}

	totals := Compute(items, products)

	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("1.998")))
	assert.Equal(t, "2.00", Format(totals.Subtotal))
}

func TestCompute_AddingPricedItemIncreasesSubtotal(t *testing.T) {
	products := []models.Product{product(1, "12.50"), product(2, "0.01")}
	base := []models.CartItem{{ProductID: 1, Quantity: 1}}

	before := Compute(base, products).Subtotal
	after := Compute(append(base, models.CartItem{ProductID: 2, Quantity: 1}), products).Subtotal

	assert.True(t, after.GreaterThan(before))
}

func TestComputeCart_AbsentSnapshot(t *testing.T) {
	totals := ComputeCart(nil, []models.Product{product(1, "5")})
	assert.Equal(t, "4.99", Format(totals.Total))
}

func TestQuantityClamp(t *testing.T) {
	assert.Equal(t, 1, Decrement(1))
	assert.Equal(t, 1, Decrement(0))
	assert.Equal(t, 1, Decrement(-4))
	assert.Equal(t, 1, Decrement(2))
	assert.Equal(t, 4, Decrement(5))
	assert.Equal(t, 6, Increment(5))
}

func TestItemCount(t *testing.T) {
	assert.Equal(t, 0, ItemCount(nil))
	assert.Equal(t, 5, ItemCount(&models.Cart{Items: []models.CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	}}))
}
