package pricing

import (
	"fmt"

	"storefront-sync/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is exclusive: a subtotal of exactly 50 still pays shipping
	FreeShippingThreshold = decimal.NewFromInt(50)
	ShippingFee           = decimal.RequireFromString("4.99")
)

// LineItem is a cart line joined with its product.
// Product is nil when the catalog no longer has it.
type LineItem struct {
	ProductID int64
	Quantity  int
	Product   *models.Product
	LineTotal decimal.Decimal
}

// DisplayName is the product name, or a placeholder for an unresolved product
func (l LineItem) DisplayName() string {
	if l.Product != nil {
		return l.Product.Name
	}
	return fmt.Sprintf("Product #%d", l.ProductID)
}

// Resolved reports whether the line's product was found
func (l LineItem) Resolved() bool {
	return l.Product != nil
}

// Totals is the order summary of a cart
type Totals struct {
	Lines    []LineItem
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// FreeShipping reports whether the order ships for free
func (t Totals) FreeShipping() bool {
	return t.Shipping.IsZero()
}

// Lines joins cart items with products by id, keeping cart order
func Lines(items []models.CartItem, products []models.Product) []LineItem {
	byID := make(map[int64]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		line := LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Product:   byID[it.ProductID],
			LineTotal: decimal.Zero,
		}
		if line.Product != nil {
			line.LineTotal = line.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		lines = append(lines, line)
	}
	return lines
}

// Compute builds the order summary. Amounts are exact; round only for display.
func Compute(items []models.CartItem, products []models.Product) Totals {
	lines := Lines(items, products)

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}

	return Totals{
		Lines:    lines,
		Subtotal: subtotal,
		Shipping: ShippingFor(subtotal),
		Total:    subtotal.Add(ShippingFor(subtotal)),
	}
}

// ComputeCart is Compute over a possibly absent cart snapshot
func ComputeCart(cart *models.Cart, products []models.Product) Totals {
	if cart == nil {
		return Compute(nil, products)
	}
	return Compute(cart.Items, products)
}

// ShippingFor returns the shipping fee owed on subtotal
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return ShippingFee
}

// Format renders an amount with two fraction digits
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
