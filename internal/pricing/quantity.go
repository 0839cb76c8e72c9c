package pricing

import "storefront-sync/internal/models"

// Decrement lowers a quantity by one but never below one
func Decrement(quantity int) int {
	if quantity-1 < 1 {
		return 1
	}
	return quantity - 1
}

// Increment raises a quantity by one; the server owns any upper bound
func Increment(quantity int) int {
	return quantity + 1
}

// ItemCount sums the quantities of every line, zero for an absent cart
func ItemCount(cart *models.Cart) int {
	if cart == nil {
		return 0
	}
	n := 0
	for _, it := range cart.Items {
		n += it.Quantity
	}
	return n
}
