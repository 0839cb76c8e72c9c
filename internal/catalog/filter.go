package catalog

import (
	"strings"

	"storefront-sync/internal/models"
)

// Filter returns the products whose name, category and description contain
// query, case-insensitively. Order is preserved. A blank query returns
// products unchanged.
func Filter(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}

	matched := make([]models.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, q) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Matches reports whether p matches an already trimmed, lower-cased query
func Matches(p models.Product, q string) bool {
	haystack := strings.ToLower(p.Name + " " + p.Category + " " + p.Description)
	return strings.Contains(haystack, q)
}

// Featured returns at most n products from the start of the catalog
func Featured(products []models.Product, n int) []models.Product {
	if n <= 0 {
		return nil
	}
	if len(products) < n {
		return products
	}
	return products[:n]
}

// WishlistProducts resolves wishlist ids against the catalog, in wishlist
// order, skipping ids the catalog does not have
func WishlistProducts(ids []int64, products []models.Product) []models.Product {
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// CanAddToCart is false for products that are out of stock
func CanAddToCart(p models.Product) bool {
	return p.InventoryStatus != models.InventoryOutOfStock
}
