package state

import (
	"context"

	"storefront-sync/internal/models"
	"storefront-sync/internal/pricing"
)

// CartAPI is the part of the storefront client the cart state needs
type CartAPI interface {
	GetCart(ctx context.Context) (*models.Cart, error)
	AddCartItem(ctx context.Context, productID int64, quantity int) (*models.Cart, error)
	SetCartItemQuantity(ctx context.Context, productID int64, quantity int) (*models.Cart, error)
	RemoveCartItem(ctx context.Context, productID int64) (*models.Cart, error)
}

// CartState is the cart resource plus its mutations
type CartState struct {
	*Resource[models.Cart]
	api CartAPI
}

// NewCartState creates an unloaded cart state
func NewCartState(api CartAPI, opts Options) *CartState {
	return &CartState{
		Resource: NewResource("cart", "Failed to load cart", api.GetCart, opts),
		api:      api,
	}
}

// Add adds quantity units of a product. A quantity below one adds a single unit.
func (c *CartState) Add(ctx context.Context, productID int64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	c.mutate(ctx, "add", "Failed to add to cart", func(ctx context.Context) (*models.Cart, error) {
		return c.api.AddCartItem(ctx, productID, quantity)
	})
}

// SetQuantity sets a line's quantity; the server validates the value
func (c *CartState) SetQuantity(ctx context.Context, productID int64, quantity int) {
	c.mutate(ctx, "set_quantity", "Failed to update cart", func(ctx context.Context) (*models.Cart, error) {
		return c.api.SetCartItemQuantity(ctx, productID, quantity)
	})
}

// Remove deletes a line
func (c *CartState) Remove(ctx context.Context, productID int64) {
	c.mutate(ctx, "remove", "Failed to remove from cart", func(ctx context.Context) (*models.Cart, error) {
		return c.api.RemoveCartItem(ctx, productID)
	})
}

// Increment raises a line's quantity by one. It does nothing for a product not in the snapshot.
func (c *CartState) Increment(ctx context.Context, productID int64) {
	q, ok := c.Quantity(productID)
	if !ok {
		return
	}
	c.SetQuantity(ctx, productID, pricing.Increment(q))
}

// Decrement lowers a line's quantity by one, never below one.
// Removing a line is a separate, explicit action.
func (c *CartState) Decrement(ctx context.Context, productID int64) {
	q, ok := c.Quantity(productID)
	if !ok {
		return
	}
	next := pricing.Decrement(q)
	if next == q {
		return
	}
	c.SetQuantity(ctx, productID, next)
}

// Quantity returns the snapshot quantity of a line
func (c *CartState) Quantity(productID int64) (int, bool) {
	item, ok := c.Snapshot().Item(productID)
	return item.Quantity, ok
}

// ItemCount is the number of units in the snapshot, zero when absent
func (c *CartState) ItemCount() int {
	return pricing.ItemCount(c.Snapshot())
}
