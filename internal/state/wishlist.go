package state

import (
	"context"

	"storefront-sync/internal/models"
)

// WishlistAPI is the part of the storefront client the wishlist state needs
type WishlistAPI interface {
	GetWishlist(ctx context.Context) (*models.Wishlist, error)
	AddWishlistItem(ctx context.Context, productID int64) (*models.Wishlist, error)
	RemoveWishlistItem(ctx context.Context, productID int64) (*models.Wishlist, error)
}

// WishlistState is the wishlist resource plus its mutations.
// Membership lookups use a set rebuilt whenever the snapshot is replaced.
type WishlistState struct {
	*Resource[models.Wishlist]
	api WishlistAPI

	// guarded by Resource.mu
	members map[int64]struct{}
}

// NewWishlistState creates an unloaded wishlist state
func NewWishlistState(api WishlistAPI, opts Options) *WishlistState {
	w := &WishlistState{
		Resource: NewResource("wishlist", "Failed to load wishlist", api.GetWishlist, opts),
		api:      api,
	}
	w.onReplace = w.indexMembers
	return w
}

func (w *WishlistState) indexMembers(snapshot *models.Wishlist) {
	if snapshot == nil {
		w.members = nil
		return
	}
	members := make(map[int64]struct{}, len(snapshot.ProductIDs))
	for _, id := range snapshot.ProductIDs {
		members[id] = struct{}{}
	}
	w.members = members
}

// Has reports whether productID is in the current snapshot.
// It is false, not an error, while the wishlist is not loaded.
func (w *WishlistState) Has(productID int64) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.members[productID]
	return ok
}

// Count is the number of distinct products in the snapshot
func (w *WishlistState) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.members)
}

// Add saves a product to the wishlist
func (w *WishlistState) Add(ctx context.Context, productID int64) {
	w.mutate(ctx, "add", "Failed to add to wishlist", func(ctx context.Context) (*models.Wishlist, error) {
		return w.api.AddWishlistItem(ctx, productID)
	})
}

// Remove drops a product from the wishlist
func (w *WishlistState) Remove(ctx context.Context, productID int64) {
	w.mutate(ctx, "remove", "Failed to remove from wishlist", func(ctx context.Context) (*models.Wishlist, error) {
		return w.api.RemoveWishlistItem(ctx, productID)
	})
}

// Toggle removes the product if the snapshot has it and adds it otherwise
func (w *WishlistState) Toggle(ctx context.Context, productID int64) {
	if w.Has(productID) {
		w.Remove(ctx, productID)
		return
	}
	w.Add(ctx, productID)
}
