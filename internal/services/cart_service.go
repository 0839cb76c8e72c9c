package services

import (
	"log/slog"

	"storefront-sync/internal/models"
)

func cartKey(userID string) string     { return "cart:" + userID }
func wishlistKey(userID string) string { return "wishlist:" + userID }

// cartFor returns the owner's cart, creating an empty one. Callers hold the owner lock.
func (s *StoreService) cartFor(userID string) *models.Cart {
	s.ownersMu.Lock()
	defer s.ownersMu.Unlock()

	cart, ok := s.carts[userID]
	if !ok {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}, UpdatedAt: s.now().UnixMilli()}
		s.carts[userID] = cart
	}
	return cart
}

func copyCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = append(make([]models.CartItem, 0, len(c.Items)), c.Items...)
	return &out
}

// GetCart returns the owner's cart; a new owner gets an empty one
func (s *StoreService) GetCart(userID string) *models.Cart {
	var out *models.Cart
	s.locks.WithReadLock(cartKey(userID), func() {
		out = copyCart(s.cartFor(userID))
	})
	return out
}

// AddCartItem adds quantity units, merging into an existing line
func (s *StoreService) AddCartItem(userID string, productID int64, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !s.productExists(productID) {
		return nil, ErrProductNotFound
	}

	var out *models.Cart
	s.locks.WithWriteLock(cartKey(userID), func() {
		cart := s.cartFor(userID)
		merged := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Quantity += quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
		}
		cart.UpdatedAt = s.now().UnixMilli()
		out = copyCart(cart)
	})

	slog.Debug("Cart item added", "user_id", userID, "product_id", productID, "quantity", quantity)
	return out, nil
}

// SetCartItemQuantity replaces the quantity of an existing line
func (s *StoreService) SetCartItemQuantity(userID string, productID int64, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var out *models.Cart
	var err error
	s.locks.WithWriteLock(cartKey(userID), func() {
		cart := s.cartFor(userID)
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Quantity = quantity
				cart.UpdatedAt = s.now().UnixMilli()
				out = copyCart(cart)
				return
			}
		}
		err = ErrItemNotInCart
	})
	return out, err
}

// RemoveCartItem drops a line; removing an absent line is not an error
func (s *StoreService) RemoveCartItem(userID string, productID int64) *models.Cart {
	var out *models.Cart
	s.locks.WithWriteLock(cartKey(userID), func() {
		cart := s.cartFor(userID)
		items := make([]models.CartItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			if it.ProductID != productID {
				items = append(items, it)
			}
		}
		if len(items) != len(cart.Items) {
			cart.Items = items
			cart.UpdatedAt = s.now().UnixMilli()
		}
		out = copyCart(cart)
	})
	return out
}

func (s *StoreService) wishlistFor(userID string) *models.Wishlist {
	s.ownersMu.Lock()
	defer s.ownersMu.Unlock()

	wl, ok := s.wishlists[userID]
	if !ok {
		wl = &models.Wishlist{UserID: userID, ProductIDs: []int64{}}
		s.wishlists[userID] = wl
	}
	return wl
}

func copyWishlist(w *models.Wishlist) *models.Wishlist {
	out := *w
	out.ProductIDs = append(make([]int64, 0, len(w.ProductIDs)), w.ProductIDs...)
	return &out
}

func (s *StoreService) GetWishlist(userID string) *models.Wishlist {
	var out *models.Wishlist
	s.locks.WithReadLock(wishlistKey(userID), func() {
		out = copyWishlist(s.wishlistFor(userID))
	})
	return out
}

// AddWishlistItem saves a product once; adding it again changes nothing
func (s *StoreService) AddWishlistItem(userID string, productID int64) (*models.Wishlist, error) {
	if !s.productExists(productID) {
		return nil, ErrProductNotFound
	}

	var out *models.Wishlist
	s.locks.WithWriteLock(wishlistKey(userID), func() {
		wl := s.wishlistFor(userID)
		for _, id := range wl.ProductIDs {
			if id == productID {
				out = copyWishlist(wl)
				return
			}
		}
		wl.ProductIDs = append(wl.ProductIDs, productID)
		out = copyWishlist(wl)
	})
	return out, nil
}

// RemoveWishlistItem drops a product; removing an absent one is not an error
func (s *StoreService) RemoveWishlistItem(userID string, productID int64) *models.Wishlist {
	var out *models.Wishlist
	s.locks.WithWriteLock(wishlistKey(userID), func() {
		wl := s.wishlistFor(userID)
		ids := make([]int64, 0, len(wl.ProductIDs))
		for _, id := range wl.ProductIDs {
			if id != productID {
				ids = append(ids, id)
			}
		}
		wl.ProductIDs = ids
		out = copyWishlist(wl)
	})
	return out
}
