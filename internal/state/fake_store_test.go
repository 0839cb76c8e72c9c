package state

import (
	"context"
	"sort"
	"sync"

	"storefront-sync/internal/client"
	"storefront-sync/internal/models"
)

// fakeStore is an in-memory StoreAPI. failWith, when set, is returned by every
// call; gate, when set, blocks each call until a value is received.
type fakeStore struct {
	mu       sync.Mutex
	products []models.Product
	cart     models.Cart
	wishlist models.Wishlist
	failWith error
	gate     chan struct{}
	calls    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: []models.Product{
			{ID: 1, Name: "Bamboo Watch"},
			{ID: 2, Name: "Black Watch"},
			{ID: 3, Name: "Blue Band"},
		},
		cart:     models.Cart{UserID: "u1", Items: []models.CartItem{}},
		wishlist: models.Wishlist{UserID: "u1", ProductIDs: []int64{}},
	}
}

func (f *fakeStore) setFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func (f *fakeStore) enter(call string) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeStore) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) cartCopy() *models.Cart {
	c := f.cart
	c.Items = append([]models.CartItem{}, f.cart.Items...)
	return &c
}

func (f *fakeStore) wishlistCopy() *models.Wishlist {
	w := f.wishlist
	w.ProductIDs = append([]int64{}, f.wishlist.ProductIDs...)
	return &w
}

func (f *fakeStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	if err := f.enter("list_products"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Product{}, f.products...), nil
}

func (f *fakeStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if err := f.enter("get_product"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "product not found"}
}

func (f *fakeStore) GetCart(ctx context.Context) (*models.Cart, error) {
	if err := f.enter("get_cart"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cartCopy(), nil
}

func (f *fakeStore) AddCartItem(ctx context.Context, productID int64, quantity int) (*models.Cart, error) {
	if err := f.enter("add_cart_item"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cart.Items {
		if f.cart.Items[i].ProductID == productID {
			f.cart.Items[i].Quantity += quantity
			return f.cartCopy(), nil
		}
	}
	f.cart.Items = append(f.cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	return f.cartCopy(), nil
}

func (f *fakeStore) SetCartItemQuantity(ctx context.Context, productID int64, quantity int) (*models.Cart, error) {
	if err := f.enter("set_cart_item_quantity"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cart.Items {
		if f.cart.Items[i].ProductID == productID {
			f.cart.Items[i].Quantity = quantity
			return f.cartCopy(), nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "item not in cart"}
}

func (f *fakeStore) RemoveCartItem(ctx context.Context, productID int64) (*models.Cart, error) {
	if err := f.enter("remove_cart_item"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.cart.Items[:0]
	for _, it := range f.cart.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	f.cart.Items = items
	return f.cartCopy(), nil
}

func (f *fakeStore) GetWishlist(ctx context.Context) (*models.Wishlist, error) {
	if err := f.enter("get_wishlist"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wishlistCopy(), nil
}

func (f *fakeStore) AddWishlistItem(ctx context.Context, productID int64) (*models.Wishlist, error) {
	if err := f.enter("add_wishlist_item"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.wishlist.ProductIDs {
		if id == productID {
			return f.wishlistCopy(), nil
		}
	}
	f.wishlist.ProductIDs = append(f.wishlist.ProductIDs, productID)
	sort.Slice(f.wishlist.ProductIDs, func(i, j int) bool { return f.wishlist.ProductIDs[i] < f.wishlist.ProductIDs[j] })
	return f.wishlistCopy(), nil
}

func (f *fakeStore) RemoveWishlistItem(ctx context.Context, productID int64) (*models.Wishlist, error) {
	if err := f.enter("remove_wishlist_item"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.wishlist.ProductIDs[:0]
	for _, id := range f.wishlist.ProductIDs {
		if id != productID {
			ids = append(ids, id)
		}
	}
	f.wishlist.ProductIDs = ids
	return f.wishlistCopy(), nil
}
