package state

import (
	"context"
	"sync"
)

// StoreAPI is everything the provider's shared resources call
type StoreAPI interface {
	CartAPI
	WishlistAPI
	ProductAPI
}

// Provider hands every consumer the same cart, wishlist and catalog state,
// so views built from one provider observe one snapshot per resource and
// never duplicate a fetch or a mutation.
//
// States created directly with NewCartState and friends are independent of
// any provider and are not kept in sync with it.
type Provider struct {
	api  StoreAPI
	opts Options

	cartOnce     sync.Once
	cart         *CartState
	wishlistOnce sync.Once
	wishlist     *WishlistState
	productsOnce sync.Once
	products     *ProductsState
}

// NewProvider creates a provider; resources are built on first use
func NewProvider(api StoreAPI, opts Options) *Provider {
	return &Provider{api: api, opts: opts}
}

func (p *Provider) Cart() *CartState {
	p.cartOnce.Do(func() { p.cart = NewCartState(p.api, p.opts) })
	return p.cart
}

func (p *Provider) Wishlist() *WishlistState {
	p.wishlistOnce.Do(func() { p.wishlist = NewWishlistState(p.api, p.opts) })
	return p.wishlist
}

func (p *Provider) Products() *ProductsState {
	p.productsOnce.Do(func() { p.products = NewProductsState(p.api, p.opts) })
	return p.products
}

// Product creates a detail state; single products are per view, not shared
func (p *Provider) Product(id int64) *ProductState {
	return NewProductState(p.api, id, p.opts)
}

// Mount auto-loads the shared resources concurrently and waits for all of them
func (p *Provider) Mount(ctx context.Context) {
	var wg sync.WaitGroup
	for _, mount := range []func(context.Context){
		p.Products().Mount,
		p.Cart().Mount,
		p.Wishlist().Mount,
	} {
		wg.Add(1)
		go func(mount func(context.Context)) {
			defer wg.Done()
			mount(ctx)
		}(mount)
	}
	wg.Wait()
}
