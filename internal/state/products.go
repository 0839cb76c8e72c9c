package state

import (
	"context"

	"storefront-sync/internal/models"
)

// ProductAPI is the read side of the catalog
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// ProductsState holds the full catalog listing
type ProductsState struct {
	*Resource[[]models.Product]
}

// NewProductsState creates an unloaded catalog state
func NewProductsState(api ProductAPI, opts Options) *ProductsState {
	fetch := func(ctx context.Context) (*[]models.Product, error) {
		products, err := api.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		return &products, nil
	}
	return &ProductsState{
		Resource: NewResource("products", "Failed to load products", fetch, opts),
	}
}

// Products returns the loaded catalog, or nil while absent
func (p *ProductsState) Products() []models.Product {
	if s := p.Snapshot(); s != nil {
		return *s
	}
	return nil
}

// ProductState holds one product for a detail view
type ProductState struct {
	*Resource[models.Product]
	id int64
}

// NewProductState creates an unloaded detail state for id.
// Reload does nothing when id is not a valid product id.
func NewProductState(api ProductAPI, id int64, opts Options) *ProductState {
	fetch := func(ctx context.Context) (*models.Product, error) {
		return api.GetProduct(ctx, id)
	}
	return &ProductState{
		Resource: NewResource("product", "Failed to load product", fetch, opts),
		id:       id,
	}
}

// ID returns the product id this state loads
func (p *ProductState) ID() int64 {
	return p.id
}

func (p *ProductState) Reload(ctx context.Context) {
	if p.id <= 0 {
		return
	}
	p.Resource.Reload(ctx)
}

func (p *ProductState) Mount(ctx context.Context) {
	if p.opts.AutoLoad {
		p.Reload(ctx)
	}
}
