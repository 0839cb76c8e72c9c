package models

import "github.com/shopspring/decimal"

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// InventoryStatus is the stock level reported by the catalog
type InventoryStatus string

const (
	InventoryInStock    InventoryStatus = "INSTOCK"
	InventoryLowStock   InventoryStatus = "LOWSTOCK"
	InventoryOutOfStock InventoryStatus = "OUTOFSTOCK"
)

// Valid reports whether s is one of the known inventory statuses
func (s InventoryStatus) Valid() bool {
	switch s {
	case InventoryInStock, InventoryLowStock, InventoryOutOfStock:
		return true
	}
	return false
}

// Product is a catalog entry. It is owned by the server; clients never edit it in place.
type Product struct {
	ID                int64           `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Image             string          `json:"image,omitempty"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	InternalReference string          `json:"internalReference"`
	ShellID           int64           `json:"shellId"`
	InventoryStatus   InventoryStatus `json:"inventoryStatus"`
	Rating            float64         `json:"rating"`
	CreatedAt         int64           `json:"createdAt"`
	UpdatedAt         int64           `json:"updatedAt"`
}

// CreateProductInput carries every product field the server does not generate
type CreateProductInput struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Image             string          `json:"image,omitempty"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	InternalReference string          `json:"internalReference"`
	ShellID           int64           `json:"shellId"`
	InventoryStatus   InventoryStatus `json:"inventoryStatus"`
	Rating            float64         `json:"rating"`
}

// UpdateProductInput is a partial product update; nil fields are left unchanged
type UpdateProductInput struct {
	Code              *string          `json:"code,omitempty"`
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Image             *string          `json:"image,omitempty"`
	Category          *string          `json:"category,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Quantity          *int             `json:"quantity,omitempty"`
	InternalReference *string          `json:"internalReference,omitempty"`
	ShellID           *int64           `json:"shellId,omitempty"`
	InventoryStatus   *InventoryStatus `json:"inventoryStatus,omitempty"`
	Rating            *float64         `json:"rating,omitempty"`
}

// Empty reports whether the update carries no fields
func (u UpdateProductInput) Empty() bool {
	return u.Code == nil && u.Name == nil && u.Description == nil && u.Image == nil &&
		u.Category == nil && u.Price == nil && u.Quantity == nil && u.InternalReference == nil &&
		u.ShellID == nil && u.InventoryStatus == nil && u.Rating == nil
}

// CartItem is one cart line; ProductID is unique within a cart
type CartItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Cart is the server-side cart of one user
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt int64      `json:"updatedAt"`
}

// Item returns the line for productID, if present
func (c *Cart) Item(productID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Wishlist is the set of product ids a user saved
type Wishlist struct {
	UserID     string  `json:"userId"`
	ProductIDs []int64 `json:"productIds"`
}

// Request payloads
type AddCartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type AddWishlistItemRequest struct {
	ProductID int64 `json:"productId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}
