package handlers

import (
	"net/http"

	"storefront-sync/internal/models"
	"storefront-sync/internal/services"
)

// CartHandler serves the caller's cart. Every mutation answers with the whole cart.
type CartHandler struct {
	service *services.StoreService
}

func NewCartHandler(service *services.StoreService) *CartHandler {
	return &CartHandler{service: service}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.GetCart(owner))
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	var req models.AddCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cart, err := h.service.AddCartItem(owner, req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cart)
}

// SetQuantity handles PATCH /cart/items/{productId}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	var req models.SetQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cart, err := h.service.SetCartItemQuantity(owner, productID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.RemoveCartItem(owner, productID))
}
