package handlers

import (
	"net/http"

	"storefront-sync/internal/models"
	"storefront-sync/internal/services"
)

// WishlistHandler serves the caller's wishlist
type WishlistHandler struct {
	service *services.StoreService
}

func NewWishlistHandler(service *services.StoreService) *WishlistHandler {
	return &WishlistHandler{service: service}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.GetWishlist(owner))
}

// AddItem handles POST /wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	var req models.AddWishlistItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	wishlist, err := h.service.AddWishlistItem(owner, req.ProductID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, wishlist)
}

// RemoveItem handles DELETE /wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, h.service.RemoveWishlistItem(owner, productID))
}
