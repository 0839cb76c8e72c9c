package handlers

import (
	"log/slog"
	"net/http"

	"storefront-sync/internal/models"
	"storefront-sync/internal/services"
)

// ProductHandler serves the catalog and its admin CRUD
type ProductHandler struct {
	service *services.StoreService
}

func NewProductHandler(service *services.StoreService) *ProductHandler {
	return &ProductHandler{service: service}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.service.ListProducts()
	slog.Debug("Listing products", "count", len(products))
	writeJSONResponse(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	product, err := h.service.GetProduct(id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, product)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.CreateProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	product, err := h.service.CreateProduct(input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/{id}; absent fields are left unchanged
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input models.UpdateProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	product, err := h.service.UpdateProduct(id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
