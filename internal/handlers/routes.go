package handlers

import (
	"net/http"

	"storefront-sync/internal/middleware"
	"storefront-sync/internal/services"
	"storefront-sync/internal/telemetry"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
)

// RouterConfig carries what the router needs; nil optional fields are skipped
type RouterConfig struct {
	Service     *services.StoreService
	Version     string
	RateLimiter *middleware.RateLimiter
	Telemetry   *telemetry.APITelemetry
	Metrics     http.Handler
}

// NewRouter builds the storefront API:
//
//	POST   /token                      login (public)
//	GET    /health                     health (public)
//	GET    /metrics                    Prometheus scrape (public, when configured)
//	GET    /products, /products/{id}   catalog
//	POST   /products                   admin
//	PUT    /products/{id}              admin
//	DELETE /products/{id}              admin
//	GET    /cart; POST /cart/items; PATCH|DELETE /cart/items/{productId}
//	GET    /wishlist; POST /wishlist/items; DELETE /wishlist/items/{productId}
//	POST   /contact
//	GET    /admin/status; POST /admin/rate-limit/reset   admin
func NewRouter(cfg RouterConfig) *mux.Router {
	authHandler := NewAuthHandler(cfg.Service)
	healthHandler := NewHealthHandler(cfg.Version)
	productHandler := NewProductHandler(cfg.Service)
	cartHandler := NewCartHandler(cfg.Service)
	wishlistHandler := NewWishlistHandler(cfg.Service)
	contactHandler := NewContactHandler()
	adminHandler := NewAdminHandler(cfg.Service, cfg.RateLimiter)

	router := mux.NewRouter()
	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	if cfg.Telemetry != nil {
		router.Use(telemetry.NewTelemetryMiddleware(cfg.Telemetry).Middleware)
	}
	if cfg.RateLimiter != nil {
		router.Use(middleware.RateLimitMiddleware(cfg.RateLimiter))
	}

	// Public
	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/token", authHandler.Login).Methods(http.MethodPost)
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	// Authenticated
	authed := router.NewRoute().Subrouter()
	authed.Use(middleware.AuthMiddleware(cfg.Service))

	authed.HandleFunc("/products", productHandler.ListProducts).Methods(http.MethodGet)
	authed.HandleFunc("/products/{id}", productHandler.GetProduct).Methods(http.MethodGet)

	authed.HandleFunc("/cart", cartHandler.GetCart).Methods(http.MethodGet)
	authed.HandleFunc("/cart/items", cartHandler.AddItem).Methods(http.MethodPost)
	authed.HandleFunc("/cart/items/{productId}", cartHandler.SetQuantity).Methods(http.MethodPatch)
	authed.HandleFunc("/cart/items/{productId}", cartHandler.RemoveItem).Methods(http.MethodDelete)

	authed.HandleFunc("/wishlist", wishlistHandler.GetWishlist).Methods(http.MethodGet)
	authed.HandleFunc("/wishlist/items", wishlistHandler.AddItem).Methods(http.MethodPost)
	authed.HandleFunc("/wishlist/items/{productId}", wishlistHandler.RemoveItem).Methods(http.MethodDelete)

	authed.HandleFunc("/contact", contactHandler.Submit).Methods(http.MethodPost)

	// Admin
	admin := authed.NewRoute().Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/products", productHandler.CreateProduct).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id}", productHandler.UpdateProduct).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id}", productHandler.DeleteProduct).Methods(http.MethodDelete)
	admin.HandleFunc("/admin/status", adminHandler.Status).Methods(http.MethodGet)
	admin.HandleFunc("/admin/rate-limit/reset", adminHandler.ResetRateLimits).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "not_found", "route not found", nil)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	return router
}
