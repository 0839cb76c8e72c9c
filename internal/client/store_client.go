package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront-sync/internal/contact"
	"storefront-sync/internal/models"
	"storefront-sync/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource supplies the bearer credential attached to authenticated calls
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// TokenStore is an in-memory TokenSource that a login flow can fill in
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *TokenStore) Clear() {
	s.Set("")
}

// StoreClient provides methods to interact with the storefront REST API
type StoreClient struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a StoreClient
type Option func(*StoreClient)

// WithHTTPClient replaces the underlying HTTP client as-is
func WithHTTPClient(hc *http.Client) Option {
	return func(c *StoreClient) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on a copy of the current HTTP client,
// so a client passed to WithHTTPClient is never modified
func WithTimeout(d time.Duration) Option {
	return func(c *StoreClient) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *StoreClient) { c.tokens = ts }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *StoreClient) { c.logger = l }
}

// NewStoreClient creates a new storefront client
func NewStoreClient(baseURL string, opts ...Option) *StoreClient {
	c := &StoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = utils.OrDefault(c.logger)
	return c
}

// HealthCheck checks the health of the storefront API
func (c *StoreClient) HealthCheck(ctx context.Context) (*models.HealthResponse, error) {
	var health models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health, false); err != nil {
		return nil, err
	}
	return &health, nil
}

// Login exchanges credentials for a bearer token. The token is not stored.
func (c *StoreClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/token", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListProducts retrieves the full catalog
func (c *StoreClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products, true); err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct retrieves a single product
func (c *StoreClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &product, true); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a product (admin)
func (c *StoreClient) CreateProduct(ctx context.Context, input models.CreateProductInput) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/products", input, &product, true); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct applies a partial update to a product (admin)
func (c *StoreClient) UpdateProduct(ctx context.Context, id int64, input models.UpdateProductInput) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), input, &product, true); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct deletes a product (admin)
func (c *StoreClient) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil, true)
}

// GetCart retrieves the caller's cart
func (c *StoreClient) GetCart(ctx context.Context) (*models.Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

// AddCartItem adds quantity units of a product and returns the updated cart
func (c *StoreClient) AddCartItem(ctx context.Context, productID int64, quantity int) (*models.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/items", models.AddCartItemRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
}

// SetCartItemQuantity sets the quantity of an existing line and returns the updated cart
func (c *StoreClient) SetCartItemQuantity(ctx context.Context, productID int64, quantity int) (*models.Cart, error) {
	return c.cartCall(ctx, http.MethodPatch, fmt.Sprintf("/cart/items/%d", productID), models.SetQuantityRequest{
		Quantity: quantity,
	})
}

// RemoveCartItem removes a line and returns the updated cart
func (c *StoreClient) RemoveCartItem(ctx context.Context, productID int64) (*models.Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", productID), nil)
}

// GetWishlist retrieves the caller's wishlist
func (c *StoreClient) GetWishlist(ctx context.Context) (*models.Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodGet, "/wishlist", nil)
}

// AddWishlistItem adds a product to the wishlist and returns the updated wishlist
func (c *StoreClient) AddWishlistItem(ctx context.Context, productID int64) (*models.Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodPost, "/wishlist/items", models.AddWishlistItemRequest{ProductID: productID})
}

// RemoveWishlistItem removes a product from the wishlist and returns the updated wishlist
func (c *StoreClient) RemoveWishlistItem(ctx context.Context, productID int64) (*models.Wishlist, error) {
	return c.wishlistCall(ctx, http.MethodDelete, fmt.Sprintf("/wishlist/items/%d", productID), nil)
}

// SubmitContact validates form locally and sends it. An invalid form is
// returned as *contact.ValidationError without a request being made.
func (c *StoreClient) SubmitContact(ctx context.Context, form contact.Form) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/contact", form, nil, true)
}

func (c *StoreClient) cartCall(ctx context.Context, method, path string, body interface{}) (*models.Cart, error) {
	var cart models.Cart
	if err := c.resourceCall(ctx, method, path, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *StoreClient) wishlistCall(ctx context.Context, method, path string, body interface{}) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	if err := c.resourceCall(ctx, method, path, body, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// resourceCall is do for endpoints that answer with the whole resource.
// An empty or null body is ErrEmptyResponse, never a zero-value resource.
func (c *StoreClient) resourceCall(ctx context.Context, method, path string, body, out interface{}) error {
	var raw json.RawMessage
	if err := c.do(ctx, method, path, body, &raw, true); err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%s %s: %w", method, path, ErrEmptyResponse)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do performs one request. Non-2xx responses become *APIError, failures
// before a response become *TransportError.
func (c *StoreClient) do(ctx context.Context, method, path string, body, out interface{}, authenticated bool) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Request failed before response", "method", method, "path", path, "error", err)
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("Request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
