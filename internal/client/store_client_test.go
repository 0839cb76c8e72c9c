package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-sync/internal/contact"
	"storefront-sync/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *StoreClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithHTTPClient(srv.Client())}, opts...)
	return NewStoreClient(srv.URL+"/", opts...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestStoreClient_ListProducts_SendsBearerToken(t *testing.T) {
	// Arrange
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, []models.Product{
			{ID: 1, Name: "Bamboo Watch", Price: decimal.RequireFromString("65.00")},
		})
	}, WithTokenSource(StaticToken("abc123")))

	// Act
	products, err := c.ListProducts(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
	assert.Equal(t, "/products", gotPath)
	require.Len(t, products, 1)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("65")))
}

func TestStoreClient_ListProducts_EmptyBodyIsEmptySlice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	products, err := c.ListProducts(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestStoreClient_UnauthenticatedCallsOmitToken(t *testing.T) {
	var gotAuth string
	var gotBody models.LoginRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, models.LoginResponse{Token: "tok"})
	}, WithTokenSource(StaticToken("stale")))

	resp, err := c.Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "pw"})

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "a@b.co", gotBody.Email)
	assert.Equal(t, "tok", resp.Token)
}

func TestStoreClient_CartOperations(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *StoreClient) (*models.Cart, error)
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{
			name:       "get",
			call:       func(c *StoreClient) (*models.Cart, error) { return c.GetCart(context.Background()) },
			wantMethod: http.MethodGet,
			wantPath:   "/cart",
		},
		{
			name:       "add",
			call:       func(c *StoreClient) (*models.Cart, error) { return c.AddCartItem(context.Background(), 7, 2) },
			wantMethod: http.MethodPost,
			wantPath:   "/cart/items",
			wantBody:   `{"productId":7,"quantity":2}`,
		},
		{
			name:       "set quantity",
			call:       func(c *StoreClient) (*models.Cart, error) { return c.SetCartItemQuantity(context.Background(), 7, 4) },
			wantMethod: http.MethodPatch,
			wantPath:   "/cart/items/7",
			wantBody:   `{"quantity":4}`,
		},
		{
			name:       "remove",
			call:       func(c *StoreClient) (*models.Cart, error) { return c.RemoveCartItem(context.Background(), 7) },
			wantMethod: http.MethodDelete,
			wantPath:   "/cart/items/7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var method, path string
			var body []byte
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				method, path = r.Method, r.URL.Path
				body, _ = io.ReadAll(r.Body)
				writeJSON(w, http.StatusOK, models.Cart{UserID: "u1", Items: []models.CartItem{{ProductID: 7, Quantity: 4}}})
			})

			// Act
			cart, err := tt.call(c)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, method)
			assert.Equal(t, tt.wantPath, path)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, string(body))
			}
			item, ok := cart.Item(7)
			require.True(t, ok)
			assert.Equal(t, 4, item.Quantity)
		})
	}
}

func TestStoreClient_WishlistOperations(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		writeJSON(w, http.StatusOK, models.Wishlist{UserID: "u1", ProductIDs: []int64{3}})
	})
	ctx := context.Background()

	_, err := c.GetWishlist(ctx)
	require.NoError(t, err)
	_, err = c.AddWishlistItem(ctx, 3)
	require.NoError(t, err)
	wl, err := c.RemoveWishlistItem(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"GET /wishlist", "POST /wishlist/items", "DELETE /wishlist/items/3"}, paths)
	assert.Equal(t, []int64{3}, wl.ProductIDs)
}

func TestStoreClient_SubmitContact(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/contact", r.URL.Path)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
	})
	ctx := context.Background()

	err := c.SubmitContact(ctx, contact.Form{Name: "Ada", Email: "not-an-email", Message: "hi"})
	var verr *contact.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid email format", verr.Message)
	assert.Zero(t, calls)

	require.NoError(t, c.SubmitContact(ctx, contact.Form{Name: "Ada", Email: "ada@example.com", Message: "hi"}))
	assert.Equal(t, 1, calls)
}

func TestStoreClient_ServerErrorMessage(t *testing.T) {
	// Arrange
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limited", "code": "rate_limit_exceeded"})
	})

	// Act
	_, err := c.GetCart(context.Background())

	// Assert
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "rate_limit_exceeded", apiErr.Code)
	assert.Equal(t, KindServer, Classify(err))
	assert.Equal(t, "rate limited", Describe(err, "Failed to load cart"))
}

func TestStoreClient_StatusWithoutMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := c.GetProduct(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, KindHTTPStatus, Classify(err))
	assert.Equal(t, "request failed with status code 500", Describe(err, "Failed to load product"))
}

func TestStoreClient_NotFoundSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
	})

	err := c.DeleteProduct(context.Background(), 99)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestStoreClient_TransportFailureUsesFallback(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	c := NewStoreClient(url, WithTimeout(time.Second))

	// Act
	_, err := c.GetWishlist(context.Background())

	// Assert
	require.Error(t, err)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "GET /wishlist", transportErr.Op)
	assert.Equal(t, KindTransport, Classify(err))
	assert.Equal(t, "Failed to load wishlist", Describe(err, "Failed to load wishlist"))
}

func TestStoreClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Cart{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetCart(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, KindTransport, Classify(err))
}

func TestStoreClient_UndecodableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := c.GetCart(context.Background())

	require.Error(t, err)
	assert.Equal(t, KindUnknown, Classify(err))
	assert.Equal(t, "Failed to load cart", Describe(err, "Failed to load cart"))
}

func TestStoreClient_EmptyResourceBodyIsAnError(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(c *StoreClient) error
	}{
		{"add cart item", "", func(c *StoreClient) error {
			_, err := c.AddCartItem(context.Background(), 1, 1)
			return err
		}},
		{"get cart null", "null", func(c *StoreClient) error {
			_, err := c.GetCart(context.Background())
			return err
		}},
		{"remove wishlist item", "", func(c *StoreClient) error {
			_, err := c.RemoveWishlistItem(context.Background(), 1)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(tt.body))
			})

			// Act
			err := tt.call(c)

			// Assert
			assert.ErrorIs(t, err, ErrEmptyResponse)
			assert.Equal(t, KindUnknown, Classify(err))
			assert.Equal(t, "Failed to update cart", Describe(err, "Failed to update cart"))
		})
	}
}

func TestWithTimeout_LeavesCallerClientUntouched(t *testing.T) {
	shared := &http.Client{Timeout: 5 * time.Second}

	c := NewStoreClient("http://example.test", WithHTTPClient(shared), WithTimeout(time.Second))

	assert.Equal(t, 5*time.Second, shared.Timeout)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)
}

func TestNewAPIError_MessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"boom"}`, "boom"},
		{"message field", `{"message":"bad input"}`, "bad input"},
		{"error wins", `{"error":"first","message":"second"}`, "first"},
		{"non-string error", `{"error":{"nested":true},"message":"fallback"}`, "fallback"},
		{"blank error", `{"error":"   "}`, ""},
		{"not json", `oops`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newAPIError(http.StatusBadRequest, []byte(tt.body)).Message)
		})
	}
}

func TestDescribe_NilError(t *testing.T) {
	assert.Equal(t, KindNone, Classify(nil))
	assert.Empty(t, Describe(nil, "fallback"))
}

func TestTokenStore(t *testing.T) {
	var store TokenStore
	assert.Empty(t, store.Token())

	store.Set("t1")
	assert.Equal(t, "t1", store.Token())

	store.Clear()
	assert.Empty(t, store.Token())
}
