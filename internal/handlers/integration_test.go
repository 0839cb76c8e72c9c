package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-sync/internal/client"
	"storefront-sync/internal/handlers"
	"storefront-sync/internal/middleware"
	"storefront-sync/internal/models"
	"storefront-sync/internal/pricing"
	"storefront-sync/internal/services"
	"storefront-sync/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startStorefront(t *testing.T, limiter *middleware.RateLimiter) *client.StoreClient {
	t.Helper()
	svc, err := services.NewStoreService(services.DefaultSeed(), services.ServiceOptions{SessionTTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(svc.Stop)

	srv := httptest.NewServer(handlers.NewRouter(handlers.RouterConfig{Service: svc, Version: "test", RateLimiter: limiter}))
	t.Cleanup(srv.Close)

	tokens := &client.TokenStore{}
	api := client.NewStoreClient(srv.URL, client.WithHTTPClient(srv.Client()), client.WithTokenSource(tokens))
	login, err := api.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "user123"})
	require.NoError(t, err)
	tokens.Set(login.Token)
	return api
}

func TestProviderAgainstRouter_CartAndTotals(t *testing.T) {
	// Arrange
	ctx := context.Background()
	provider := state.NewProvider(startStorefront(t, nil), state.DefaultOptions())
	provider.Mount(ctx)
	require.Len(t, provider.Products().Products(), 10)

	// Act: two views share one cart
	provider.Cart().Add(ctx, 1003, 1)
	provider.Cart().Increment(ctx, 1003)

	// Assert
	status := provider.Cart().Status()
	require.False(t, status.HasError(), status.Error)
	qty, ok := provider.Cart().Quantity(1003)
	require.True(t, ok)
	assert.Equal(t, 2, qty)

	totals := pricing.ComputeCart(status.Snapshot, provider.Products().Products())
	assert.Equal(t, "58.00", pricing.Format(totals.Subtotal))
	assert.True(t, totals.FreeShipping())
	assert.Equal(t, "58.00", pricing.Format(totals.Total))
}

func TestProviderAgainstRouter_ServerMessageSurfaces(t *testing.T) {
	ctx := context.Background()
	provider := state.NewProvider(startStorefront(t, nil), state.DefaultOptions())
	provider.Mount(ctx)

	provider.Cart().SetQuantity(ctx, 1001, 3)

	assert.Equal(t, "item not in cart", provider.Cart().Status().Error)
	assert.NotNil(t, provider.Cart().Snapshot())
}

func TestProviderAgainstRouter_Wishlist(t *testing.T) {
	ctx := context.Background()
	provider := state.NewProvider(startStorefront(t, nil), state.DefaultOptions())
	provider.Mount(ctx)

	provider.Wishlist().Toggle(ctx, 1002)
	assert.True(t, provider.Wishlist().Has(1002))

	provider.Wishlist().Toggle(ctx, 1002)
	assert.False(t, provider.Wishlist().Has(1002))
	assert.Empty(t, provider.Wishlist().Status().Error)
}

func TestProviderAgainstRouter_RateLimitedReload(t *testing.T) {
	// Arrange: authenticated calls are limited per token, login per IP
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Enabled: true, RequestsPerMinute: 2})
	t.Cleanup(limiter.Stop)
	ctx := context.Background()
	cart := state.NewCartState(startStorefront(t, limiter), state.DefaultOptions())

	// Act
	cart.Reload(ctx)
	cart.Reload(ctx)
	require.Empty(t, cart.Status().Error)
	loaded := cart.Snapshot()
	cart.Reload(ctx)

	// Assert
	status := cart.Status()
	assert.Equal(t, "rate limited", status.Error)
	assert.Same(t, loaded, status.Snapshot)
	assert.False(t, status.Loading)
}
