package services

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-sync/internal/cache"
	"storefront-sync/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is what a bearer token resolves to
type Session struct {
	Token    string
	UserID   string
	Email    string
	Admin    bool
	IssuedAt time.Time
}

type account struct {
	userID   string
	email    string
	password string
	admin    bool
}

// StoreService is the in-memory storefront backend: catalog, per-user carts
// and wishlists, and login sessions. Every mutation returns the full resource.
type StoreService struct {
	catalogMu sync.RWMutex
	products  map[int64]models.Product
	nextID    int64

	ownersMu  sync.Mutex
	carts     map[string]*models.Cart
	wishlists map[string]*models.Wishlist
	locks     *LockManager

	accounts map[string]account
	tokens   *tokenIssuer
	// sessions is keyed by token id, so Logout revokes a token before it expires
	sessions *cache.TTLCache[Session]

	now func() time.Time
}

// ServiceOptions configures sessions. An empty TokenSecret generates a
// random one, which invalidates tokens across restarts.
type ServiceOptions struct {
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	TokenSecret            []byte
}

// NewStoreService builds a service from a seed. Call Stop to release the session cache.
func NewStoreService(seed *Seed, opts ServiceOptions) (*StoreService, error) {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.SessionCleanupInterval <= 0 {
		opts.SessionCleanupInterval = time.Minute
	}

	s := &StoreService{
		products:  make(map[int64]models.Product, len(seed.Products)),
		carts:     make(map[string]*models.Cart),
		wishlists: make(map[string]*models.Wishlist),
		locks:     NewLockManager(),
		accounts:  make(map[string]account, len(seed.Accounts)),
		now:       time.Now,
	}

	created := s.now().UnixMilli()
	for _, sp := range seed.Products {
		p, err := sp.toProduct(created)
		if err != nil {
			return nil, err
		}
		if _, dup := s.products[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d in seed", p.ID)
		}
		s.products[p.ID] = p
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	if s.nextID == 0 {
		s.nextID = 1
	}

	for _, a := range seed.Accounts {
		email := normalizeEmail(a.Email)
		s.accounts[email] = account{
			userID:   uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront:"+email)).String(),
			email:    email,
			password: a.Password,
			admin:    a.Admin,
		}
	}

	tokens, err := newTokenIssuer(opts.TokenSecret, opts.SessionTTL, s.now)
	if err != nil {
		return nil, err
	}
	s.tokens = tokens
	s.sessions = cache.NewTTLCache[Session](opts.SessionTTL, opts.SessionCleanupInterval)

	slog.Info("Store service initialized",
		"products_count", len(s.products),
		"accounts_count", len(s.accounts),
		"session_ttl", opts.SessionTTL.String())
	return s, nil
}

// Stop releases background resources
func (s *StoreService) Stop() {
	s.sessions.Stop()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials and opens a session
func (s *StoreService) Login(email, password string) (*Session, error) {
	acct, ok := s.accounts[normalizeEmail(email)]
	if !ok || subtle.ConstantTimeCompare([]byte(acct.password), []byte(password)) != 1 {
		slog.Warn("Login failed", "email", normalizeEmail(email))
		return nil, ErrInvalidCredentials
	}

	token, tokenID, err := s.tokens.issue(acct)
	if err != nil {
		return nil, err
	}
	session := Session{
		Token:    token,
		UserID:   acct.userID,
		Email:    acct.email,
		Admin:    acct.admin,
		IssuedAt: s.now(),
	}
	s.sessions.Set(tokenID, session)

	slog.Info("Session opened", "user_id", session.UserID, "admin", session.Admin)
	return &session, nil
}

// Session resolves a bearer token. The token must verify and its session
// must still be open.
func (s *StoreService) Session(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	claims, err := s.tokens.parse(token)
	if err != nil {
		slog.Debug("Rejected bearer token", "error", err)
		return Session{}, false
	}
	return s.sessions.Get(claims.ID)
}

func (s *StoreService) Logout(token string) {
	if claims, err := s.tokens.parse(token); err == nil {
		s.sessions.Delete(claims.ID)
	}
}

// ActiveSessions is the number of unexpired sessions
func (s *StoreService) ActiveSessions() int {
	return s.sessions.ActiveSize()
}

// ListProducts returns the catalog ordered by id
func (s *StoreService) ListProducts() []models.Product {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (s *StoreService) GetProduct(id int64) (*models.Product, error) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *StoreService) productExists(id int64) bool {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	_, ok := s.products[id]
	return ok
}

// CreateProduct assigns the next id and timestamps
func (s *StoreService) CreateProduct(input models.CreateProductInput) (*models.Product, error) {
	if err := validateProductFields(input.Name, input.Price, input.Quantity); err != nil {
		return nil, err
	}
	status := input.InventoryStatus
	if status == "" {
		status = statusForQuantity(input.Quantity)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown inventory status %q", ErrInvalidProduct, status)
	}

	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()

	now := s.now().UnixMilli()
	p := models.Product{
		ID:                s.nextID,
		Code:              input.Code,
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		Image:             input.Image,
		Category:          input.Category,
		Price:             input.Price,
		Quantity:          input.Quantity,
		InternalReference: input.InternalReference,
		ShellID:           input.ShellID,
		InventoryStatus:   status,
		Rating:            input.Rating,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.products[p.ID] = p
	s.nextID++

	slog.Info("Product created", "product_id", p.ID, "name", p.Name)
	return &p, nil
}

// UpdateProduct applies the non-nil fields of input
func (s *StoreService) UpdateProduct(id int64, input models.UpdateProductInput) (*models.Product, error) {
	if input.Empty() {
		return nil, ErrEmptyUpdate
	}

	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}

	if input.Code != nil {
		p.Code = *input.Code
	}
	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Image != nil {
		p.Image = *input.Image
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Quantity != nil {
		p.Quantity = *input.Quantity
	}
	if input.InternalReference != nil {
		p.InternalReference = *input.InternalReference
	}
	if input.ShellID != nil {
		p.ShellID = *input.ShellID
	}
	if input.InventoryStatus != nil {
		p.InventoryStatus = *input.InventoryStatus
	}
	if input.Rating != nil {
		p.Rating = *input.Rating
	}

	if err := validateProductFields(p.Name, p.Price, p.Quantity); err != nil {
		return nil, err
	}
	if !p.InventoryStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown inventory status %q", ErrInvalidProduct, p.InventoryStatus)
	}

	p.UpdatedAt = s.now().UnixMilli()
	s.products[id] = p

	slog.Info("Product updated", "product_id", id)
	return &p, nil
}

// DeleteProduct removes a product. Cart and wishlist entries that point at it
// are kept; clients render them as unresolved.
func (s *StoreService) DeleteProduct(id int64) error {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.products, id)

	slog.Info("Product deleted", "product_id", id)
	return nil
}

func validateProductFields(name string, price decimal.Decimal, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidProduct)
	}
	return nil
}
