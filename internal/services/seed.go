package services

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"storefront-sync/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed is the on-disk shape of the catalog and accounts file
type Seed struct {
	Accounts []SeedAccount `yaml:"accounts"`
	Products []SeedProduct `yaml:"products"`
}

type SeedAccount struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Admin    bool   `yaml:"admin"`
}

// SeedProduct keeps the price as text so it parses exactly into a decimal
type SeedProduct struct {
	ID                int64   `yaml:"id"`
	Code              string  `yaml:"code"`
	Name              string  `yaml:"name"`
	Description       string  `yaml:"description"`
	Image             string  `yaml:"image"`
	Category          string  `yaml:"category"`
	Price             string  `yaml:"price"`
	Quantity          int     `yaml:"quantity"`
	InternalReference string  `yaml:"internalReference"`
	ShellID           int64   `yaml:"shellId"`
	InventoryStatus   string  `yaml:"inventoryStatus"`
	Rating            float64 `yaml:"rating"`
}

func (p SeedProduct) toProduct(now int64) (models.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %d: invalid price %q: %w", p.ID, p.Price, err)
	}
	status := models.InventoryStatus(p.InventoryStatus)
	if status == "" {
		status = statusForQuantity(p.Quantity)
	}
	if !status.Valid() {
		return models.Product{}, fmt.Errorf("product %d: invalid inventory status %q", p.ID, p.InventoryStatus)
	}
	return models.Product{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		Description:       p.Description,
		Image:             p.Image,
		Category:          p.Category,
		Price:             price,
		Quantity:          p.Quantity,
		InternalReference: p.InternalReference,
		ShellID:           p.ShellID,
		InventoryStatus:   status,
		Rating:            p.Rating,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// LoadSeed reads a YAML seed file. A missing file yields DefaultSeed;
// a malformed one is an error.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Catalog file not found, using built-in seed", "path", path)
		return DefaultSeed(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}

	seed, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}
	slog.Info("Catalog seed loaded",
		"path", path,
		"products_count", len(seed.Products),
		"accounts_count", len(seed.Accounts))
	return seed, nil
}

// ParseSeed decodes YAML seed data; accounts default to DefaultSeed's when absent
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("error parsing catalog YAML: %w", err)
	}
	if len(seed.Accounts) == 0 {
		seed.Accounts = DefaultSeed().Accounts
	}
	return &seed, nil
}

// DefaultSeed is the catalog used when no file is configured
func DefaultSeed() *Seed {
	return &Seed{
		Accounts: []SeedAccount{
			{Email: "admin@admin.com", Password: "admin123", Admin: true},
			{Email: "user@example.com", Password: "user123"},
		},
		Products: []SeedProduct{
			{ID: 1000, Code: "f230fh0g3", Name: "Bamboo Watch", Description: "Product Description", Image: "bamboo-watch.jpg", Category: "Accessories", Price: "65", Quantity: 24, InternalReference: "REF-1000", ShellID: 1, InventoryStatus: "INSTOCK", Rating: 5},
			{ID: 1001, Code: "nvklal433", Name: "Black Watch", Description: "Product Description", Image: "black-watch.jpg", Category: "Accessories", Price: "72", Quantity: 61, InternalReference: "REF-1001", ShellID: 1, InventoryStatus: "INSTOCK", Rating: 4},
			{ID: 1002, Code: "zz21cz3c1", Name: "Blue Band", Description: "Product Description", Image: "blue-band.jpg", Category: "Fitness", Price: "79", Quantity: 2, InternalReference: "REF-1002", ShellID: 2, InventoryStatus: "LOWSTOCK", Rating: 3},
			{ID: 1003, Code: "244wgerg2", Name: "Blue T-Shirt", Description: "Product Description", Image: "blue-t-shirt.jpg", Category: "Clothing", Price: "29", Quantity: 25, InternalReference: "REF-1003", ShellID: 3, InventoryStatus: "INSTOCK", Rating: 5},
			{ID: 1004, Code: "h456wer53", Name: "Bracelet", Description: "Product Description", Image: "bracelet.jpg", Category: "Accessories", Price: "15", Quantity: 73, InternalReference: "REF-1004", ShellID: 1, InventoryStatus: "INSTOCK", Rating: 4},
			{ID: 1005, Code: "av2231fwg", Name: "Brown Purse", Description: "Product Description", Image: "brown-purse.jpg", Category: "Accessories", Price: "120", Quantity: 0, InternalReference: "REF-1005", ShellID: 1, InventoryStatus: "OUTOFSTOCK", Rating: 4},
			{ID: 1006, Code: "bib36pfvm", Name: "Chakra Bracelet", Description: "Product Description", Image: "chakra-bracelet.jpg", Category: "Accessories", Price: "32", Quantity: 5, InternalReference: "REF-1006", ShellID: 1, InventoryStatus: "LOWSTOCK", Rating: 3},
			{ID: 1007, Code: "mbvjkgip5", Name: "Galaxy Earrings", Description: "Product Description", Image: "galaxy-earrings.jpg", Category: "Accessories", Price: "34", Quantity: 23, InternalReference: "REF-1007", ShellID: 1, InventoryStatus: "INSTOCK", Rating: 5},
			{ID: 1008, Code: "vbb124btr", Name: "Game Controller", Description: "Product Description", Image: "game-controller.jpg", Category: "Electronics", Price: "99", Quantity: 2, InternalReference: "REF-1008", ShellID: 4, InventoryStatus: "LOWSTOCK", Rating: 4},
			{ID: 1009, Code: "cm230f032", Name: "Gaming Set", Description: "Product Description", Image: "gaming-set.jpg", Category: "Electronics", Price: "299", Quantity: 63, InternalReference: "REF-1009", ShellID: 4, InventoryStatus: "INSTOCK", Rating: 3},
		},
	}
}

func statusForQuantity(q int) models.InventoryStatus {
	switch {
	case q <= 0:
		return models.InventoryOutOfStock
	case q < 10:
		return models.InventoryLowStock
	default:
		return models.InventoryInStock
	}
}
