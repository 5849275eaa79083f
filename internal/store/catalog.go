package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safar/go-pos-store/internal/models"
)

// Catalog owns the product and category lists. All mutations go through
// its methods; reads hand out copies so callers never alias internal state.
type Catalog struct {
	broadcaster

	mu         sync.RWMutex
	products   []models.Product
	categories []models.Category

	allowNegativeStock bool
	now                func() time.Time
}

type CatalogOptions struct {
	// AllowNegativeStock disables the stock floor: adjustments and sales
	// may drive stock below zero, matching a business that oversells.
	AllowNegativeStock bool
}

func NewCatalog(products []models.Product, categories []models.Category, opts CatalogOptions) *Catalog {
	return &Catalog{
		products:           append([]models.Product(nil), products...),
		categories:         append([]models.Category(nil), categories...),
		allowNegativeStock: opts.AllowNegativeStock,
		now:                time.Now,
	}
}

// NewProduct is the input for AddProduct; id and timestamps are assigned
// by the catalog.
type NewProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	SKU         string          `json:"sku"`
	Barcode     string          `json:"barcode"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	ImageURL    string          `json:"image_url"`
	IsActive    bool            `json:"is_active"`
}

// ProductUpdate is a partial patch; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	SKU         *string          `json:"sku"`
	Barcode     *string          `json:"barcode"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
	MinStock    *int             `json:"min_stock"`
	ImageURL    *string          `json:"image_url"`
	IsActive    *bool            `json:"is_active"`
}

func (c *Catalog) AddProduct(input NewProduct) models.Product {
	c.mu.Lock()
	now := c.now()
	product := models.Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Cost:        input.Cost,
		SKU:         input.SKU,
		Barcode:     input.Barcode,
		Category:    input.Category,
		Stock:       input.Stock,
		MinStock:    input.MinStock,
		ImageURL:    input.ImageURL,
		IsActive:    input.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.products = append(c.products, product)
	c.mu.Unlock()

	c.notify()
	return product
}

func (c *Catalog) UpdateProduct(id string, patch ProductUpdate) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrProductNotFound
	}

	p := &c.products[idx]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Cost != nil {
		p.Cost = *patch.Cost
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.Barcode != nil {
		p.Barcode = *patch.Barcode
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.MinStock != nil {
		p.MinStock = *patch.MinStock
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	p.UpdatedAt = c.now()
	c.mu.Unlock()

	c.notify()
	return nil
}

func (c *Catalog) DeleteProduct(id string) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrProductNotFound
	}
	c.products = append(c.products[:idx], c.products[idx+1:]...)
	c.mu.Unlock()

	c.notify()
	return nil
}

// AdjustStock subtracts quantity from the product's stock (a sale passes a
// positive quantity, a restock a negative one). When negative stock is
// disallowed, an adjustment that would cross zero fails and leaves the
// product untouched.
func (c *Catalog) AdjustStock(id string, quantity int) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrProductNotFound
	}

	p := &c.products[idx]
	next := p.Stock - quantity
	if next < 0 && !c.allowNegativeStock {
		c.mu.Unlock()
		return fmt.Errorf("adjust stock for %s: %w", id, ErrInsufficientStock)
	}
	p.Stock = next
	p.UpdatedAt = c.now()
	c.mu.Unlock()

	c.notify()
	return nil
}

// decrementForSale applies the stock decrement for every line of a sale as
// one unit: every line is checked before any is applied, so a failing line
// leaves the whole catalog unchanged.
func (c *Catalog) decrementForSale(items []models.CartItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	indexes := make([]int, len(items))
	for i, item := range items {
		idx := c.indexOf(item.Product.ID)
		if idx < 0 {
			return fmt.Errorf("sale line %s: %w", item.Product.ID, ErrProductNotFound)
		}
		if !c.allowNegativeStock && c.products[idx].Stock < item.Quantity {
			return fmt.Errorf("sale line %s: %w", item.Product.ID, ErrInsufficientStock)
		}
		indexes[i] = idx
	}

	now := c.now()
	for i, item := range items {
		p := &c.products[indexes[i]]
		p.Stock -= item.Quantity
		p.UpdatedAt = now
	}
	return nil
}

// restock reverses decrementForSale when a later checkout step fails.
func (c *Catalog) restock(items []models.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, item := range items {
		if idx := c.indexOf(item.Product.ID); idx >= 0 {
			c.products[idx].Stock += item.Quantity
			c.products[idx].UpdatedAt = now
		}
	}
}

func (c *Catalog) Product(id string) (models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if idx := c.indexOf(id); idx >= 0 {
		return c.products[idx], nil
	}
	return models.Product{}, ErrProductNotFound
}

func (c *Catalog) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Product(nil), c.products...)
}

func (c *Catalog) Categories() []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Category(nil), c.categories...)
}

func (c *Catalog) ReplaceCategories(categories []models.Category) {
	c.mu.Lock()
	c.categories = append([]models.Category(nil), categories...)
	c.mu.Unlock()

	c.notify()
}

// indexOf must be called with c.mu held.
func (c *Catalog) indexOf(id string) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}

type catalogSnapshot struct {
	Products   []models.Product  `json:"products"`
	Categories []models.Category `json:"categories"`
}

func (c *Catalog) Serialize() ([]byte, error) {
	c.mu.RLock()
	snap := catalogSnapshot{Products: c.products, Categories: c.categories}
	data, err := json.Marshal(snap)
	c.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("serialize catalog: %w", err)
	}
	return data, nil
}

func (c *Catalog) Hydrate(blob []byte) error {
	var snap catalogSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("hydrate catalog: %w", err)
	}

	c.mu.Lock()
	c.products = snap.Products
	c.categories = snap.Categories
	c.mu.Unlock()

	c.notify()
	return nil
}
