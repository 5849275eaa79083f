package store

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/safar/go-pos-store/internal/models"
)

// Cart is the single in-progress sale. It is never persisted; a process
// restart starts with an empty cart.
type Cart struct {
	broadcaster

	mu      sync.RWMutex
	items   []models.CartItem
	taxRate decimal.Decimal
}

func NewCart(taxRate decimal.Decimal) *Cart {
	return &Cart{taxRate: taxRate}
}

// AddItem puts quantity units of product into the cart. A line for the
// same product id is incremented in place; a new product appends a line at
// the end, so line order is entry order.
func (c *Cart) AddItem(product models.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			c.items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		c.items = append(c.items, models.CartItem{Product: product, Quantity: quantity})
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	removed := false
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			removed = true
			break
		}
	}
	c.mu.Unlock()

	if removed {
		c.notify()
	}
}

// UpdateQuantity sets the line's quantity to an absolute value. A quantity
// of zero or less removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}

	c.mu.Lock()
	changed := false
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			changed = true
			break
		}
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	c.notify()
}

func (c *Cart) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.CartItem(nil), c.items...)
}

func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Subtotal sums price x quantity over all lines. Line discounts are
// recorded on the model but do not reduce the subtotal.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subtotalLocked()
}

func (c *Cart) subtotalLocked() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// snapshot returns the lines together with the totals computed from them,
// under one lock, so the caller never sees totals from a different set of
// lines than the ones it got.
func (c *Cart) snapshot() (items []models.CartItem, subtotal, tax decimal.Decimal) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items = append([]models.CartItem(nil), c.items...)
	subtotal = c.subtotalLocked()
	tax = subtotal.Mul(c.taxRate)
	return items, subtotal, tax
}

func (c *Cart) Tax() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subtotalLocked().Mul(c.taxRate)
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	subtotal := c.subtotalLocked()
	return subtotal.Add(subtotal.Mul(c.taxRate))
}
