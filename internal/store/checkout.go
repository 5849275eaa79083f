package store

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/safar/go-pos-store/internal/models"
)

// Checkout couples the cart, ledger, and catalog for the one flow that
// spans all three: committing a sale. Stock is decremented and the
// transaction appended as a unit; if any line cannot be fulfilled,
// nothing changes and the cart stays intact. Pay runs under its own
// mutex so concurrent requests cannot commit the same cart twice.
type Checkout struct {
	mu      sync.Mutex
	catalog *Catalog
	cart    *Cart
	ledger  *Ledger
}

func NewCheckout(catalog *Catalog, cart *Cart, ledger *Ledger) *Checkout {
	return &Checkout{catalog: catalog, cart: cart, ledger: ledger}
}

type CheckoutRequest struct {
	PaymentMethod models.PaymentMethod
	CashierID     string
	CustomerID    string
	Discount      decimal.Decimal
}

func (co *Checkout) Pay(req CheckoutRequest) (models.Transaction, error) {
	co.mu.Lock()
	defer co.mu.Unlock()

	items, subtotal, tax := co.cart.snapshot()
	if len(items) == 0 {
		return models.Transaction{}, ErrEmptyCart
	}
	total := subtotal.Add(tax).Sub(req.Discount)

	if err := co.catalog.decrementForSale(items); err != nil {
		return models.Transaction{}, err
	}

	tx, err := co.ledger.Commit(TransactionDraft{
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Discount:      req.Discount,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Status:        models.StatusCompleted,
		CashierID:     req.CashierID,
		CustomerID:    req.CustomerID,
	})
	if err != nil {
		co.catalog.restock(items)
		return models.Transaction{}, err
	}

	co.cart.Clear()
	return tx, nil
}
