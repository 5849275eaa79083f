package store

import (
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/safar/go-pos-store/internal/models"
)

func checkoutFixture(opts CatalogOptions, products ...models.Product) (*Catalog, *Cart, *Ledger, *Checkout) {
	catalog := NewCatalog(products, nil, opts)
	cart := testCart()
	ledger := NewLedger(nil)
	return catalog, cart, ledger, NewCheckout(catalog, cart, ledger)
}

func TestPayCommitsDecrementsAndClears(t *testing.T) {
	catalog, cart, ledger, checkout := checkoutFixture(CatalogOptions{}, testProduct("a", "4.50", 50))

	product, _ := catalog.Product("a")
	if err := cart.AddItem(product, 3); err != nil {
		t.Fatalf("Add item: %v", err)
	}

	tx, err := checkout.Pay(CheckoutRequest{PaymentMethod: models.PaymentCash, CashierID: "2"})
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	if want := decimal.RequireFromString("14.58"); !tx.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", tx.Total, want)
	}
	if tx.Status != models.StatusCompleted {
		t.Errorf("Status = %s, want completed", tx.Status)
	}
	if tx.CashierID != "2" {
		t.Errorf("CashierID = %s, want 2", tx.CashierID)
	}

	after, _ := catalog.Product("a")
	if after.Stock != 47 {
		t.Errorf("Stock = %d, want 47", after.Stock)
	}
	if cart.Len() != 0 {
		t.Errorf("Cart should be empty after checkout, has %d lines", cart.Len())
	}
	if ledger.Len() != 1 {
		t.Errorf("Ledger should hold 1 transaction, has %d", ledger.Len())
	}
}

func TestPayInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	catalog, cart, ledger, checkout := checkoutFixture(CatalogOptions{},
		testProduct("a", "4.50", 50), testProduct("b", "3.25", 2))

	a, _ := catalog.Product("a")
	b, _ := catalog.Product("b")
	if err := cart.AddItem(a, 1); err != nil {
		t.Fatalf("Add a: %v", err)
	}
	if err := cart.AddItem(b, 3); err != nil {
		t.Fatalf("Add b: %v", err)
	}

	_, err := checkout.Pay(CheckoutRequest{PaymentMethod: models.PaymentCard, CashierID: "2"})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Pay = %v, want ErrInsufficientStock", err)
	}

	// The failing second line must not leave the first line applied.
	afterA, _ := catalog.Product("a")
	afterB, _ := catalog.Product("b")
	if afterA.Stock != 50 || afterB.Stock != 2 {
		t.Errorf("Stock = %d/%d, want 50/2", afterA.Stock, afterB.Stock)
	}
	if ledger.Len() != 0 {
		t.Errorf("Ledger should stay empty, has %d", ledger.Len())
	}
	if cart.Len() != 2 {
		t.Errorf("Cart should keep its lines, has %d", cart.Len())
	}
}

func TestPayAllowsNegativeStockWhenConfigured(t *testing.T) {
	catalog, cart, _, checkout := checkoutFixture(CatalogOptions{AllowNegativeStock: true},
		testProduct("a", "4.50", 2))

	product, _ := catalog.Product("a")
	if err := cart.AddItem(product, 3); err != nil {
		t.Fatalf("Add item: %v", err)
	}

	if _, err := checkout.Pay(CheckoutRequest{PaymentMethod: models.PaymentCash, CashierID: "2"}); err != nil {
		t.Fatalf("Pay: %v", err)
	}

	after, _ := catalog.Product("a")
	if after.Stock != -1 {
		t.Errorf("Stock = %d, want -1", after.Stock)
	}
}

func TestPayEmptyCart(t *testing.T) {
	_, _, _, checkout := checkoutFixture(CatalogOptions{})

	if _, err := checkout.Pay(CheckoutRequest{PaymentMethod: models.PaymentCash, CashierID: "2"}); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("Pay = %v, want ErrEmptyCart", err)
	}
}

func TestPayAppliesCheckoutDiscount(t *testing.T) {
	catalog, cart, _, checkout := checkoutFixture(CatalogOptions{}, testProduct("a", "4.50", 50))

	product, _ := catalog.Product("a")
	if err := cart.AddItem(product, 3); err != nil {
		t.Fatalf("Add item: %v", err)
	}

	tx, err := checkout.Pay(CheckoutRequest{
		PaymentMethod: models.PaymentDigital,
		CashierID:     "2",
		Discount:      decimal.RequireFromString("2.00"),
	})
	if err != nil {
		t.Fatalf("Pay: %v", err)
	}

	if want := decimal.RequireFromString("12.58"); !tx.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", tx.Total, want)
	}
	if want := tx.Subtotal.Add(tx.Tax).Sub(tx.Discount); !tx.Total.Equal(want) {
		t.Errorf("Total invariant broken: %s != %s", tx.Total, want)
	}
}

func TestPayConcurrentCallsCommitOnce(t *testing.T) {
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(8))

	const attempts = 200
	for i := 0; i < attempts; i++ {
		catalog, cart, ledger, checkout := checkoutFixture(CatalogOptions{}, testProduct("a", "4.50", 50))

		product, _ := catalog.Product("a")
		if err := cart.AddItem(product, 3); err != nil {
			t.Fatalf("Add item: %v", err)
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		successes := 0
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := checkout.Pay(CheckoutRequest{PaymentMethod: models.PaymentCash, CashierID: "2"}); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		// Exactly one goroutine wins; the rest see an empty cart.
		if successes != 1 {
			t.Fatalf("Attempt %d: %d concurrent payments succeeded for one cart, want 1", i, successes)
		}
		if ledger.Len() != 1 {
			t.Fatalf("Attempt %d: ledger holds %d transactions, want 1", i, ledger.Len())
		}
		after, _ := catalog.Product("a")
		if after.Stock != 47 {
			t.Fatalf("Attempt %d: stock = %d, want 47", i, after.Stock)
		}
	}
}

func TestPayFreezesItemSnapshots(t *testing.T) {
	catalog, cart, ledger, checkout := checkoutFixture(CatalogOptions{}, testProduct("a", "4.50", 50))

	product, _ := catalog.Product("a")
	if err := cart.AddItem(product, 2); err != nil {
		t.Fatalf("Add item: %v", err)
	}
	if _, err := checkout.Pay(CheckoutRequest{PaymentMethod: models.PaymentCash, CashierID: "2"}); err != nil {
		t.Fatalf("Pay: %v", err)
	}

	// A later price change must not rewrite the committed line.
	price := decimal.RequireFromString("9.99")
	if err := catalog.UpdateProduct("a", ProductUpdate{Price: &price}); err != nil {
		t.Fatalf("Update product: %v", err)
	}

	item := ledger.Transactions()[0].Items[0]
	if want := decimal.RequireFromString("4.50"); !item.Product.Price.Equal(want) {
		t.Errorf("Frozen price = %s, want %s", item.Product.Price, want)
	}
}
