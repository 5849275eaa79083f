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

// Ledger is the append-only log of committed sales, most recent first.
// Once appended a transaction is never edited or removed.
type Ledger struct {
	broadcaster

	mu           sync.RWMutex
	transactions []models.Transaction
	now          func() time.Time
}

func NewLedger(transactions []models.Transaction) *Ledger {
	return &Ledger{
		transactions: append([]models.Transaction(nil), transactions...),
		now:          time.Now,
	}
}

// TransactionDraft is everything the caller decides about a sale; the
// ledger assigns the id and timestamp at commit time.
type TransactionDraft struct {
	Items         []models.CartItem
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod models.PaymentMethod
	Status        models.TransactionStatus
	CashierID     string
	CustomerID    string
}

// Commit freezes the draft into the log. The total must equal
// subtotal + tax - discount; anything else is a caller bug surfaced as
// ErrTotalMismatch rather than a corrupted ledger.
func (l *Ledger) Commit(draft TransactionDraft) (models.Transaction, error) {
	expected := draft.Subtotal.Add(draft.Tax).Sub(draft.Discount)
	if !draft.Total.Equal(expected) {
		return models.Transaction{}, fmt.Errorf("commit transaction: %w", ErrTotalMismatch)
	}

	tx := models.Transaction{
		ID:            uuid.NewString(),
		Items:         append([]models.CartItem(nil), draft.Items...),
		Subtotal:      draft.Subtotal,
		Tax:           draft.Tax,
		Discount:      draft.Discount,
		Total:         draft.Total,
		PaymentMethod: draft.PaymentMethod,
		Status:        draft.Status,
		CashierID:     draft.CashierID,
		CustomerID:    draft.CustomerID,
	}

	l.mu.Lock()
	tx.CreatedAt = l.now()
	l.transactions = append([]models.Transaction{tx}, l.transactions...)
	l.mu.Unlock()

	l.notify()
	return tx, nil
}

// Transactions returns the log, most recent first.
func (l *Ledger) Transactions() []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.Transaction(nil), l.transactions...)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.transactions)
}

type ledgerSnapshot struct {
	Transactions []models.Transaction `json:"transactions"`
}

func (l *Ledger) Serialize() ([]byte, error) {
	l.mu.RLock()
	data, err := json.Marshal(ledgerSnapshot{Transactions: l.transactions})
	l.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("serialize ledger: %w", err)
	}
	return data, nil
}

func (l *Ledger) Hydrate(blob []byte) error {
	var snap ledgerSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("hydrate ledger: %w", err)
	}

	l.mu.Lock()
	l.transactions = snap.Transactions
	l.mu.Unlock()

	l.notify()
	return nil
}
