package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
)

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusRefunded  TransactionStatus = "refunded"
	StatusPending   TransactionStatus = "pending"
)

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	SKU         string          `json:"sku"`
	Barcode     string          `json:"barcode,omitempty"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	IsActive    bool   `json:"is_active"`
}

// CartItem carries a snapshot of the product as it looked when it was
// added to the cart. The snapshot is what gets frozen into a transaction.
type CartItem struct {
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Discount decimal.Decimal `json:"discount"`
}

type Transaction struct {
	ID            string            `json:"id"`
	Items         []CartItem        `json:"items"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Tax           decimal.Decimal   `json:"tax"`
	Discount      decimal.Decimal   `json:"discount"`
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Status        TransactionStatus `json:"status"`
	CashierID     string            `json:"cashier_id"`
	CustomerID    string            `json:"customer_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type ProductSales struct {
	Product      Product         `json:"product"`
	SoldQuantity int             `json:"sold_quantity"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// DashboardStats is the plain snapshot handed to the presentation layer.
type DashboardStats struct {
	TodaySales         decimal.Decimal   `json:"today_sales"`
	TodayTransactions  int               `json:"today_transactions"`
	LowStockItems      int               `json:"low_stock_items"`
	TotalProducts      int               `json:"total_products"`
	WeeklyTrend        []decimal.Decimal `json:"weekly_trend"`
	WeeklyTrendPercent []float64         `json:"weekly_trend_percent"`
	TopProducts        []ProductSales    `json:"top_products"`
	LowStockProducts   []Product         `json:"low_stock_products"`
}
