package store

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/safar/go-pos-store/internal/models"
)

// Dashboard projects the catalog and ledger into the statistics the
// dashboard renders. It holds no state of its own: every call recomputes
// from the current snapshots, so with no intervening mutation two calls
// return the same output.
type Dashboard struct {
	catalog *Catalog
	ledger  *Ledger
}

func NewDashboard(catalog *Catalog, ledger *Ledger) *Dashboard {
	return &Dashboard{catalog: catalog, ledger: ledger}
}

// Stats computes the dashboard snapshot with at as the "today" boundary.
// Days are calendar days in at's location.
func (d *Dashboard) Stats(at time.Time) models.DashboardStats {
	products := d.catalog.Products()
	transactions := d.ledger.Transactions()

	todaySales := decimal.Zero
	todayCount := 0
	for _, tx := range transactions {
		if sameDay(tx.CreatedAt, at) {
			todaySales = todaySales.Add(tx.Total)
			todayCount++
		}
	}

	var lowStock []models.Product
	for _, p := range products {
		if p.Stock <= p.MinStock {
			lowStock = append(lowStock, p)
		}
	}

	// Trailing 7 calendar days, oldest first, today last.
	trend := make([]decimal.Decimal, 7)
	for i := range trend {
		day := at.AddDate(0, 0, i-6)
		sum := decimal.Zero
		for _, tx := range transactions {
			if sameDay(tx.CreatedAt, day) {
				sum = sum.Add(tx.Total)
			}
		}
		trend[i] = sum
	}

	return models.DashboardStats{
		TodaySales:         todaySales,
		TodayTransactions:  todayCount,
		LowStockItems:      len(lowStock),
		TotalProducts:      len(products),
		WeeklyTrend:        trend,
		WeeklyTrendPercent: trendPercent(trend),
		TopProducts:        topProducts(products, transactions, 5),
		LowStockProducts:   lowStock,
	}
}

// topProducts ranks every product by all-time sold quantity. Revenue uses
// the product's current price, not the price frozen into past
// transactions; the dashboard has always reported it that way.
func topProducts(products []models.Product, transactions []models.Transaction, limit int) []models.ProductSales {
	sales := make([]models.ProductSales, 0, len(products))
	for _, p := range products {
		sold := 0
		for _, tx := range transactions {
			for _, item := range tx.Items {
				if item.Product.ID == p.ID {
					sold += item.Quantity
				}
			}
		}
		sales = append(sales, models.ProductSales{
			Product:      p,
			SoldQuantity: sold,
			Revenue:      p.Price.Mul(decimal.NewFromInt(int64(sold))),
		})
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].SoldQuantity > sales[j].SoldQuantity
	})

	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales
}

// trendPercent scales each day against the busiest day for the trend
// bars. An all-zero week maps to all-zero percentages, never a division
// by zero.
func trendPercent(trend []decimal.Decimal) []float64 {
	max := decimal.Zero
	for _, amount := range trend {
		if amount.GreaterThan(max) {
			max = amount
		}
	}

	percent := make([]float64, len(trend))
	if max.IsZero() {
		return percent
	}
	for i, amount := range trend {
		percent[i] = amount.Div(max).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return percent
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
