package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/safar/go-pos-store/internal/models"
)

// DemoProducts is the starter catalog used when no snapshot exists yet.
func DemoProducts(now time.Time) []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Coffee - Americano",
			Description: "Rich and bold coffee",
			Price:       decimal.RequireFromString("4.50"),
			Cost:        decimal.RequireFromString("1.50"),
			SKU:         "COF-001",
			Barcode:     "1234567890123",
			Category:    "Beverages",
			Stock:       50,
			MinStock:    10,
			ImageURL:    "https://images.pexels.com/photos/312418/pexels-photo-312418.jpeg?auto=compress&cs=tinysrgb&w=400",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "2",
			Name:        "Croissant",
			Description: "Fresh baked croissant",
			Price:       decimal.RequireFromString("3.25"),
			Cost:        decimal.RequireFromString("1.00"),
			SKU:         "BKR-001",
			Category:    "Bakery",
			Stock:       25,
			MinStock:    5,
			ImageURL:    "https://images.pexels.com/photos/1565982/pexels-photo-1565982.jpeg?auto=compress&cs=tinysrgb&w=400",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          "3",
			Name:        "Sandwich - Club",
			Description: "Triple decker club sandwich",
			Price:       decimal.RequireFromString("8.99"),
			Cost:        decimal.RequireFromString("3.50"),
			SKU:         "SND-001",
			Category:    "Food",
			Stock:       15,
			MinStock:    3,
			ImageURL:    "https://images.pexels.com/photos/1199960/pexels-photo-1199960.jpeg?auto=compress&cs=tinysrgb&w=400",
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func DemoCategories() []models.Category {
	return []models.Category{
		{ID: "1", Name: "Beverages", Description: "Hot and cold drinks", Color: "#3B82F6", IsActive: true},
		{ID: "2", Name: "Food", Description: "Main dishes and snacks", Color: "#10B981", IsActive: true},
		{ID: "3", Name: "Bakery", Description: "Fresh baked goods", Color: "#F59E0B", IsActive: true},
		{ID: "4", Name: "Retail", Description: "Retail merchandise", Color: "#8B5CF6", IsActive: true},
	}
}
