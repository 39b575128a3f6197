package config

import (
	"log"

	"farm-feed/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// SeedMasterData seeds the product catalogue. Idempotent: existing codes
// are left untouched.
func SeedMasterData(db *gorm.DB) error {
	products := []models.Product{
		{Code: "MAIZE-WHITE", Name: "White Maize", Category: "grain"},
		{Code: "MAIZE-YELLOW", Name: "Yellow Maize", Category: "grain"},
		{Code: "WHEAT", Name: "Wheat", Category: "grain"},
		{Code: "BARLEY", Name: "Barley", Category: "grain"},
		{Code: "SORGHUM", Name: "Sorghum", Category: "grain"},
		{Code: "SOYBEAN", Name: "Soybeans", Category: "oilseed"},
		{Code: "SUNFLOWER", Name: "Sunflower Seed", Category: "oilseed"},
		{Code: "LUCERNE", Name: "Lucerne Bales", Category: "feed"},
		{Code: "TEFF", Name: "Teff Bales", Category: "feed"},
		{Code: "ERAGROSTIS", Name: "Eragrostis Bales", Category: "feed"},
		{Code: "FEED-MIX", Name: "Dairy Feed Mix", Category: "feed"},
	}

	var seeded int
	for i := range products {
		result := db.Where("code = ?", products[i].Code).FirstOrCreate(&products[i])
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			seeded++
		}
	}

	if seeded > 0 {
		log.Printf("✅ Seeded %d products", seeded)
	}
	return nil
}
