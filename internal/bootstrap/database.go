package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"storepay/internal/models"
)

// MigrateAndSeed creates the catalog table on a local database and inserts a
// sample product when the table is empty. Production catalogs are owned by
// the CMS and are never migrated from here.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.Product{},
	}
}

// SampleProducts are inserted into an empty catalog.
var SampleProducts = []models.Product{
	{
		ID:         "demo-book",
		Slug:       "demo-book",
		Title:      "Demo Book",
		PriceMinor: 500000,
		Currency:   "NGN",
		IsInStock:  true,
		Status:     models.ProductStatusPublished,
	},
	{
		ID:         "demo-poster",
		Slug:       "demo-poster",
		Title:      "Demo Poster (sold out)",
		PriceMinor: 150000,
		Currency:   "NGN",
		IsInStock:  false,
		Status:     models.ProductStatusPublished,
	},
}

func seedDefaults(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		rows := make([]models.Product, len(SampleProducts))
		copy(rows, SampleProducts)
		return tx.Create(&rows).Error
	})
}
