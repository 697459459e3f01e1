package warehouse

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vantadata/salesdwgo/internal/models"
)

// Dimension registry: resolve-or-create by natural key.
//
// Every resolver inserts with ON CONFLICT DO NOTHING against the natural-key
// unique index and falls back to a lookup when nothing was inserted. Two
// concurrent resolutions of the same key therefore end up with the same row;
// there is no check-then-insert window. All resolvers run inside the caller's
// transaction so a fact row never references a dimension that is not yet
// committed.

// ResolveProduct returns the surrogate id for (name, brand, category)
func ResolveProduct(tx *gorm.DB, name, brand, category string) (uint, error) {
	name = strings.TrimSpace(name)
	brand = strings.TrimSpace(brand)
	category = strings.TrimSpace(category)
	if name == "" {
		return 0, &ValidationError{Field: "product_name", Message: "product name is required"}
	}

	row := models.DimProduct{Name: name, Brand: brand, Category: category}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return 0, fmt.Errorf("resolve product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := tx.Where("name = ? AND brand = ? AND category = ?", name, brand, category).
			First(&row).Error; err != nil {
			return 0, fmt.Errorf("resolve product: %w", err)
		}
	}
	return row.ID, nil
}

// ResolveManager returns the surrogate id for a manager name
func ResolveManager(tx *gorm.DB, name string) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &ValidationError{Field: "manager", Message: "manager name is required"}
	}

	row := models.DimManager{Name: name}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return 0, fmt.Errorf("resolve manager: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := tx.Where("name = ?", name).First(&row).Error; err != nil {
			return 0, fmt.Errorf("resolve manager: %w", err)
		}
	}
	return row.ID, nil
}

// ResolveRegion returns the surrogate id for (name, city)
func ResolveRegion(tx *gorm.DB, name, city string) (uint, error) {
	name = strings.TrimSpace(name)
	city = strings.TrimSpace(city)
	if name == "" {
		return 0, &ValidationError{Field: "region_name", Message: "region name is required"}
	}

	row := models.DimRegion{Name: name, City: city}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return 0, fmt.Errorf("resolve region: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := tx.Where("name = ? AND city = ?", name, city).First(&row).Error; err != nil {
			return 0, fmt.Errorf("resolve region: %w", err)
		}
	}
	return row.ID, nil
}

// ResolveSupplier returns the surrogate id for (name, country)
func ResolveSupplier(tx *gorm.DB, name, country string) (uint, error) {
	name = strings.TrimSpace(name)
	country = strings.TrimSpace(country)
	if name == "" {
		return 0, &ValidationError{Field: "supplier_name", Message: "supplier name is required"}
	}

	row := models.DimSupplier{Name: name, Country: country}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return 0, fmt.Errorf("resolve supplier: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := tx.Where("name = ? AND country = ?", name, country).First(&row).Error; err != nil {
			return 0, fmt.Errorf("resolve supplier: %w", err)
		}
	}
	return row.ID, nil
}
