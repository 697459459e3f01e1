package models

import "time"

// Dimension rows are created lazily by the transfer engine on first reference
// and never updated in place: a new attribute combination is a new row, so
// historical fact rows keep their meaning. Each natural key carries a unique
// index; the registry relies on it for race-safe insert-if-absent.

// DimProduct is identified by (name, brand, category)
type DimProduct struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:ux_dim_products_nk" json:"name"`
	Brand     string    `gorm:"uniqueIndex:ux_dim_products_nk" json:"brand"`
	Category  string    `gorm:"uniqueIndex:ux_dim_products_nk" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (DimProduct) TableName() string { return "dim_products" }

// DimManager is identified by name alone
type DimManager struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (DimManager) TableName() string { return "dim_managers" }

// DimRegion is identified by (name, city)
type DimRegion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:ux_dim_regions_nk" json:"name"`
	City      string    `gorm:"uniqueIndex:ux_dim_regions_nk" json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

func (DimRegion) TableName() string { return "dim_regions" }

// DimSupplier is identified by (name, country)
type DimSupplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:ux_dim_suppliers_nk" json:"name"`
	Country   string    `gorm:"uniqueIndex:ux_dim_suppliers_nk" json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

func (DimSupplier) TableName() string { return "dim_suppliers" }
