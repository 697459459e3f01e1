package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FactSale is a warehouse-resident sale referencing dimension surrogate keys.
// The unique index on SaleID is the deduplication guard: a racing transfer
// hitting the same business key sees an insert conflict, not a second row.
type FactSale struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SaleID       int64           `gorm:"uniqueIndex;not null" json:"sale_id"`
	Date         time.Time       `gorm:"index;not null" json:"date"`
	ProductID    uint            `gorm:"index;not null" json:"product_id"`
	ManagerID    uint            `gorm:"index;not null" json:"manager_id"`
	RegionID     uint            `gorm:"index;not null" json:"region_id"`
	SupplierID   uint            `gorm:"index;not null" json:"supplier_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	Discount     decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"discount"`
	Revenue      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"revenue"`
	PaymentType  string          `json:"payment_type"`
	SalesChannel string          `json:"sales_channel"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Product  *DimProduct  `gorm:"foreignKey:ProductID" json:"-"`
	Manager  *DimManager  `gorm:"foreignKey:ManagerID" json:"-"`
	Region   *DimRegion   `gorm:"foreignKey:RegionID" json:"-"`
	Supplier *DimSupplier `gorm:"foreignKey:SupplierID" json:"-"`
}

func (FactSale) TableName() string { return "fact_sales" }
