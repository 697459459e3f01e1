package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StagingSale is a raw, denormalized sale record awaiting transfer into the
// warehouse. SaleID is the business key used for deduplication; the surrogate
// ID is what the API and the transfer engine address rows by. SaleID is not
// unique here: duplicated source rows may be staged, and the fact table's
// unique index decides which one reaches the warehouse.
type StagingSale struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	SaleID          int64               `gorm:"index;not null" json:"sale_id"`
	SaleDatetime    time.Time           `gorm:"not null" json:"sale_datetime"`
	RegionName      string              `gorm:"index;not null" json:"region_name"`
	City            string              `gorm:"not null" json:"city"`
	Manager         string              `gorm:"index;not null" json:"manager"`
	ProductID       *int64              `json:"product_id"` // optional external hint, not a FK
	ProductName     string              `gorm:"not null" json:"product_name"`
	Brand           string              `json:"brand"`
	Category        string              `gorm:"not null" json:"category"`
	SupplierName    string              `gorm:"not null" json:"supplier_name"`
	SupplierCountry string              `json:"supplier_country"`
	Quantity        int                 `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal     `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	Discount        decimal.Decimal     `gorm:"type:decimal(6,4);not null;default:0" json:"discount"`
	Revenue         decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"revenue"`
	PaymentType     string              `json:"payment_type"`
	SalesChannel    string              `json:"sales_channel"`
	Transferred     IntBool             `gorm:"type:boolean;not null;default:false;index" json:"transferred"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TableName keeps the table name the dashboard's API docs used
func (StagingSale) TableName() string {
	return "oltp_sales"
}
