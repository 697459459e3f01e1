package warehouse

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vantadata/salesdwgo/internal/models"
)

// Every test in this package shares this embedded-postgres port; test
// functions run sequentially, so there is no clash.
const testPort = 55431

// stageDate is the default SaleDatetime used by stageSale
func stageDate() time.Time {
	return time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// stageSale inserts a valid staging record and returns it. mut tweaks the
// defaults per test case.
func stageSale(t *testing.T, db *gorm.DB, saleID int64, mut func(*models.StagingSale)) models.StagingSale {
	t.Helper()
	rec := models.StagingSale{
		SaleID:          saleID,
		SaleDatetime:    stageDate(),
		RegionName:      "West",
		City:            "Lviv",
		Manager:         "Olena Shevchenko",
		ProductName:     "ThinkPad T14",
		Brand:           "Lenovo",
		Category:        "Laptops",
		SupplierName:    "TechTrade LLC",
		SupplierCountry: "Ukraine",
		Quantity:        3,
		UnitPrice:       mustDecimal(t, "10.00"),
		Discount:        mustDecimal(t, "0.10"),
		PaymentType:     "Card",
		SalesChannel:    "Website",
	}
	if mut != nil {
		mut(&rec)
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("failed to stage sale %d: %v", saleID, err)
	}
	return rec
}

// insertFact writes a fact row directly, resolving dimensions by name
func insertFact(t *testing.T, db *gorm.DB, saleID int64, date time.Time, product, manager, region, city string, revenue string) models.FactSale {
	t.Helper()

	productID, err := ResolveProduct(db, product, "Lenovo", "Laptops")
	if err != nil {
		t.Fatalf("resolve product: %v", err)
	}
	managerID, err := ResolveManager(db, manager)
	if err != nil {
		t.Fatalf("resolve manager: %v", err)
	}
	regionID, err := ResolveRegion(db, region, city)
	if err != nil {
		t.Fatalf("resolve region: %v", err)
	}
	supplierID, err := ResolveSupplier(db, "TechTrade LLC", "Ukraine")
	if err != nil {
		t.Fatalf("resolve supplier: %v", err)
	}

	rev := mustDecimal(t, revenue)
	fact := models.FactSale{
		SaleID:     saleID,
		Date:       date,
		ProductID:  productID,
		ManagerID:  managerID,
		RegionID:   regionID,
		SupplierID: supplierID,
		Quantity:   1,
		UnitPrice:  rev,
		Revenue:    rev,
	}
	if err := db.Create(&fact).Error; err != nil {
		t.Fatalf("failed to insert fact %d: %v", saleID, err)
	}
	return fact
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}
