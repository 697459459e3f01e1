package warehouse

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vantadata/salesdwgo/internal/models"
)

// ValidateStaging checks the required fields of a staging record before it is
// created or edited. The same rules gate spreadsheet rows during bulk upload.
func ValidateStaging(s *models.StagingSale) error {
	required := []struct {
		field string
		value string
	}{
		{"region_name", s.RegionName},
		{"city", s.City},
		{"manager", s.Manager},
		{"product_name", s.ProductName},
		{"category", s.Category},
		{"supplier_name", s.SupplierName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: "is required"}
		}
	}

	if s.SaleDatetime.IsZero() {
		return &ValidationError{Field: "sale_datetime", Message: "is required"}
	}
	if s.Quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	if s.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Message: "must not be negative"}
	}
	// Discount is a 0-1 fraction (documented assumption: the entry form steps
	// by 0.01 with default 0)
	if s.Discount.IsNegative() || s.Discount.GreaterThan(decimal.NewFromInt(1)) {
		return &ValidationError{Field: "discount", Message: "must be a fraction between 0 and 1"}
	}
	return nil
}

// ComputeRevenue applies quantity * unit_price * (1 - discount), rounded to
// cents. Used only when the staging record carries no manual revenue figure.
func ComputeRevenue(quantity int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(1).Sub(discount)).
		Round(2)
}
