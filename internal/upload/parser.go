// Package upload turns spreadsheet files into staging sale records.
// Rows that fail required-field validation are skipped and reported, never
// aborting the whole file.
package upload

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vantadata/salesdwgo/internal/models"
	"github.com/vantadata/salesdwgo/internal/warehouse"
)

// RowError describes one skipped row; the slice of these becomes the
// upload batch's skip report. Row is 0 for failures without a source row,
// e.g. a storage error after parsing.
type RowError struct {
	Row    int    `json:"row,omitempty"`
	Reason string `json:"reason"`
}

// datetime layouts accepted in spreadsheet cells, most specific first
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01-02-06 15:04", // excelize's default short format
	"1/2/06 15:04",
}

// ParseDatetime parses a sale timestamp in any accepted layout
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// ParseFile reads an .xlsx or .csv stream into staging records. The first row
// must be a header naming the StagingSale columns (sale_id, sale_datetime,
// region_name, city, manager, product_id, product_name, brand, category,
// supplier_name, supplier_country, quantity, unit_price, discount, revenue,
// payment_type, sales_channel). Returns the valid records, the per-row skip
// reasons, and a hard error only when the file itself is unreadable.
func ParseFile(filename string, r io.Reader) ([]models.StagingSale, []RowError, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

func parseXLSX(r io.Reader) ([]models.StagingSale, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return buildRecords(rows)
}

func parseCSV(r io.Reader) ([]models.StagingSale, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	return buildRecords(rows)
}

func buildRecords(rows [][]string) ([]models.StagingSale, []RowError, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["sale_id"]; !ok {
		return nil, nil, fmt.Errorf("header row has no sale_id column")
	}

	var records []models.StagingSale
	var skipped []RowError
	for n, row := range rows[1:] {
		rowNum := n + 2 // 1-based, after the header
		if isBlank(row) {
			continue
		}
		rec, err := buildRecord(cols, row)
		if err != nil {
			skipped = append(skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		records = append(records, *rec)
	}
	return records, skipped, nil
}

func buildRecord(cols map[string]int, row []string) (*models.StagingSale, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	saleID, err := strconv.ParseInt(cell("sale_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("sale_id: %q is not an integer", cell("sale_id"))
	}

	dt, err := ParseDatetime(cell("sale_datetime"))
	if err != nil {
		return nil, fmt.Errorf("sale_datetime: %v", err)
	}

	quantity, err := strconv.Atoi(cell("quantity"))
	if err != nil {
		return nil, fmt.Errorf("quantity: %q is not an integer", cell("quantity"))
	}

	unitPrice, err := decimal.NewFromString(cell("unit_price"))
	if err != nil {
		return nil, fmt.Errorf("unit_price: %q is not a number", cell("unit_price"))
	}

	discount := decimal.Zero
	if v := cell("discount"); v != "" {
		discount, err = decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("discount: %q is not a number", v)
		}
	}

	var revenue decimal.NullDecimal
	if v := cell("revenue"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("revenue: %q is not a number", v)
		}
		revenue = decimal.NullDecimal{Decimal: d, Valid: true}
	}

	var productID *int64
	if v := cell("product_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("product_id: %q is not an integer", v)
		}
		productID = &id
	}

	rec := &models.StagingSale{
		SaleID:          saleID,
		SaleDatetime:    dt,
		RegionName:      cell("region_name"),
		City:            cell("city"),
		Manager:         cell("manager"),
		ProductID:       productID,
		ProductName:     cell("product_name"),
		Brand:           cell("brand"),
		Category:        cell("category"),
		SupplierName:    cell("supplier_name"),
		SupplierCountry: cell("supplier_country"),
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		Discount:        discount,
		Revenue:         revenue,
		PaymentType:     cell("payment_type"),
		SalesChannel:    cell("sales_channel"),
	}
	if err := warehouse.ValidateStaging(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
