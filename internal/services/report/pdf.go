package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/vantadata/salesdwgo/internal/warehouse"
)

// AggregatePDF renders a two-dimensional revenue pivot as a printable table.
func AggregatePDF(dim1, dim2 string, rows []warehouse.AggregateRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Revenue by %s x %s", dim1, dim2), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	// Header row
	const (
		colDim   = 65.0
		colValue = 50.0
		rowH     = 7.0
	)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colDim, rowH, dim1, "1", 0, "L", true, 0, "")
	pdf.CellFormat(colDim, rowH, dim2, "1", 0, "L", true, 0, "")
	pdf.CellFormat(colValue, rowH, "Revenue", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(colDim, rowH, row.D1, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colDim, rowH, row.D2, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colValue, rowH, row.Value.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	if len(rows) == 0 {
		pdf.CellFormat(colDim*2+colValue, rowH, "No data", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
