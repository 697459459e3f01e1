package warehouse

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Dimension is the closed vocabulary for aggregation and ranking queries.
// Keeping it an enumeration (rather than a column name string) means an
// unsupported request fails with InvalidDimensionError before any SQL is built.
type Dimension string

const (
	DimRegion   Dimension = "region"
	DimMonth    Dimension = "month"
	DimQuarter  Dimension = "quarter"
	DimYear     Dimension = "year"
	DimManager  Dimension = "manager"
	DimProduct  Dimension = "product"
	DimCategory Dimension = "category"
	DimSupplier Dimension = "supplier"
)

// dimensionSpec maps a dimension to its SQL label expression and, for entity
// dimensions, the join that makes the expression resolvable. Time dimensions
// derive from fact_sales.date; their labels (YYYY-MM, Q1..Q4, YYYY) sort
// lexicographically in chronological order.
type dimensionSpec struct {
	expr string
	join string
}

var dimensionSpecs = map[Dimension]dimensionSpec{
	DimRegion: {
		expr: "dim_regions.name || ' - ' || dim_regions.city",
		join: "JOIN dim_regions ON dim_regions.id = fact_sales.region_id",
	},
	DimMonth:   {expr: "to_char(fact_sales.date, 'YYYY-MM')"},
	DimQuarter: {expr: "'Q' || to_char(fact_sales.date, 'Q')"},
	DimYear:    {expr: "to_char(fact_sales.date, 'YYYY')"},
	DimManager: {
		expr: "dim_managers.name",
		join: "JOIN dim_managers ON dim_managers.id = fact_sales.manager_id",
	},
	DimProduct: {
		expr: "dim_products.name",
		join: "JOIN dim_products ON dim_products.id = fact_sales.product_id",
	},
	DimCategory: {
		expr: "dim_products.category",
		join: "JOIN dim_products ON dim_products.id = fact_sales.product_id",
	},
	DimSupplier: {
		expr: "dim_suppliers.name",
		join: "JOIN dim_suppliers ON dim_suppliers.id = fact_sales.supplier_id",
	},
}

// ParseDimension validates a caller-supplied dimension name
func ParseDimension(name string) (Dimension, error) {
	d := Dimension(name)
	if _, ok := dimensionSpecs[d]; !ok {
		return "", &InvalidDimensionError{Name: name}
	}
	return d, nil
}

// rankable entities for /rankings/*
var rankableDimensions = map[Dimension]bool{
	DimManager: true,
	DimProduct: true,
	DimRegion:  true,
}

// AggregateRow is one cell of a two-dimensional pivot
type AggregateRow struct {
	D1    string          `json:"d1"`
	D2    string          `json:"d2"`
	Value decimal.Decimal `json:"value"`
}

// Aggregate sums revenue over all fact rows grouped by the two dimensions.
// Results are ordered ascending by (d1, d2); grouped pairs are unique, so the
// output sequence is deterministic for an unchanged fact table.
func (e *Engine) Aggregate(ctx context.Context, d1, d2 Dimension) ([]AggregateRow, error) {
	s1, ok := dimensionSpecs[d1]
	if !ok {
		return nil, &InvalidDimensionError{Name: string(d1)}
	}
	s2, ok := dimensionSpecs[d2]
	if !ok {
		return nil, &InvalidDimensionError{Name: string(d2)}
	}

	joins := s1.join
	if s2.join != "" && s2.join != s1.join {
		if joins != "" {
			joins += " "
		}
		joins += s2.join
	}

	query := fmt.Sprintf(
		"SELECT %s AS d1, %s AS d2, SUM(fact_sales.revenue) AS value FROM fact_sales %s GROUP BY 1, 2 ORDER BY 1, 2",
		s1.expr, s2.expr, joins,
	)

	rows := []AggregateRow{}
	if err := e.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("aggregate %s/%s: %w", d1, d2, err)
	}
	return rows, nil
}

// RankRow is one line of a revenue ranking
type RankRow struct {
	Rank    int             `json:"rank"`
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DefaultRankLimit applies when the caller does not ask for a specific depth
const DefaultRankLimit = 5

// Rank sums revenue by the named entity and returns the top rows, revenue
// descending with ties broken by name ascending. Ranks are consecutive from 1;
// tied revenues still get distinct ranks.
func (e *Engine) Rank(ctx context.Context, entity Dimension, limit int) ([]RankRow, error) {
	spec, ok := dimensionSpecs[entity]
	if !ok || !rankableDimensions[entity] {
		return nil, &InvalidDimensionError{Name: string(entity)}
	}
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	query := fmt.Sprintf(
		"SELECT %s AS name, SUM(fact_sales.revenue) AS revenue FROM fact_sales %s GROUP BY 1 ORDER BY revenue DESC, name ASC LIMIT ?",
		spec.expr, spec.join,
	)

	rows := []RankRow{}
	if err := e.db.WithContext(ctx).Raw(query, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("rank %s: %w", entity, err)
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// Metrics are the dashboard headline figures over the whole fact table
type Metrics struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	CountSales    int64           `json:"count_sales"`
	AvgCheck      decimal.Decimal `json:"avg_check"`
	TotalQuantity int64           `json:"total_quantity"`
}

// Metrics computes totals over the full fact store; an empty warehouse yields
// zeros, not a division fault.
func (e *Engine) Metrics(ctx context.Context) (Metrics, error) {
	var m Metrics
	err := e.db.WithContext(ctx).Raw(
		"SELECT COALESCE(SUM(revenue), 0) AS total_revenue, COUNT(*) AS count_sales, COALESCE(SUM(quantity), 0) AS total_quantity FROM fact_sales",
	).Scan(&m).Error
	if err != nil {
		return m, fmt.Errorf("metrics: %w", err)
	}
	if m.CountSales > 0 {
		m.AvgCheck = m.TotalRevenue.Div(decimal.NewFromInt(m.CountSales)).Round(2)
	} else {
		m.AvgCheck = decimal.Zero
	}
	return m, nil
}
