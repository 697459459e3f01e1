package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vantadata/salesdwgo/internal/models"
	"github.com/vantadata/salesdwgo/internal/services/report"
	"github.com/vantadata/salesdwgo/internal/warehouse"
)

// dimItem is the dropdown shape the dashboard expects
type dimItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// listDimension returns the id/name pairs of one dimension table, ordered by
// name. Regions render as "Region - City", the composite label the dashboard
// splits on.
func (r *Router) listDimension(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	var (
		items []dimItem
		err   error
	)
	switch vars["dim"] {
	case "product":
		err = r.db.Model(&models.DimProduct{}).
			Select("id, name").Order("name").Scan(&items).Error
	case "manager":
		err = r.db.Model(&models.DimManager{}).
			Select("id, name").Order("name").Scan(&items).Error
	case "region":
		err = r.db.Model(&models.DimRegion{}).
			Select("id, name || ' - ' || city AS name").Order("name").Scan(&items).Error
	case "supplier":
		err = r.db.Model(&models.DimSupplier{}).
			Select("id, name").Order("name").Scan(&items).Error
	default:
		respondError(w, http.StatusNotFound, "unknown dimension "+vars["dim"])
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch dimension")
		return
	}
	if items == nil {
		items = []dimItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// parseReportDimensions validates dimension1/dimension2 query parameters
func parseReportDimensions(req *http.Request) (warehouse.Dimension, warehouse.Dimension, error) {
	d1, err := warehouse.ParseDimension(req.URL.Query().Get("dimension1"))
	if err != nil {
		return "", "", err
	}
	d2, err := warehouse.ParseDimension(req.URL.Query().Get("dimension2"))
	if err != nil {
		return "", "", err
	}
	return d1, d2, nil
}

// aggregateReport answers the generic two-dimension pivot query
func (r *Router) aggregateReport(w http.ResponseWriter, req *http.Request) {
	d1, d2, err := parseReportDimensions(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	rows, err := r.engine.Aggregate(req.Context(), d1, d2)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// exportAggregateReport renders the same pivot as a downloadable PDF
func (r *Router) exportAggregateReport(w http.ResponseWriter, req *http.Request) {
	d1, d2, err := parseReportDimensions(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	rows, err := r.engine.Aggregate(req.Context(), d1, d2)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	pdf, err := report.AggregatePDF(string(d1), string(d2), rows)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		`attachment; filename="revenue_`+string(d1)+`_`+string(d2)+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// rankings answers the top-N revenue query for manager/product/region
func (r *Router) rankings(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	rows, err := r.engine.Rank(req.Context(), warehouse.Dimension(vars["entity"]), limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// dashboardMetrics returns the headline figures for the dashboard cards
func (r *Router) dashboardMetrics(w http.ResponseWriter, req *http.Request) {
	metrics, err := r.engine.Metrics(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}
