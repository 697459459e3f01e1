package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/vantadata/salesdwgo/internal/buildinfo"
	"github.com/vantadata/salesdwgo/internal/database"
	"github.com/vantadata/salesdwgo/internal/warehouse"
)

// Router wraps the mux router, the database and the warehouse engine
type Router struct {
	*mux.Router
	db     *database.DB
	engine *warehouse.Engine
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		db:     db,
		engine: warehouse.NewEngine(db.DB),
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Staging (OLTP) routes
	oltp := r.PathPrefix("/oltp").Subrouter()
	oltp.HandleFunc("/sales", r.listStagingSales).Methods("GET")
	oltp.HandleFunc("/sales/count", r.countStagingSales).Methods("GET")
	oltp.HandleFunc("/sales", r.createStagingSale).Methods("POST")
	oltp.HandleFunc("/sales/{id}", r.updateStagingSale).Methods("PUT")
	oltp.HandleFunc("/sales/{id}", r.deleteStagingSale).Methods("DELETE")
	oltp.HandleFunc("/transfer", r.transferStagingSales).Methods("POST")

	// Warehouse sale management routes
	sales := r.PathPrefix("/sales").Subrouter()
	sales.HandleFunc("", r.listFactSales).Methods("GET")
	sales.HandleFunc("/count", r.countFactSales).Methods("GET")
	sales.HandleFunc("", r.createFactSale).Methods("POST")
	sales.HandleFunc("/{id}", r.updateFactSale).Methods("PUT")
	sales.HandleFunc("/{id}", r.deleteFactSale).Methods("DELETE")

	// Dimension lookups for dropdowns
	r.HandleFunc("/dims/{dim}", r.listDimension).Methods("GET")

	// Analytics routes
	r.HandleFunc("/reports/aggregate", r.aggregateReport).Methods("GET")
	r.HandleFunc("/reports/aggregate/export", r.exportAggregateReport).Methods("GET")
	r.HandleFunc("/rankings/{entity}", r.rankings).Methods("GET")
	r.HandleFunc("/dashboard/metrics", r.dashboardMetrics).Methods("GET")

	// Bulk upload
	r.HandleFunc("/upload/sales", r.uploadSales).Methods("POST")
	r.HandleFunc("/upload/batches", r.listUploadBatches).Methods("GET")

	return r
}

// healthCheck returns the health status and build metadata of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"started":     buildinfo.StartTime,
		"built":       buildinfo.BuildTime,
		"commit":      buildinfo.CommitHash,
		"commit_time": buildinfo.CommitTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response. The dashboard reads the message from
// the "detail" field.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"detail": message,
	})
}

// respondDomainError maps the warehouse error taxonomy onto HTTP statuses
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr *warehouse.ValidationError
		notFoundErr   *warehouse.NotFoundError
		conflictErr   *warehouse.ConflictError
		dimensionErr  *warehouse.InvalidDimensionError
	)
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &dimensionErr):
		respondError(w, http.StatusBadRequest, dimensionErr.Error())
	case errors.As(err, &notFoundErr):
		respondError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		respondError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, "record not found")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
