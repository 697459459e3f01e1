package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vantadata/salesdwgo/internal/models"
	"github.com/vantadata/salesdwgo/internal/upload"
	"github.com/vantadata/salesdwgo/internal/warehouse"
)

// stagingPayload is the dashboard's create/edit form body. sale_id is absent
// on manual entry (the server assigns the next one) but may appear on uploads
// replayed through the API.
type stagingPayload struct {
	SaleID          *int64              `json:"sale_id"`
	SaleDatetime    string              `json:"sale_datetime"`
	RegionName      string              `json:"region_name"`
	City            string              `json:"city"`
	Manager         string              `json:"manager"`
	ProductID       *int64              `json:"product_id"`
	ProductName     string              `json:"product_name"`
	Brand           string              `json:"brand"`
	Category        string              `json:"category"`
	SupplierName    string              `json:"supplier_name"`
	SupplierCountry string              `json:"supplier_country"`
	Quantity        int                 `json:"quantity"`
	UnitPrice       decimal.Decimal     `json:"unit_price"`
	Discount        decimal.Decimal     `json:"discount"`
	Revenue         decimal.NullDecimal `json:"revenue"`
	PaymentType     string              `json:"payment_type"`
	SalesChannel    string              `json:"sales_channel"`
}

// applyTo copies the payload onto a staging record, parsing the timestamp
func (p *stagingPayload) applyTo(rec *models.StagingSale) error {
	dt, err := upload.ParseDatetime(p.SaleDatetime)
	if err != nil {
		return &warehouse.ValidationError{Field: "sale_datetime", Message: err.Error()}
	}
	if p.SaleID != nil {
		rec.SaleID = *p.SaleID
	}
	rec.SaleDatetime = dt
	rec.RegionName = p.RegionName
	rec.City = p.City
	rec.Manager = p.Manager
	rec.ProductID = p.ProductID
	rec.ProductName = p.ProductName
	rec.Brand = p.Brand
	rec.Category = p.Category
	rec.SupplierName = p.SupplierName
	rec.SupplierCountry = p.SupplierCountry
	rec.Quantity = p.Quantity
	rec.UnitPrice = p.UnitPrice
	rec.Discount = p.Discount
	rec.Revenue = p.Revenue
	rec.PaymentType = p.PaymentType
	rec.SalesChannel = p.SalesChannel
	return nil
}

// listStagingSales returns a page of staging records
func (r *Router) listStagingSales(w http.ResponseWriter, req *http.Request) {
	skip, limit := pagination(req, 15)

	var sales []models.StagingSale
	if err := r.db.Order("id").Offset(skip).Limit(limit).Find(&sales).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch staging sales")
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

// countStagingSales returns the total number of staging records
func (r *Router) countStagingSales(w http.ResponseWriter, req *http.Request) {
	var count int64
	if err := r.db.Model(&models.StagingSale{}).Count(&count).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count staging sales")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// createStagingSale inserts a manually entered staging record
func (r *Router) createStagingSale(w http.ResponseWriter, req *http.Request) {
	var payload stagingPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	var rec models.StagingSale
	if err := payload.applyTo(&rec); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := warehouse.ValidateStaging(&rec); err != nil {
		respondDomainError(w, err)
		return
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if payload.SaleID == nil {
			next, err := nextSaleID(tx)
			if err != nil {
				return err
			}
			rec.SaleID = next
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create record")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// updateStagingSale edits an untransferred staging record. A transferred
// record has already reached the warehouse; editing it would silently desync
// the two stores, so it is refused.
func (r *Router) updateStagingSale(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	id, _ := strconv.ParseUint(vars["id"], 10, 64)

	var rec models.StagingSale
	if err := r.db.First(&rec, id).Error; err != nil {
		respondDomainError(w, &warehouse.NotFoundError{Resource: "staging sale", ID: id})
		return
	}
	if rec.Transferred {
		respondDomainError(w, &warehouse.ConflictError{
			Message: "record has been transferred and can no longer be edited",
		})
		return
	}

	var payload stagingPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := payload.applyTo(&rec); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := warehouse.ValidateStaging(&rec); err != nil {
		respondDomainError(w, err)
		return
	}

	if err := r.db.Save(&rec).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update record")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// deleteStagingSale removes a staging record regardless of transfer state;
// the warehoused fact row, if any, is untouched.
func (r *Router) deleteStagingSale(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	id, _ := strconv.ParseUint(vars["id"], 10, 64)

	res := r.db.Delete(&models.StagingSale{}, id)
	if res.Error != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete record")
		return
	}
	if res.RowsAffected == 0 {
		respondDomainError(w, &warehouse.NotFoundError{Resource: "staging sale", ID: id})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// transferStagingSales is the primary entry point of the warehouse core
func (r *Router) transferStagingSales(w http.ResponseWriter, req *http.Request) {
	var body struct {
		IDs []uint `json:"ids"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	result, err := r.engine.Transfer(req.Context(), body.IDs)
	if err != nil {
		var partial *warehouse.PartialTransferError
		if errors.As(err, &partial) {
			// Best-effort contract: committed counts are reported, the failed
			// ids ride along for the operator
			respondJSON(w, http.StatusOK, result)
			return
		}
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// pagination reads skip/limit query parameters with a default page size
func pagination(req *http.Request, defaultLimit int) (skip, limit int) {
	skip, _ = strconv.Atoi(req.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(req.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	return skip, limit
}

// nextSaleID picks the next free business key across both stores
func nextSaleID(tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.Raw(`SELECT GREATEST(
		(SELECT COALESCE(MAX(sale_id), 0) FROM oltp_sales),
		(SELECT COALESCE(MAX(sale_id), 0) FROM fact_sales)
	) + 1`).Scan(&next).Error
	return next, err
}
