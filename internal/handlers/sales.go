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

// factPayload is the warehouse sale-management form body. This is the
// dedicated edit/delete path for fact rows, separate from transfer.
type factPayload struct {
	SaleID       *int64              `json:"sale_id"`
	Date         string              `json:"date"`
	ProductID    uint                `json:"product_id"`
	ManagerID    uint                `json:"manager_id"`
	RegionID     uint                `json:"region_id"`
	SupplierID   uint                `json:"supplier_id"`
	Quantity     int                 `json:"quantity"`
	UnitPrice    decimal.Decimal     `json:"unit_price"`
	Discount     decimal.Decimal     `json:"discount"`
	Revenue      decimal.NullDecimal `json:"revenue"`
	PaymentType  string              `json:"payment_type"`
	SalesChannel string              `json:"sales_channel"`
}

// applyTo copies the payload onto a fact row; revenue is recomputed when the
// form did not supply one.
func (p *factPayload) applyTo(rec *models.FactSale) error {
	dt, err := upload.ParseDatetime(p.Date)
	if err != nil {
		return &warehouse.ValidationError{Field: "date", Message: err.Error()}
	}
	if p.Quantity < 0 {
		return &warehouse.ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	if p.UnitPrice.IsNegative() {
		return &warehouse.ValidationError{Field: "unit_price", Message: "must not be negative"}
	}
	if p.SaleID != nil {
		rec.SaleID = *p.SaleID
	}
	rec.Date = dt
	rec.ProductID = p.ProductID
	rec.ManagerID = p.ManagerID
	rec.RegionID = p.RegionID
	rec.SupplierID = p.SupplierID
	rec.Quantity = p.Quantity
	rec.UnitPrice = p.UnitPrice
	rec.Discount = p.Discount
	rec.PaymentType = p.PaymentType
	rec.SalesChannel = p.SalesChannel
	if p.Revenue.Valid {
		rec.Revenue = p.Revenue.Decimal
	} else {
		rec.Revenue = warehouse.ComputeRevenue(p.Quantity, p.UnitPrice, p.Discount)
	}
	return nil
}

// checkDimensions verifies the referenced dimension rows exist; a dangling id
// here is a hard error, not a skip, because this is a single-record context.
func (r *Router) checkDimensions(p *factPayload) error {
	checks := []struct {
		model    interface{}
		id       uint
		resource string
	}{
		{&models.DimProduct{}, p.ProductID, "product"},
		{&models.DimManager{}, p.ManagerID, "manager"},
		{&models.DimRegion{}, p.RegionID, "region"},
		{&models.DimSupplier{}, p.SupplierID, "supplier"},
	}
	for _, c := range checks {
		var count int64
		if err := r.db.Model(c.model).Where("id = ?", c.id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &warehouse.NotFoundError{Resource: c.resource, ID: c.id}
		}
	}
	return nil
}

// listFactSales returns a page of warehouse sales
func (r *Router) listFactSales(w http.ResponseWriter, req *http.Request) {
	skip, limit := pagination(req, 15)

	var sales []models.FactSale
	if err := r.db.Order("id").Offset(skip).Limit(limit).Find(&sales).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch sales")
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

// countFactSales returns the total number of fact rows
func (r *Router) countFactSales(w http.ResponseWriter, req *http.Request) {
	var count int64
	if err := r.db.Model(&models.FactSale{}).Count(&count).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count sales")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// createFactSale inserts a sale directly into the warehouse
func (r *Router) createFactSale(w http.ResponseWriter, req *http.Request) {
	var payload factPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	var rec models.FactSale
	if err := payload.applyTo(&rec); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := r.checkDimensions(&payload); err != nil {
		respondDomainError(w, err)
		return
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = r.db.Transaction(func(tx *gorm.DB) error {
			if payload.SaleID == nil {
				next, err := nextSaleID(tx)
				if err != nil {
					return err
				}
				rec.SaleID = next
			}
			return tx.Create(&rec).Error
		})
		if err == nil || payload.SaleID != nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		respondDomainError(w, &warehouse.ConflictError{
			Message: "a sale with this sale_id already exists",
		})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create sale")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// updateFactSale edits a warehouse sale through the dedicated management path
func (r *Router) updateFactSale(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	id, _ := strconv.ParseUint(vars["id"], 10, 64)

	var rec models.FactSale
	if err := r.db.First(&rec, id).Error; err != nil {
		respondDomainError(w, &warehouse.NotFoundError{Resource: "sale", ID: id})
		return
	}

	var payload factPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := payload.applyTo(&rec); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := r.checkDimensions(&payload); err != nil {
		respondDomainError(w, err)
		return
	}

	if err := r.db.Save(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondDomainError(w, &warehouse.ConflictError{
				Message: "a sale with this sale_id already exists",
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update sale")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// deleteFactSale removes a warehouse sale
func (r *Router) deleteFactSale(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	id, _ := strconv.ParseUint(vars["id"], 10, 64)

	res := r.db.Delete(&models.FactSale{}, id)
	if res.Error != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete sale")
		return
	}
	if res.RowsAffected == 0 {
		respondDomainError(w, &warehouse.NotFoundError{Resource: "sale", ID: id})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
