package warehouse

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vantadata/salesdwgo/internal/models"
)

// Engine is the staging-to-warehouse core: transfer, aggregation, rankings and
// dashboard metrics over a shared relational store. It holds no mutable state,
// so one instance serves any number of concurrent requests.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates an engine over the given database handle
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// TransferResult reports the outcome of one transfer batch
type TransferResult struct {
	RowsInserted int    `json:"rows_inserted"`
	RowsSkipped  int    `json:"rows_skipped"`
	FailedIDs    []uint `json:"failed_ids,omitempty"`
}

// Transfer moves the given staging records into the fact table.
//
// Records that are missing, already transferred or duplicated by sale_id are
// counted as skipped, never as errors. Each record is one transaction:
// dimension resolution, fact insert and the transferred-flag update commit or
// roll back together, so a crash mid-batch leaves every record either fully
// transferred or fully untransferred. A partial failure surfaces as
// PartialTransferError alongside the counts for the committed subset.
func (e *Engine) Transfer(ctx context.Context, ids []uint) (TransferResult, error) {
	var result TransferResult
	if len(ids) == 0 {
		return result, &ValidationError{Field: "ids", Message: "no staging ids given"}
	}

	// Business-key order makes duplicate resolution deterministic across
	// repeated runs over the same partial failure.
	var records []models.StagingSale
	if err := e.db.WithContext(ctx).
		Where("id IN ? AND transferred = ?", ids, false).
		Order("sale_id asc, id asc").
		Find(&records).Error; err != nil {
		return result, err
	}
	result.RowsSkipped = len(uniqueIDs(ids)) - len(records)

	for i := range records {
		if ctx.Err() != nil {
			// Cancellation stops further processing; committed records stay
			log.Printf("⚠️  Transfer cancelled after %d record(s)", result.RowsInserted)
			break
		}

		rec := &records[i]
		inserted, err := e.transferOne(ctx, rec)
		if err != nil {
			log.Printf("❌ Transfer failed for staging id %d (sale_id %d): %v", rec.ID, rec.SaleID, err)
			result.FailedIDs = append(result.FailedIDs, rec.ID)
			continue
		}
		if inserted {
			result.RowsInserted++
		} else {
			result.RowsSkipped++
		}
	}

	if len(result.FailedIDs) > 0 {
		return result, &PartialTransferError{FailedIDs: result.FailedIDs}
	}
	return result, nil
}

// transferOne processes a single staging record as one atomic unit. Returns
// whether a fact row was actually inserted (false means dedup skip).
func (e *Engine) transferOne(ctx context.Context, rec *models.StagingSale) (bool, error) {
	inserted := false
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Dedup check before touching dimensions: a sale that already reached
		// the warehouse (possibly in a prior partial run) only needs its
		// staging flag fixed up.
		var count int64
		if err := tx.Model(&models.FactSale{}).Where("sale_id = ?", rec.SaleID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return markTransferred(tx, rec.ID)
		}

		productID, err := ResolveProduct(tx, rec.ProductName, rec.Brand, rec.Category)
		if err != nil {
			return err
		}
		managerID, err := ResolveManager(tx, rec.Manager)
		if err != nil {
			return err
		}
		regionID, err := ResolveRegion(tx, rec.RegionName, rec.City)
		if err != nil {
			return err
		}
		supplierID, err := ResolveSupplier(tx, rec.SupplierName, rec.SupplierCountry)
		if err != nil {
			return err
		}

		// A manually overridden revenue figure is trusted as-is
		revenue := rec.Revenue.Decimal
		if !rec.Revenue.Valid {
			revenue = ComputeRevenue(rec.Quantity, rec.UnitPrice, rec.Discount)
		}

		fact := models.FactSale{
			SaleID:       rec.SaleID,
			Date:         rec.SaleDatetime,
			ProductID:    productID,
			ManagerID:    managerID,
			RegionID:     regionID,
			SupplierID:   supplierID,
			Quantity:     rec.Quantity,
			UnitPrice:    rec.UnitPrice,
			Discount:     rec.Discount,
			Revenue:      revenue,
			PaymentType:  rec.PaymentType,
			SalesChannel: rec.SalesChannel,
		}

		// A conflict here means a concurrent transfer won the race on this
		// sale_id; that is a dedup skip, not an error.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sale_id"}},
			DoNothing: true,
		}).Create(&fact)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected > 0

		return markTransferred(tx, rec.ID)
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func markTransferred(tx *gorm.DB, stagingID uint) error {
	res := tx.Model(&models.StagingSale{}).
		Where("id = ?", stagingID).
		Update("transferred", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("staging record vanished during transfer")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
