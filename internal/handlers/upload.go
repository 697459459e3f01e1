package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/vantadata/salesdwgo/internal/models"
	"github.com/vantadata/salesdwgo/internal/upload"
)

const maxUploadSize = 32 << 20 // 32 MB

// uploadSales ingests a spreadsheet as a bulk producer of staging records.
// Rows failing validation are skipped and reported; rows whose sale_id is
// already staged are skipped silently (re-uploading a file is harmless).
func (r *Router) uploadSales(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	records, skipped, err := upload.ParseFile(header.Filename, file)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	processed := len(records) + len(skipped)

	// Re-uploading a file must not stage the same sale twice: rows whose
	// sale_id is already staged (or repeated within the file) are skipped.
	saleIDs := make([]int64, 0, len(records))
	for i := range records {
		saleIDs = append(saleIDs, records[i].SaleID)
	}
	seen := map[int64]bool{}
	if len(saleIDs) > 0 {
		var existing []int64
		if err := r.db.Model(&models.StagingSale{}).
			Where("sale_id IN ?", saleIDs).
			Pluck("sale_id", &existing).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to check staged rows")
			return
		}
		for _, id := range existing {
			seen[id] = true
		}
	}

	// Row storage is best-effort like the rest of the batch: a failed insert
	// lands in the skip report instead of aborting rows already committed.
	inserted := 0
	for i := range records {
		if seen[records[i].SaleID] {
			continue
		}
		seen[records[i].SaleID] = true
		if err := r.db.Create(&records[i]).Error; err != nil {
			log.Printf("⚠️  Upload: failed to store sale_id %d: %v", records[i].SaleID, err)
			skipped = append(skipped, upload.RowError{
				Reason: fmt.Sprintf("sale_id %d: could not be stored", records[i].SaleID),
			})
			continue
		}
		inserted++
	}

	batch := models.UploadBatch{
		Filename:      header.Filename,
		RowsProcessed: processed,
		RowsInserted:  inserted,
		RowsSkipped:   processed - inserted,
	}
	if len(skipped) > 0 {
		if data, err := json.Marshal(skipped); err == nil {
			batch.SkipReport = data
		}
	}
	if err := r.db.Create(&batch).Error; err != nil {
		// The staging rows are already in; losing the audit record is not
		// worth failing the upload
		log.Printf("⚠️  Upload: failed to record batch %s: %v", header.Filename, err)
	}

	log.Printf("📥 Upload %s: %d processed, %d inserted, %d skipped",
		header.Filename, processed, inserted, processed-inserted)

	respondJSON(w, http.StatusOK, map[string]int{
		"rows_processed": processed,
		"rows_inserted":  inserted,
	})
}

// listUploadBatches returns recent upload audit records, newest first
func (r *Router) listUploadBatches(w http.ResponseWriter, req *http.Request) {
	skip, limit := pagination(req, 20)

	var batches []models.UploadBatch
	if err := r.db.Order("created_at DESC").Offset(skip).Limit(limit).Find(&batches).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch upload batches")
		return
	}
	respondJSON(w, http.StatusOK, batches)
}
