package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UploadBatch is an audit record of one spreadsheet upload: how many rows the
// file contained, how many became staging records, and which rows were skipped
// (with per-row reasons in SkipReport).
type UploadBatch struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	Filename      string         `json:"filename"`
	RowsProcessed int            `json:"rows_processed"`
	RowsInserted  int            `json:"rows_inserted"`
	RowsSkipped   int            `json:"rows_skipped"`
	SkipReport    datatypes.JSON `gorm:"type:jsonb" json:"skip_report"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (UploadBatch) TableName() string { return "upload_batches" }

// BeforeCreate assigns a uuid if the caller did not
func (b *UploadBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// All lists every model for AutoMigrate; dimensions come before the fact
// table so the FK constraints can be created.
func All() []interface{} {
	return []interface{}{
		&StagingSale{},
		&DimProduct{},
		&DimManager{},
		&DimRegion{},
		&DimSupplier{},
		&FactSale{},
		&UploadBatch{},
	}
}
