// Package testutil boots a private embedded PostgreSQL for integration tests.
// Each test package uses its own port so `go test ./...` can run packages in
// parallel without the instances fighting over a socket.
package testutil

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vantadata/salesdwgo/internal/models"
)

// OpenTestDB starts an embedded PostgreSQL on the given port, migrates the
// full schema and returns a connected handle. Everything is torn down via
// t.Cleanup; the data directory lives in t.TempDir().
func OpenTestDB(t *testing.T, port uint32) *gorm.DB {
	t.Helper()

	dir := t.TempDir()
	cfg := embeddedpostgres.DefaultConfig().
		DataPath(filepath.Join(dir, "data")).
		RuntimePath(filepath.Join(dir, "runtime")).
		Port(port).
		Database("salesdw_test").
		Username("postgres").
		Password("postgres").
		StartTimeout(60 * time.Second).
		Logger(io.Discard)

	epg := embeddedpostgres.NewDatabase(cfg)
	if err := epg.Start(); err != nil {
		t.Fatalf("failed to start embedded postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := epg.Stop(); err != nil {
			t.Logf("warning: failed to stop embedded postgres: %v", err)
		}
	})

	dsn := fmt.Sprintf(
		"host=localhost port=%d user=postgres password=postgres dbname=salesdw_test sslmode=disable",
		port,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to embedded postgres: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

// ResetTables truncates all warehouse tables between test cases
func ResetTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Exec(`TRUNCATE oltp_sales, fact_sales, dim_products, dim_managers,
		dim_regions, dim_suppliers, upload_batches RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
}
