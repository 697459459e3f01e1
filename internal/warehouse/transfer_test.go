package warehouse

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vantadata/salesdwgo/internal/models"
	"github.com/vantadata/salesdwgo/internal/testutil"
)

func TestTransfer(t *testing.T) {
	db := testutil.OpenTestDB(t, testPort)
	engine := NewEngine(db)
	ctx := context.Background()

	t.Run("computes revenue when the staging record has none", func(t *testing.T) {
		testutil.ResetTables(t, db)
		rec := stageSale(t, db, 1001, nil) // qty 3, price 10.00, discount 0.10

		result, err := engine.Transfer(ctx, []uint{rec.ID})
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if result.RowsInserted != 1 || result.RowsSkipped != 0 {
			t.Errorf("got inserted=%d skipped=%d, want 1/0", result.RowsInserted, result.RowsSkipped)
		}

		var fact models.FactSale
		if err := db.Where("sale_id = ?", 1001).First(&fact).Error; err != nil {
			t.Fatalf("fact row missing: %v", err)
		}
		if want := mustDecimal(t, "27.00"); !fact.Revenue.Equal(want) {
			t.Errorf("revenue = %s, want %s", fact.Revenue, want)
		}

		var staged models.StagingSale
		db.First(&staged, rec.ID)
		if !staged.Transferred {
			t.Error("staging record not marked transferred")
		}
	})

	t.Run("trusts a manually overridden revenue", func(t *testing.T) {
		testutil.ResetTables(t, db)
		rec := stageSale(t, db, 1002, func(s *models.StagingSale) {
			s.Revenue = decimal.NullDecimal{Decimal: mustDecimal(t, "99.99"), Valid: true}
		})

		if _, err := engine.Transfer(ctx, []uint{rec.ID}); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		var fact models.FactSale
		db.Where("sale_id = ?", 1002).First(&fact)
		if want := mustDecimal(t, "99.99"); !fact.Revenue.Equal(want) {
			t.Errorf("revenue = %s, want %s (manual figure must not be recomputed)", fact.Revenue, want)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		testutil.ResetTables(t, db)
		a := stageSale(t, db, 1003, nil)
		b := stageSale(t, db, 1004, nil)
		ids := []uint{a.ID, b.ID}

		first, err := engine.Transfer(ctx, ids)
		if err != nil {
			t.Fatalf("first transfer failed: %v", err)
		}
		if first.RowsInserted != 2 {
			t.Fatalf("first transfer inserted %d, want 2", first.RowsInserted)
		}

		second, err := engine.Transfer(ctx, ids)
		if err != nil {
			t.Fatalf("second transfer failed: %v", err)
		}
		if second.RowsInserted != 0 {
			t.Errorf("second transfer inserted %d, want 0", second.RowsInserted)
		}
		if second.RowsSkipped != 2 {
			t.Errorf("second transfer skipped %d, want 2", second.RowsSkipped)
		}
		if n := countRows(t, db, &models.FactSale{}); n != 2 {
			t.Errorf("fact table has %d rows, want 2", n)
		}
	})

	t.Run("dedups staged rows sharing a business key", func(t *testing.T) {
		testutil.ResetTables(t, db)
		first := stageSale(t, db, 2001, func(s *models.StagingSale) { s.ProductName = "ThinkPad T14" })
		second := stageSale(t, db, 2001, func(s *models.StagingSale) { s.ProductName = "IdeaPad 5" })

		result, err := engine.Transfer(ctx, []uint{first.ID, second.ID})
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if result.RowsInserted != 1 || result.RowsSkipped != 1 {
			t.Errorf("got inserted=%d skipped=%d, want 1/1", result.RowsInserted, result.RowsSkipped)
		}
		if n := countRows(t, db, &models.FactSale{}); n != 1 {
			t.Fatalf("fact table has %d rows, want 1", n)
		}

		// The first staged row wins; its product reached the warehouse
		var fact models.FactSale
		db.Where("sale_id = ?", 2001).First(&fact)
		var product models.DimProduct
		db.First(&product, fact.ProductID)
		if product.Name != "ThinkPad T14" {
			t.Errorf("warehoused product = %q, want the first staged row's %q", product.Name, "ThinkPad T14")
		}

		// Both staged duplicates end up flagged
		var untransferred int64
		db.Model(&models.StagingSale{}).Where("transferred = ?", false).Count(&untransferred)
		if untransferred != 0 {
			t.Errorf("%d staging rows left untransferred, want 0", untransferred)
		}
	})

	t.Run("flags staged rows already present in the warehouse", func(t *testing.T) {
		testutil.ResetTables(t, db)
		// sale 1002 reached the warehouse in a prior run
		insertFact(t, db, 1002, stageDate(), "ThinkPad T14", "Olena Shevchenko", "West", "Lviv", "50.00")

		pending := stageSale(t, db, 1001, nil)
		duplicate := stageSale(t, db, 1002, nil)

		result, err := engine.Transfer(ctx, []uint{pending.ID, duplicate.ID})
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if result.RowsInserted != 1 {
			t.Errorf("inserted %d, want 1", result.RowsInserted)
		}
		if result.RowsSkipped != 1 {
			t.Errorf("skipped %d, want 1", result.RowsSkipped)
		}

		var untransferred int64
		db.Model(&models.StagingSale{}).Where("transferred = ?", false).Count(&untransferred)
		if untransferred != 0 {
			t.Errorf("%d staging rows left untransferred, want 0", untransferred)
		}
	})

	t.Run("counts unknown and already-transferred ids as skipped", func(t *testing.T) {
		testutil.ResetTables(t, db)
		rec := stageSale(t, db, 3001, nil)
		if _, err := engine.Transfer(ctx, []uint{rec.ID}); err != nil {
			t.Fatalf("setup transfer failed: %v", err)
		}

		result, err := engine.Transfer(ctx, []uint{rec.ID, 999999})
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if result.RowsInserted != 0 || result.RowsSkipped != 2 {
			t.Errorf("got inserted=%d skipped=%d, want 0/2", result.RowsInserted, result.RowsSkipped)
		}
	})

	t.Run("reports a partial failure without losing committed work", func(t *testing.T) {
		testutil.ResetTables(t, db)
		good := stageSale(t, db, 5001, nil)
		// A blank product name passes the column constraints but fails
		// dimension resolution inside the per-record transaction
		bad := stageSale(t, db, 5002, func(s *models.StagingSale) { s.ProductName = "" })

		result, err := engine.Transfer(ctx, []uint{good.ID, bad.ID})

		var partial *PartialTransferError
		if !errors.As(err, &partial) {
			t.Fatalf("got %v, want PartialTransferError", err)
		}
		if len(partial.FailedIDs) != 1 || partial.FailedIDs[0] != bad.ID {
			t.Errorf("failed ids = %v, want [%d]", partial.FailedIDs, bad.ID)
		}
		if result.RowsInserted != 1 {
			t.Errorf("inserted %d, want 1 (the committed record)", result.RowsInserted)
		}

		// The failed record rolled back whole: no fact row, flag untouched
		var factCount int64
		db.Model(&models.FactSale{}).Where("sale_id = ?", 5002).Count(&factCount)
		if factCount != 0 {
			t.Error("failed record left a fact row behind")
		}
		var failed models.StagingSale
		db.First(&failed, bad.ID)
		if failed.Transferred {
			t.Error("failed record was marked transferred")
		}

		var committed models.StagingSale
		db.First(&committed, good.ID)
		if !committed.Transferred {
			t.Error("committed record lost its transferred flag")
		}

		// Retrying just the failed id changes nothing about the committed one
		if _, err := engine.Transfer(ctx, []uint{bad.ID}); err == nil {
			t.Error("retry of the broken record succeeded, want failure")
		}
		if n := countRows(t, db, &models.FactSale{}); n != 1 {
			t.Errorf("fact table has %d rows after retry, want 1", n)
		}
	})

	t.Run("cancellation does not undo committed work", func(t *testing.T) {
		testutil.ResetTables(t, db)
		a := stageSale(t, db, 6001, nil)
		b := stageSale(t, db, 6002, nil)

		if _, err := engine.Transfer(ctx, []uint{a.ID}); err != nil {
			t.Fatalf("setup transfer failed: %v", err)
		}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := engine.Transfer(cancelled, []uint{b.ID}); err == nil {
			t.Fatal("transfer with a cancelled context succeeded, want error")
		}

		// The earlier record stays in the warehouse; the second never moved
		if n := countRows(t, db, &models.FactSale{}); n != 1 {
			t.Errorf("fact table has %d rows, want 1", n)
		}
		var pending models.StagingSale
		db.First(&pending, b.ID)
		if pending.Transferred {
			t.Error("record transferred despite cancellation")
		}
	})

	t.Run("rejects an empty id set", func(t *testing.T) {
		_, err := engine.Transfer(ctx, nil)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
	})

	t.Run("reuses dimension rows across records", func(t *testing.T) {
		testutil.ResetTables(t, db)
		a := stageSale(t, db, 4001, nil)
		b := stageSale(t, db, 4002, nil)

		if _, err := engine.Transfer(ctx, []uint{a.ID, b.ID}); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}

		for _, model := range []interface{}{
			&models.DimProduct{}, &models.DimManager{}, &models.DimRegion{}, &models.DimSupplier{},
		} {
			if n := countRows(t, db, model); n != 1 {
				t.Errorf("%T has %d rows, want 1", model, n)
			}
		}
		if n := countRows(t, db, &models.FactSale{}); n != 2 {
			t.Errorf("fact table has %d rows, want 2", n)
		}
	})
}
