package repository

import (
	"testing"

	"github.com/threadhouse/internal/models"

	"github.com/shopspring/decimal"
)

func TestCartRepositoryReplaceKeepsOrderAndIsolatesSessions(t *testing.T) {
	db := openTestDB(t)
	repo := NewCartRepository(db)

	items := []models.CartItem{
		{ProductID: 2, VariantID: 20, Size: "L", Color: "Black", Name: "B", UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(500)), Quantity: 1, MaxQuantity: 4},
		{ProductID: 1, VariantID: 10, Size: "M", Color: "White", Name: "A", UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(1499)), Quantity: 2, MaxQuantity: 5},
	}
	if err := repo.ReplaceSession("s1", items); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if err := repo.ReplaceSession("s2", []models.CartItem{
		{ProductID: 3, VariantID: 30, Size: "S", Color: "Blue", Name: "C", Quantity: 1, MaxQuantity: 1},
	}); err != nil {
		t.Fatalf("replace other session failed: %v", err)
	}

	rows, err := repo.ListBySession("s1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ProductID != 2 || rows[1].ProductID != 1 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	if err := repo.ReplaceSession("s1", rows[1:]); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}
	rows, _ = repo.ListBySession("s1")
	if len(rows) != 1 || rows[0].ProductID != 1 {
		t.Fatalf("replace should overwrite session rows, got %+v", rows)
	}

	if err := repo.ClearBySession("s1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	rows, _ = repo.ListBySession("s1")
	if len(rows) != 0 {
		t.Fatalf("session should be empty, got %d", len(rows))
	}
	other, _ := repo.ListBySession("s2")
	if len(other) != 1 {
		t.Fatalf("other session should be untouched, got %d", len(other))
	}
}
