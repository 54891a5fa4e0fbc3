package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/threadhouse/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// openTestDB 每个测试独立的内存库
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, variants ...models.ProductVariant) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:  1,
		Slug:        slug,
		Name:        "Test " + slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(1499)),
		Images:      models.StringArray{"/img/" + slug + ".jpg"},
		InStock:     true,
		IsActive:    true,
		Variants:    variants,
	}
	if err := NewProductRepository(db).Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}
