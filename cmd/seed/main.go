package main

import (
	"errors"

	"github.com/threadhouse/internal/config"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProduct struct {
	category    string
	slug        string
	name        string
	description string
	price       int64
	original    int64
	colors      []string
	sleeves     []string
	sizes       []string
	fits        []string
	// soldOut 指定售罄组合，格式 color/sleeve/size/fit
	soldOut map[string]bool
}

var seedCategories = []models.Category{
	{Slug: "t-shirts", Name: "T-Shirts", SortOrder: 30},
	{Slug: "shirts", Name: "Shirts", SortOrder: 20},
	{Slug: "hoodies", Name: "Hoodies", SortOrder: 10},
}

var seedProducts = []seedProduct{
	{
		category:    "t-shirts",
		slug:        "classic-crew-tee",
		name:        "Classic Crew Tee",
		description: "Combed cotton crew neck, 180 GSM.",
		price:       1499,
		original:    1799,
		colors:      []string{"White", "Black", "Navy"},
		sleeves:     []string{"Half", "Full"},
		sizes:       []string{"S", "M", "L", "XL"},
		fits:        []string{"Regular", "Oversized"},
		soldOut: map[string]bool{
			"White/Full/XL/Oversized": true,
			"Navy/Full/S/Regular":     true,
		},
	},
	{
		category:    "t-shirts",
		slug:        "pocket-tee",
		name:        "Pocket Tee",
		description: "Relaxed tee with a chest pocket.",
		price:       899,
		colors:      []string{"Olive", "Sand"},
		sizes:       []string{"M", "L", "XL"},
	},
	{
		category:    "shirts",
		slug:        "linen-mandarin-shirt",
		name:        "Linen Mandarin Shirt",
		description: "Pure linen, mandarin collar, garment washed.",
		price:       2499,
		colors:      []string{"Ecru", "Sky"},
		sleeves:     []string{"Half", "Full"},
		sizes:       []string{"M", "L", "XL"},
		fits:        []string{"Slim", "Regular"},
	},
	{
		category:    "hoodies",
		slug:        "heavyweight-hoodie",
		name:        "Heavyweight Hoodie",
		description: "Brushed fleece, 400 GSM.",
		price:       3299,
		colors:      []string{"Charcoal", "Black"},
		sizes:       []string{"M", "L", "XL", "XXL"},
		fits:        []string{"Oversized"},
	},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	categoryIDs := make(map[string]uint, len(seedCategories))
	for _, cat := range seedCategories {
		category := cat
		if err := models.DB.Where("slug = ?", category.Slug).FirstOrCreate(&category).Error; err != nil {
			stdLog.Fatalf("Failed to seed category %s: %v", cat.Slug, err)
		}
		categoryIDs[category.Slug] = category.ID
	}

	for _, item := range seedProducts {
		var existing models.Product
		err := models.DB.Where("slug = ?", item.slug).First(&existing).Error
		if err == nil {
			logger.Infow("seed_product_exists", "slug", item.slug)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			stdLog.Fatalf("Failed to query product %s: %v", item.slug, err)
		}
		product := buildProduct(item, categoryIDs[item.category])
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Fatalf("Failed to seed product %s: %v", item.slug, err)
		}
		logger.Infow("seed_product_created", "slug", item.slug, "variants", len(product.Variants))
	}
	stdLog.Printf("Seed completed")
}

func buildProduct(item seedProduct, categoryID uint) models.Product {
	product := models.Product{
		CategoryID:  categoryID,
		Slug:        item.slug,
		Name:        item.name,
		Description: item.description,
		PriceAmount: models.NewMoneyFromInt(item.price),
		Images:      models.StringArray{"/images/products/" + item.slug + ".jpg"},
		InStock:     true,
		IsActive:    true,
	}
	if item.original > 0 {
		product.OriginalPriceAmount = models.MoneyPtr(decimal.NewFromInt(item.original))
	}
	product.Variants = buildVariants(item)
	return product
}

// buildVariants 展开颜色 × 袖型 × 尺码 × 版型矩阵，库存按序号生成
func buildVariants(item seedProduct) []models.ProductVariant {
	sleeves := orBlank(item.sleeves)
	fits := orBlank(item.fits)
	variants := make([]models.ProductVariant, 0, len(item.colors)*len(sleeves)*len(item.sizes)*len(fits))
	n := 0
	for _, color := range item.colors {
		for _, sleeve := range sleeves {
			for _, size := range item.sizes {
				for _, fit := range fits {
					n++
					stock := 2 + n%7
					if item.soldOut[color+"/"+sleeve+"/"+size+"/"+fit] {
						stock = 0
					}
					variants = append(variants, models.ProductVariant{
						Color:      color,
						SleeveType: sleeve,
						Size:       size,
						Fit:        fit,
						Stock:      stock,
					})
				}
			}
		}
	}
	return variants
}

func orBlank(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	return values
}
