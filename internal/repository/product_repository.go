package repository

import (
	"errors"

	"github.com/threadhouse/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetBySlug(slug string) (*models.Product, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

func preloadVariants(query *gorm.DB) *gorm.DB {
	return query.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// List 上架商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product
	query := r.db.Model(&models.Product{}).Where("is_active = ?", true)

	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	query = applyKeywordSearch(query, filter.Search, []string{"name", "slug"})
	if filter.InStock != nil {
		query = query.Where("in_stock = ?", *filter.InStock)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := preloadVariants(query.Preload("Category")).
		Order("sort_order DESC, id ASC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug 根据 slug 获取上架商品（含规格组合）
func (r *GormProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	query := preloadVariants(r.db.Preload("Category")).
		Where("slug = ? AND is_active = ?", slug, true)
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByID 根据 ID 获取商品（含规格组合）
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := preloadVariants(r.db).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Create 创建商品（连同规格组合）
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}
