package repository

import (
	"errors"

	"github.com/threadhouse/internal/models"

	"gorm.io/gorm"
)

// ProductVariantRepository 规格组合库存数据访问接口
type ProductVariantRepository interface {
	GetByID(id uint) (*models.ProductVariant, error)
	ListByIDs(ids []uint) ([]models.ProductVariant, error)
	DecrementStock(variantID uint, quantity int) (int64, error)
	IncrementStock(variantID uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) ProductVariantRepository
}

// GormProductVariantRepository GORM 实现
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewProductVariantRepository 创建规格组合仓库
func NewProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductVariantRepository) WithTx(tx *gorm.DB) ProductVariantRepository {
	if tx == nil {
		return r
	}
	return &GormProductVariantRepository{db: tx}
}

// GetByID 根据 ID 获取规格组合
func (r *GormProductVariantRepository) GetByID(id uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// ListByIDs 批量获取规格组合
func (r *GormProductVariantRepository) ListByIDs(ids []uint) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	if len(ids) == 0 {
		return variants, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// DecrementStock 库存充足时扣减，返回受影响行数（0 表示库存不足）
func (r *GormProductVariantRepository) DecrementStock(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, nil
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IncrementStock 回补库存
func (r *GormProductVariantRepository) IncrementStock(variantID uint, quantity int) (int64, error) {
	if variantID == 0 || quantity <= 0 {
		return 0, nil
	}
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
