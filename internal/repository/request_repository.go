package repository

import (
	"errors"

	"github.com/threadhouse/internal/models"

	"gorm.io/gorm"
)

// BulkRequestRepository 批量采购请求数据访问接口
type BulkRequestRepository interface {
	Create(req *models.BulkOrderRequest) error
	GetByID(id uint) (*models.BulkOrderRequest, error)
	List(filter RequestListFilter) ([]models.BulkOrderRequest, int64, error)
	Update(id uint, updates map[string]interface{}) error
}

// CustomRequestRepository 定制设计请求数据访问接口
type CustomRequestRepository interface {
	Create(req *models.CustomDesignRequest) error
	GetByID(id uint) (*models.CustomDesignRequest, error)
	List(filter RequestListFilter) ([]models.CustomDesignRequest, int64, error)
	Update(id uint, updates map[string]interface{}) error
}

// GormBulkRequestRepository GORM 实现
type GormBulkRequestRepository struct {
	db *gorm.DB
}

// NewBulkRequestRepository 创建批量请求仓库
func NewBulkRequestRepository(db *gorm.DB) *GormBulkRequestRepository {
	return &GormBulkRequestRepository{db: db}
}

// Create 创建请求
func (r *GormBulkRequestRepository) Create(req *models.BulkOrderRequest) error {
	return r.db.Create(req).Error
}

// GetByID 根据 ID 获取请求
func (r *GormBulkRequestRepository) GetByID(id uint) (*models.BulkOrderRequest, error) {
	var req models.BulkOrderRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// List 请求列表
func (r *GormBulkRequestRepository) List(filter RequestListFilter) ([]models.BulkOrderRequest, int64, error) {
	var reqs []models.BulkOrderRequest
	query := applyRequestFilter(r.db.Model(&models.BulkOrderRequest{}), filter,
		[]string{"company_name", "contact_name", "email", "request_no"})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// Update 更新请求
func (r *GormBulkRequestRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.BulkOrderRequest{}).Where("id = ?", id).Updates(updates).Error
}

// GormCustomRequestRepository GORM 实现
type GormCustomRequestRepository struct {
	db *gorm.DB
}

// NewCustomRequestRepository 创建定制请求仓库
func NewCustomRequestRepository(db *gorm.DB) *GormCustomRequestRepository {
	return &GormCustomRequestRepository{db: db}
}

// Create 创建请求
func (r *GormCustomRequestRepository) Create(req *models.CustomDesignRequest) error {
	return r.db.Create(req).Error
}

// GetByID 根据 ID 获取请求
func (r *GormCustomRequestRepository) GetByID(id uint) (*models.CustomDesignRequest, error) {
	var req models.CustomDesignRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// List 请求列表
func (r *GormCustomRequestRepository) List(filter RequestListFilter) ([]models.CustomDesignRequest, int64, error) {
	var reqs []models.CustomDesignRequest
	query := applyRequestFilter(r.db.Model(&models.CustomDesignRequest{}), filter,
		[]string{"name", "email", "garment_type", "request_no"})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// Update 更新请求
func (r *GormCustomRequestRepository) Update(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.CustomDesignRequest{}).Where("id = ?", id).Updates(updates).Error
}

func applyRequestFilter(query *gorm.DB, filter RequestListFilter, keywordColumns []string) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	return applyKeywordSearch(query, filter.Keyword, keywordColumns)
}
