package repository

import (
	"github.com/threadhouse/internal/models"

	"gorm.io/gorm"
)

// CartRepository 会话购物车数据访问接口
type CartRepository interface {
	ListBySession(sessionID string) ([]models.CartItem, error)
	ReplaceSession(sessionID string, items []models.CartItem) error
	ClearBySession(sessionID string) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// ListBySession 按加入顺序获取会话购物车项
func (r *GormCartRepository) ListBySession(sessionID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("session_id = ?", sessionID).Order("position asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceSession 用新的行项整体覆盖会话购物车
func (r *GormCartRepository) ReplaceSession(sessionID string, items []models.CartItem) error {
	if err := r.ClearBySession(sessionID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].SessionID = sessionID
		items[i].Position = i
	}
	return r.db.Create(&items).Error
}

// ClearBySession 清空会话购物车
func (r *GormCartRepository) ClearBySession(sessionID string) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&models.CartItem{}).Error
}
