package repository

import (
	"github.com/threadhouse/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付尝试数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetLatestByOrder(orderID uint) (*models.Payment, error)
	ListByOrderID(orderID uint) ([]models.Payment, error)
	WithTx(tx *gorm.DB) PaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// Update 更新支付记录
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetLatestByOrder 获取订单最近一次支付尝试
func (r *GormPaymentRepository) GetLatestByOrder(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	result := r.db.Where("order_id = ?", orderID).Order("id desc").Limit(1).Find(&payment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payment, nil
}

// ListByOrderID 获取订单全部支付尝试
func (r *GormPaymentRepository) ListByOrderID(orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
