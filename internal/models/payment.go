package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 支付尝试记录
type Payment struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                // 主键
	OrderID       uint           `gorm:"index;not null" json:"order_id"`                      // 订单ID
	ProviderType  string         `gorm:"not null" json:"provider_type"`                       // 网关提供方（sandbox/http）
	Amount        Money          `gorm:"type:decimal(20,2);not null" json:"amount"`           // 支付金额
	Currency      string         `gorm:"not null" json:"currency"`                            // 币种
	Status        string         `gorm:"index;not null" json:"status"`                        // 尝试状态
	ProviderRef   string         `gorm:"index" json:"provider_ref"`                           // 网关侧流水号
	TransactionID string         `gorm:"type:varchar(128);index" json:"transaction_id"`       // 成功交易号
	FailureReason string         `gorm:"type:text" json:"failure_reason,omitempty"`           // 失败原因
	PayURL        string         `gorm:"type:text" json:"pay_url"`                            // 跳转链接
	PaidAt        *time.Time     `gorm:"index" json:"paid_at"`                                // 支付时间
	CallbackAt    *time.Time     `gorm:"index" json:"callback_at"`                            // 回调时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
