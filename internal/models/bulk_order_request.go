package models

import (
	"time"

	"gorm.io/gorm"
)

// BulkOrderRequest 企业批量采购请求
type BulkOrderRequest struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                   // 主键
	RequestNo      string         `gorm:"uniqueIndex;not null" json:"request_no"`                 // 请求编号
	CompanyName    string         `gorm:"not null" json:"company_name"`                           // 公司名称
	ContactName    string         `gorm:"not null" json:"contact_name"`                           // 联系人
	Email          string         `gorm:"index;not null" json:"email"`                            // 邮箱
	Phone          string         `gorm:"type:varchar(32);not null" json:"phone"`                 // 电话
	ProductType    string         `gorm:"not null" json:"product_type"`                           // 产品类型
	Quantity       int            `gorm:"not null" json:"quantity"`                               // 采购数量
	Description    string         `gorm:"type:text" json:"description"`                           // 需求描述
	TargetDate     *time.Time     `json:"target_date,omitempty"`                                  // 期望交期
	Status         string         `gorm:"index;not null" json:"status"`                           // 状态
	Priority       string         `gorm:"index;not null;default:'normal'" json:"priority"`        // 优先级
	EstimatedPrice *Money         `gorm:"type:decimal(20,2)" json:"estimated_price,omitempty"`    // 人工估价
	AdminNotes     string         `gorm:"type:text" json:"admin_notes,omitempty"`                 // 管理员备注
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间
}

// TableName 指定表名
func (BulkOrderRequest) TableName() string {
	return "bulk_order_requests"
}
