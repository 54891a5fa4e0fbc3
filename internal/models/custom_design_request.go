package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomDesignRequest 定制设计请求
type CustomDesignRequest struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                // 主键
	RequestNo       string         `gorm:"uniqueIndex;not null" json:"request_no"`              // 请求编号
	Name            string         `gorm:"not null" json:"name"`                                // 联系人
	Email           string         `gorm:"index;not null" json:"email"`                         // 邮箱
	Phone           string         `gorm:"type:varchar(32);not null" json:"phone"`              // 电话
	GarmentType     string         `gorm:"not null" json:"garment_type"`                        // 服装类型
	Description     string         `gorm:"type:text" json:"description"`                        // 需求描述
	Measurements    JSON           `gorm:"type:json" json:"measurements"`                       // 量体数据（外部估算服务返回）
	ReferenceImages StringArray    `gorm:"type:json" json:"reference_images"`                   // 参考图
	Budget          *Money         `gorm:"type:decimal(20,2)" json:"budget,omitempty"`          // 预算
	Status          string         `gorm:"index;not null" json:"status"`                        // 状态
	Priority        string         `gorm:"index;not null;default:'normal'" json:"priority"`     // 优先级
	EstimatedPrice  *Money         `gorm:"type:decimal(20,2)" json:"estimated_price,omitempty"` // 人工估价
	AdminNotes      string         `gorm:"type:text" json:"admin_notes,omitempty"`              // 管理员备注
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (CustomDesignRequest) TableName() string {
	return "custom_design_requests"
}
