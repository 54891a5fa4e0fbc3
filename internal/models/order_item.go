package models

import (
	"time"
)

// OrderItem 订单项表（下单快照，创建后不可修改）
type OrderItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID    uint      `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID  uint      `gorm:"index;not null" json:"product_id"`                         // 商品ID
	VariantID  uint      `gorm:"index;not null" json:"variant_id"`                         // 变体ID
	Name       string    `gorm:"not null" json:"name"`                                     // 商品名快照
	Image      string    `gorm:"type:varchar(500)" json:"image,omitempty"`                 // 图片快照
	Size       string    `gorm:"type:varchar(32);not null" json:"size"`                    // 尺码
	Color      string    `gorm:"type:varchar(64);not null" json:"color"`                   // 颜色
	SleeveType string    `gorm:"type:varchar(32)" json:"sleeve_type,omitempty"`            // 袖型
	Fit        string    `gorm:"type:varchar(32)" json:"fit,omitempty"`                    // 版型
	UnitPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价
	Quantity   int       `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
