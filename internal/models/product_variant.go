package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品规格组合（尺码/颜色/袖型/版型 + 库存）
type ProductVariant struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                                           // 主键
	ProductID  uint           `gorm:"not null;index;uniqueIndex:idx_product_variant_tuple" json:"product_id"`         // 商品ID
	Size       string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_product_variant_tuple" json:"size"`    // 尺码
	Color      string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_variant_tuple" json:"color"`   // 颜色
	SleeveType string         `gorm:"type:varchar(32);not null;default:'';uniqueIndex:idx_product_variant_tuple" json:"sleeve_type,omitempty"` // 袖型（空为不适用）
	Fit        string         `gorm:"type:varchar(32);not null;default:'';uniqueIndex:idx_product_variant_tuple" json:"fit,omitempty"`         // 版型（空为不适用）
	Stock      int            `gorm:"not null;default:0" json:"stock"`                                                // 库存
	SKU        string         `gorm:"column:sku;type:varchar(64)" json:"sku,omitempty"`                               // SKU 编码
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                                        // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                                                     // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                                                 // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
