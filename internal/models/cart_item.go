package models

import (
	"time"
)

// CartItem 会话购物车行项（加入时的价格快照）
type CartItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                                      // 主键
	SessionID   string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_cart_session_line" json:"session_id"`       // 购物车会话ID
	ProductID   uint      `gorm:"not null;uniqueIndex:idx_cart_session_line" json:"product_id"`                              // 商品ID
	VariantID   uint      `gorm:"not null" json:"variant_id"`                                                                // 变体ID
	Size        string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_cart_session_line" json:"size"`                   // 尺码
	Color       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_cart_session_line" json:"color"`                  // 颜色
	SleeveType  string    `gorm:"type:varchar(32);not null;default:'';uniqueIndex:idx_cart_session_line" json:"sleeve_type"` // 袖型
	Fit         string    `gorm:"type:varchar(32);not null;default:'';uniqueIndex:idx_cart_session_line" json:"fit"`         // 版型
	Name        string    `gorm:"not null" json:"name"`                                                                      // 商品名快照
	Image       string    `gorm:"type:varchar(500)" json:"image"`                                                            // 图片快照
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                                   // 单价快照
	Quantity    int       `gorm:"not null" json:"quantity"`                                                                  // 数量
	MaxQuantity int       `gorm:"not null;default:0" json:"max_quantity"`                                                    // 库存上限快照
	Position    int       `gorm:"not null;default:0" json:"position"`                                                        // 行顺序
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                                                   // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                                                                   // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
