package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	SessionID      string         `gorm:"type:varchar(64);index" json:"-"`                              // 下单购物车会话
	Status         string         `gorm:"index;not null" json:"status"`                                 // 订单状态
	PaymentStatus  string         `gorm:"index;not null" json:"payment_status"`                         // 支付状态
	PaymentMethod  string         `gorm:"type:varchar(20);index;not null" json:"payment_method"`        // 支付方式（cod/gateway）
	Currency       string         `gorm:"not null" json:"currency"`                                     // 币种
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 商品小计
	ShippingAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"` // 运费
	TaxAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`      // 税费
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 应付总额
	FullName       string         `gorm:"not null" json:"full_name"`                                    // 收货人
	Email          string         `gorm:"index;not null" json:"email"`                                  // 邮箱
	Phone          string         `gorm:"type:varchar(32);not null" json:"phone"`                       // 电话
	Address        string         `gorm:"type:text;not null" json:"address"`                            // 地址
	City           string         `gorm:"not null" json:"city"`                                         // 城市
	State          string         `gorm:"not null" json:"state"`                                        // 省/州
	Pincode        string         `gorm:"type:varchar(16);not null" json:"pincode"`                     // 邮编
	Country        string         `gorm:"not null" json:"country"`                                      // 国家
	TrackingNumber string         `gorm:"type:varchar(128)" json:"tracking_number,omitempty"`           // 物流单号
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`                             // 备注
	TransactionID  string         `gorm:"type:varchar(128);index" json:"transaction_id,omitempty"`      // 网关交易号
	ClientIP       string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                  // 下单客户端IP
	PaidAt         *time.Time     `gorm:"index" json:"paid_at"`                                         // 支付时间
	CanceledAt     *time.Time     `gorm:"index" json:"canceled_at"`                                     // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// ItemCount 商品件数合计
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
