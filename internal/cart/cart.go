// Package cart 会话购物车：按完整变体组合合并行项，数量受变体库存约束。
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/threadhouse/internal/pricing"
)

// LineKey 行项唯一标识（商品 + 完整变体组合）
type LineKey struct {
	ProductID  uint   `json:"product_id"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	SleeveType string `json:"sleeve_type,omitempty"`
	Fit        string `json:"fit,omitempty"`
}

// LineItem 购物车行项，单价为加入时的快照
type LineItem struct {
	ProductID   uint            `json:"product_id"`
	VariantID   uint            `json:"variant_id"`
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	SleeveType  string          `json:"sleeve_type,omitempty"`
	Fit         string          `json:"fit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"max_quantity"` // 加入/更新时的变体库存
}

// Key 返回行项标识
func (i LineItem) Key() LineKey {
	return LineKey{
		ProductID:  i.ProductID,
		Size:       i.Size,
		Color:      i.Color,
		SleeveType: i.SleeveType,
		Fit:        i.Fit,
	}
}

// LineTotal 行小计
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart 有序购物车
type Cart struct {
	items []LineItem
}

// New 以已有行项构建购物车
func New(items ...LineItem) *Cart {
	c := &Cart{items: make([]LineItem, 0, len(items))}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		c.items = append(c.items, item)
	}
	return c
}

// Items 返回行项副本
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Find 查找行项
func (c *Cart) Find(key LineKey) (LineItem, bool) {
	if idx := c.index(key); idx >= 0 {
		return c.items[idx], true
	}
	return LineItem{}, false
}

// Add 加入购物车：同一标识累加数量并截断到库存上限，从不报错；返回最终数量
func (c *Cart) Add(item LineItem) int {
	idx := c.index(item.Key())
	if idx < 0 {
		if item.Quantity <= 0 || item.MaxQuantity <= 0 {
			return 0
		}
		item.Quantity = clamp(item.Quantity, 1, item.MaxQuantity)
		c.items = append(c.items, item)
		return item.Quantity
	}
	existing := &c.items[idx]
	existing.MaxQuantity = item.MaxQuantity
	if item.Quantity > 0 {
		existing.Quantity += item.Quantity
	}
	if existing.MaxQuantity <= 0 {
		// 库存已售罄：保留原数量，结算时再校验
		return existing.Quantity
	}
	existing.Quantity = clamp(existing.Quantity, 1, existing.MaxQuantity)
	return existing.Quantity
}

// SetStock 刷新行项的库存上限
func (c *Cart) SetStock(key LineKey, stock int) {
	if idx := c.index(key); idx >= 0 {
		c.items[idx].MaxQuantity = stock
	}
}

// UpdateQuantity 设置数量：<=0 视为删除，否则截断到 [1, 库存]；返回最终数量与是否存在
func (c *Cart) UpdateQuantity(key LineKey, quantity int) (int, bool) {
	idx := c.index(key)
	if idx < 0 {
		return 0, false
	}
	if quantity <= 0 || c.items[idx].MaxQuantity <= 0 {
		c.removeAt(idx)
		return 0, true
	}
	c.items[idx].Quantity = clamp(quantity, 1, c.items[idx].MaxQuantity)
	return c.items[idx].Quantity, true
}

// Remove 删除行项，不存在时无操作
func (c *Cart) Remove(key LineKey) bool {
	idx := c.index(key)
	if idx < 0 {
		return false
	}
	c.removeAt(idx)
	return true
}

// Deduct 扣减已下单数量，扣完即移除；不受库存上限约束
func (c *Cart) Deduct(key LineKey, quantity int) {
	idx := c.index(key)
	if idx < 0 || quantity <= 0 {
		return
	}
	c.items[idx].Quantity -= quantity
	if c.items[idx].Quantity <= 0 {
		c.removeAt(idx)
	}
}

// Clear 清空购物车
func (c *Cart) Clear() {
	c.items = c.items[:0]
}

// IsEmpty 是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ItemCount 商品件数合计
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Lines 转换为计价行
func (c *Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.items))
	for _, item := range c.items {
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return lines
}

// Subtotal 按快照单价计算小计
func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.Lines())
}

func (c *Cart) index(key LineKey) int {
	for i := range c.items {
		if c.items[i].Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.items = append(c.items[:idx], c.items[idx+1:]...)
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
