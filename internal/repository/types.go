package repository

import (
	"time"

	"gorm.io/gorm"
)

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	CategoryID uint
	Search     string
	InStock    *bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	Status        string
	PaymentStatus string
	PaymentMethod string
	OrderNo       string
	Email         string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// RequestListFilter 查询批量/定制请求列表的过滤条件
type RequestListFilter struct {
	Page     int
	PageSize int
	Status   string
	Priority string
	Keyword  string
}

// applyPagination 应用分页参数，统一处理非法页码与偏移量。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// likePattern 构造模糊匹配参数
func likePattern(keyword string) string {
	return "%" + keyword + "%"
}
