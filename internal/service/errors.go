package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProductNotFound     = errors.New("商品不存在")
	ErrVariantNotFound     = errors.New("商品规格不存在")
	ErrCartEmpty           = errors.New("购物车为空")
	ErrCartItemNotFound    = errors.New("购物车行项不存在")
	ErrCartSessionRequired = errors.New("缺少购物车会话")
	ErrOrderNotFound       = errors.New("订单不存在")
	ErrOrderFetchFailed    = errors.New("订单查询失败")
	ErrOrderCreateFailed   = errors.New("订单创建失败")
	ErrOrderUpdateFailed   = errors.New("订单更新失败")
	ErrInvalidTransition   = errors.New("状态流转不合法")
	ErrPaymentNotAllowed   = errors.New("订单当前不可支付")
	ErrPaymentNotFound     = errors.New("支付记录不存在")
	ErrRequestNotFound     = errors.New("请求不存在")
	ErrRequestUpdateFailed = errors.New("请求更新失败")

	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务配置不完整")
	ErrInvalidEmail              = errors.New("邮箱格式不正确")
	ErrEmailRecipientRejected    = errors.New("收件人不存在或被拒收")
)

// ValidationError 输入字段校验失败
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// StockConflictItem 单个库存冲突行
type StockConflictItem struct {
	ProductID  uint   `json:"product_id"`
	VariantID  uint   `json:"variant_id"`
	Name       string `json:"name"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	SleeveType string `json:"sleeve_type,omitempty"`
	Fit        string `json:"fit,omitempty"`
	Requested  int    `json:"requested"`
	Available  int    `json:"available"`
}

// StockConflictError 下单时库存不足，列出全部冲突行
type StockConflictError struct {
	Items []StockConflictItem `json:"items"`
}

func (e *StockConflictError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		parts = append(parts, fmt.Sprintf("%s(%d/%d)", item.Name, item.Requested, item.Available))
	}
	return "库存不足: " + strings.Join(parts, ", ")
}

// PaymentError 网关支付失败或被拒
type PaymentError struct {
	OrderNo string
	Reason  string
	Err     error
}

func (e *PaymentError) Error() string {
	msg := "支付失败"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NotificationError 通知投递失败，不影响已提交的状态变更
type NotificationError struct {
	Target string
	Status string
	Err    error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("通知投递失败 target=%s status=%s: %v", e.Target, e.Status, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
