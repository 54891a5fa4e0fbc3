package service

import (
	"context"
	"time"

	"github.com/threadhouse/internal/constants"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/queue"
)

// NotificationQueue 通知与延迟任务投递（由 queue.Client 实现）
type NotificationQueue interface {
	EnqueueOrderStatusEmail(ctx context.Context, payload queue.OrderStatusEmailPayload) error
	EnqueueRequestStatusEmail(ctx context.Context, payload queue.RequestStatusEmailPayload) error
	EnqueueOrderTimeoutCancel(ctx context.Context, payload queue.OrderTimeoutCancelPayload, delay time.Duration) error
}

// notifyOrderStatuses 进入这些状态时通知顾客
var notifyOrderStatuses = map[string]bool{
	constants.OrderStatusProcessing: true,
	constants.OrderStatusShipped:    true,
	constants.OrderStatusDelivered:  true,
	constants.OrderStatusCancelled:  true,
}

// ShouldNotifyOrderStatus 判断状态变更是否需要通知
func ShouldNotifyOrderStatus(status string) bool {
	return notifyOrderStatuses[status]
}

// EstimatedDelivery 根据状态给出预计送达文案，仅用于通知展示
func EstimatedDelivery(now time.Time, status string) string {
	days := 5
	switch status {
	case constants.OrderStatusDelivered:
		return constants.EstimatedDeliveryDelivered
	case constants.OrderStatusProcessing:
		days = 3
	case constants.OrderStatusShipped:
		days = 2
	}
	return now.AddDate(0, 0, days).Format(constants.EstimatedDeliveryLayout)
}

// BuildOrderStatusPayload 组装订单状态通知载荷
func BuildOrderStatusPayload(order *models.Order, now time.Time) queue.OrderStatusEmailPayload {
	return queue.OrderStatusEmailPayload{
		CustomerEmail:     order.Email,
		CustomerName:      order.FullName,
		OrderNo:           order.OrderNo,
		Status:            order.Status,
		TrackingNumber:    order.TrackingNumber,
		EstimatedDelivery: EstimatedDelivery(now, order.Status),
	}
}

// enqueueOrderStatus 状态已提交后投递通知；失败返回 NotificationError 由调用方记录，不回滚状态
func enqueueOrderStatus(ctx context.Context, q NotificationQueue, order *models.Order, now time.Time) *NotificationError {
	if q == nil || order == nil || !ShouldNotifyOrderStatus(order.Status) {
		return nil
	}
	if err := q.EnqueueOrderStatusEmail(ctx, BuildOrderStatusPayload(order, now)); err != nil {
		return &NotificationError{Target: order.OrderNo, Status: order.Status, Err: err}
	}
	return nil
}
