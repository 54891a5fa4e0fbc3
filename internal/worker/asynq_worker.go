package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/provider"
	"github.com/threadhouse/internal/queue"
	"github.com/threadhouse/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskRequestStatusEmail, c.handleRequestStatusEmail)
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	receiver := strings.TrimSpace(payload.CustomerEmail)
	if receiver == "" || strings.TrimSpace(payload.OrderNo) == "" {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_no", payload.OrderNo)
		return nil
	}
	if c.EmailService == nil || !c.EmailService.Enabled() {
		logger.Debugw("worker_order_status_email_skip_disabled", "order_no", payload.OrderNo, "status", payload.Status)
		return nil
	}
	if err := c.EmailService.SendOrderStatusEmail(payload); err != nil {
		logger.Warnw("worker_order_status_email_send_failed",
			"order_no", payload.OrderNo,
			"receiver_email", receiver,
			"status", payload.Status,
			"error", err,
		)
		return retryableEmailError(err)
	}
	logger.Infow("worker_order_status_email_sent", "order_no", payload.OrderNo, "status", payload.Status)
	return nil
}

func (c *Consumer) handleRequestStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_request_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RequestStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_request_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	receiver := strings.TrimSpace(payload.CustomerEmail)
	if receiver == "" || strings.TrimSpace(payload.RequestNo) == "" {
		logger.Debugw("worker_request_status_email_skip_invalid_payload", "request_no", payload.RequestNo)
		return nil
	}
	if c.EmailService == nil || !c.EmailService.Enabled() {
		logger.Debugw("worker_request_status_email_skip_disabled", "request_no", payload.RequestNo, "status", payload.Status)
		return nil
	}
	if err := c.EmailService.SendRequestStatusEmail(payload); err != nil {
		logger.Warnw("worker_request_status_email_send_failed",
			"kind", payload.Kind,
			"request_no", payload.RequestNo,
			"receiver_email", receiver,
			"status", payload.Status,
			"error", err,
		)
		return retryableEmailError(err)
	}
	return nil
}

func (c *Consumer) handleOrderTimeoutCancel(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	_, err := c.OrderService.CancelExpiredOrder(ctx, payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrOrderFetchFailed):
			logger.Warnw("worker_order_timeout_cancel_fetch_failed", "order_id", payload.OrderID, "error", err)
			return err
		case errors.Is(err, service.ErrOrderUpdateFailed):
			logger.Warnw("worker_order_timeout_cancel_update_failed", "order_id", payload.OrderID, "error", err)
			return err
		default:
			logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}

// retryableEmailError 收件人被拒或地址非法属于永久失败，跳过重试
func retryableEmailError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, service.ErrEmailRecipientRejected) || errors.Is(err, service.ErrInvalidEmail) ||
		errors.Is(err, service.ErrEmailServiceNotConfigured) {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}
