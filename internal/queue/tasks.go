package queue

import (
	"encoding/json"

	"github.com/threadhouse/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskRequestStatusEmail 批量/定制请求状态邮件任务
	TaskRequestStatusEmail = constants.TaskRequestStatusEmail
	// TaskOrderTimeoutCancel 网关订单未支付超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
)

// OrderStatusEmailPayload 订单状态通知载荷（发送所需字段全部随消息传递）
type OrderStatusEmailPayload struct {
	CustomerEmail     string `json:"customer_email"`
	CustomerName      string `json:"customer_name"`
	OrderNo           string `json:"order_no"`
	Status            string `json:"status"`
	TrackingNumber    string `json:"tracking_number,omitempty"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

// RequestStatusEmailPayload 请求状态通知载荷
type RequestStatusEmailPayload struct {
	Kind           string `json:"kind"` // bulk / custom
	RequestNo      string `json:"request_no"`
	CustomerEmail  string `json:"customer_email"`
	CustomerName   string `json:"customer_name"`
	Status         string `json:"status"`
	EstimatedPrice string `json:"estimated_price,omitempty"`
	AdminNotes     string `json:"admin_notes,omitempty"`
}

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderStatusEmail, payload)
}

// NewRequestStatusEmailTask 创建请求状态邮件任务
func NewRequestStatusEmailTask(payload RequestStatusEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskRequestStatusEmail, payload)
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderTimeoutCancel, payload)
}

func newJSONTask(taskType string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}
