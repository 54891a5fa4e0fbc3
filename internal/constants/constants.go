package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

// 订单支付状态常量
const (
	OrderPaymentStatusPending  = "pending"
	OrderPaymentStatusPaid     = "paid"
	OrderPaymentStatusFailed   = "failed"
	OrderPaymentStatusRefunded = "refunded"
)

// 支付方式常量
const (
	PaymentMethodCOD     = "cod"
	PaymentMethodGateway = "gateway"
)

// 支付尝试状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// 支付提供方常量
const (
	PaymentProviderSandbox = "sandbox"
	PaymentProviderHTTP    = "http"
)

// 批量订单请求状态
const (
	BulkStatusPending    = "pending"
	BulkStatusContacted  = "contacted"
	BulkStatusProcessing = "processing"
	BulkStatusConfirmed  = "confirmed"
	BulkStatusCompleted  = "completed"
	BulkStatusCancelled  = "cancelled"
)

// 定制设计请求状态
const (
	CustomStatusPending    = "pending"
	CustomStatusContacted  = "contacted"
	CustomStatusInProgress = "in_progress"
	CustomStatusCompleted  = "completed"
	CustomStatusCancelled  = "cancelled"
)

// 请求优先级
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// 请求类型
const (
	RequestKindBulk   = "bulk"
	RequestKindCustom = "custom"
)

// 变体维度（按层级顺序）
const (
	DimensionColor      = "color"
	DimensionSleeveType = "sleeve_type"
	DimensionSize       = "size"
	DimensionFit        = "fit"
)

// 编号前缀
const (
	OrderNoPrefix         = "TH"
	BulkRequestNoPrefix   = "BR"
	CustomRequestNoPrefix = "CR"
)

// 预计送达文案
const (
	EstimatedDeliveryDelivered = "Delivered"
	EstimatedDeliveryLayout    = "2006-01-02"
)

// 购物车会话请求头
const (
	CartSessionHeader = "X-Cart-Session"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskOrderStatusEmail   = "order:status_email"
	TaskRequestStatusEmail = "request:status_email"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)
