package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/threadhouse/internal/cart"
	"github.com/threadhouse/internal/constants"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/payment"
	"github.com/threadhouse/internal/repository"

	"gorm.io/gorm"
)

// PaymentService 网关支付子流程：发起、成功、失败、取消
type PaymentService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	cartRepo    repository.CartRepository
	gateway     payment.Gateway
	returnURL   string
	now         func() time.Time
}

// NewPaymentService 创建支付服务
func NewPaymentService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, cartRepo repository.CartRepository, gateway payment.Gateway, returnURL string, now func() time.Time) *PaymentService {
	if now == nil {
		now = time.Now
	}
	return &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		cartRepo:    cartRepo,
		gateway:     gateway,
		returnURL:   strings.TrimSpace(returnURL),
		now:         now,
	}
}

// PaymentSuccessResult 支付成功结果
type PaymentSuccessResult struct {
	OrderNo       string `json:"order_no"`
	TransactionID string `json:"transaction_id"`
	Redirect      string `json:"redirect"`
}

var retryablePaymentStatuses = []string{constants.OrderPaymentStatusPending, constants.OrderPaymentStatusFailed}

// loadOrder 按订单号加载，且只对下单会话可见
func (s *PaymentService) loadOrder(orderNo, sessionID string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil || !orderOwnedBy(order, sessionID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func canPay(order *models.Order) bool {
	if order.PaymentMethod != constants.PaymentMethodGateway || order.Status != constants.OrderStatusPending {
		return false
	}
	return order.PaymentStatus == constants.OrderPaymentStatusPending || order.PaymentStatus == constants.OrderPaymentStatusFailed
}

// Initiate 为已持久化的网关订单发起支付
func (s *PaymentService) Initiate(ctx context.Context, orderNo, sessionID string) (*models.Payment, error) {
	order, err := s.loadOrder(orderNo, sessionID)
	if err != nil {
		return nil, err
	}
	if !canPay(order) {
		return nil, ErrPaymentNotAllowed
	}
	result, err := s.gateway.InitiatePayment(ctx, payment.PaymentRequest{
		OrderNo:   order.OrderNo,
		Amount:    order.TotalAmount.Decimal,
		Currency:  order.Currency,
		ReturnURL: s.returnURL,
	})
	if err != nil {
		logger.FromContext(ctx).Warnw("payment_initiate_failed", "order_no", order.OrderNo, "gateway", s.gateway.Name(), "error", err)
		return nil, &PaymentError{OrderNo: order.OrderNo, Reason: "gateway_unavailable", Err: err}
	}
	now := s.now()
	record := &models.Payment{
		OrderID:      order.ID,
		ProviderType: s.gateway.Name(),
		Amount:       order.TotalAmount,
		Currency:     order.Currency,
		Status:       constants.PaymentStatusInitiated,
		ProviderRef:  result.ProviderRef,
		PayURL:       result.PayURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.paymentRepo.Create(record); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Infow("payment_initiated", "order_no", order.OrderNo, "payment_id", record.ID, "provider_ref", record.ProviderRef)
	return record, nil
}

// HandleSuccess 处理网关成功信号：须有发起中的支付尝试，确认交易后标记已支付并扣减购物车；同一交易号重复回调幂等
func (s *PaymentService) HandleSuccess(ctx context.Context, orderNo, sessionID, transactionID string) (*PaymentSuccessResult, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, newValidationError("transaction_id", "required")
	}
	order, err := s.loadOrder(orderNo, sessionID)
	if err != nil {
		return nil, err
	}
	result := &PaymentSuccessResult{
		OrderNo:       order.OrderNo,
		TransactionID: transactionID,
		Redirect:      "/order-success?order_no=" + order.OrderNo + "&txn=" + transactionID,
	}
	if order.PaymentStatus == constants.OrderPaymentStatusPaid {
		if order.TransactionID == transactionID {
			return result, nil
		}
		return nil, ErrPaymentNotAllowed
	}
	if !canPay(order) {
		return nil, ErrPaymentNotAllowed
	}
	attempt, err := s.paymentRepo.GetLatestByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	if attempt == nil || attempt.Status != constants.PaymentStatusInitiated {
		logger.FromContext(ctx).Warnw("payment_success_without_attempt", "order_no", order.OrderNo, "transaction_id", transactionID)
		return nil, ErrPaymentNotFound
	}
	if err := s.gateway.VerifyPayment(ctx, order.OrderNo, transactionID); err != nil {
		logger.FromContext(ctx).Warnw("payment_verify_failed", "order_no", order.OrderNo, "transaction_id", transactionID, "error", err)
		return nil, &PaymentError{OrderNo: order.OrderNo, Reason: "verification_failed", Err: err}
	}

	now := s.now()
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.WithTx(tx).UpdateIfState(order.ID, constants.OrderStatusPending, retryablePaymentStatuses,
			map[string]interface{}{
				"payment_status": constants.OrderPaymentStatusPaid,
				"transaction_id": transactionID,
				"paid_at":        now,
				"updated_at":     now,
			})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrPaymentNotAllowed
		}
		if err := s.settleAttempt(s.paymentRepo.WithTx(tx), order, attempt, constants.PaymentStatusSuccess, transactionID, "", now); err != nil {
			return err
		}
		return deductOrderedLines(s.cartRepo.WithTx(tx), order)
	})
	if err != nil {
		if errors.Is(err, ErrPaymentNotAllowed) {
			return s.idempotentSuccess(order.OrderNo, sessionID, transactionID, result)
		}
		return nil, err
	}
	logger.FromContext(ctx).Infow("payment_succeeded", "order_no", order.OrderNo, "transaction_id", transactionID)
	return result, nil
}

// deductOrderedLines 从下单会话的购物车扣除本订单的行项数量，结算后新加入的商品保留
func deductOrderedLines(repo repository.CartRepository, order *models.Order) error {
	if order.SessionID == "" || len(order.Items) == 0 {
		return nil
	}
	c, err := loadCart(repo, order.SessionID)
	if err != nil {
		return err
	}
	for _, item := range order.Items {
		c.Deduct(cart.LineKey{
			ProductID:  item.ProductID,
			Size:       item.Size,
			Color:      item.Color,
			SleeveType: item.SleeveType,
			Fit:        item.Fit,
		}, item.Quantity)
	}
	return saveCart(repo, order.SessionID, c)
}

// idempotentSuccess 并发回调时以最新状态判定
func (s *PaymentService) idempotentSuccess(orderNo, sessionID, transactionID string, result *PaymentSuccessResult) (*PaymentSuccessResult, error) {
	fresh, err := s.loadOrder(orderNo, sessionID)
	if err != nil {
		return nil, err
	}
	if fresh.PaymentStatus == constants.OrderPaymentStatusPaid && fresh.TransactionID == transactionID {
		return result, nil
	}
	return nil, ErrPaymentNotAllowed
}

// HandleFailure 记录网关失败：支付状态置为 failed，购物车保留；返回 PaymentError 供调用方展示
func (s *PaymentService) HandleFailure(ctx context.Context, orderNo, sessionID, reason string) error {
	order, err := s.loadOrder(orderNo, sessionID)
	if err != nil {
		return err
	}
	if !canPay(order) {
		return ErrPaymentNotAllowed
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "gateway_declined"
	}
	now := s.now()
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.WithTx(tx).UpdateIfState(order.ID, constants.OrderStatusPending, retryablePaymentStatuses,
			map[string]interface{}{
				"payment_status": constants.OrderPaymentStatusFailed,
				"updated_at":     now,
			})
		if err != nil {
			return err
		}
		// 并发支付成功或已取消时不再记录失败
		if affected == 0 {
			return ErrPaymentNotAllowed
		}
		paymentRepo := s.paymentRepo.WithTx(tx)
		attempt, err := paymentRepo.GetLatestByOrder(order.ID)
		if err != nil {
			return err
		}
		return s.settleAttempt(paymentRepo, order, attempt, constants.PaymentStatusFailed, "", reason, now)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Warnw("payment_failed", "order_no", order.OrderNo, "reason", reason)
	return &PaymentError{OrderNo: order.OrderNo, Reason: reason}
}

// HandleCancel 用户取消支付：订单与购物车均不变，仅关闭当前支付尝试
func (s *PaymentService) HandleCancel(ctx context.Context, orderNo, sessionID string) (*models.Order, error) {
	order, err := s.loadOrder(orderNo, sessionID)
	if err != nil {
		return nil, err
	}
	latest, err := s.paymentRepo.GetLatestByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.Status == constants.PaymentStatusInitiated {
		now := s.now()
		latest.Status = constants.PaymentStatusCancelled
		latest.CallbackAt = &now
		latest.UpdatedAt = now
		if err := s.paymentRepo.Update(latest); err != nil {
			return nil, err
		}
	}
	logger.FromContext(ctx).Infow("payment_cancelled", "order_no", order.OrderNo)
	return order, nil
}

// ListAttempts 订单全部支付尝试，供管理端排查
func (s *PaymentService) ListAttempts(orderID uint) ([]models.Payment, error) {
	return s.paymentRepo.ListByOrderID(orderID)
}

// settleAttempt 关闭发起中的支付尝试；网关在发起前即失败时补记一条
func (s *PaymentService) settleAttempt(repo repository.PaymentRepository, order *models.Order, attempt *models.Payment, status, transactionID, reason string, now time.Time) error {
	if attempt == nil || attempt.Status != constants.PaymentStatusInitiated {
		attempt = &models.Payment{
			OrderID:      order.ID,
			ProviderType: s.gateway.Name(),
			Amount:       order.TotalAmount,
			Currency:     order.Currency,
			CreatedAt:    now,
		}
	}
	attempt.Status = status
	attempt.TransactionID = transactionID
	attempt.FailureReason = reason
	attempt.CallbackAt = &now
	attempt.UpdatedAt = now
	if status == constants.PaymentStatusSuccess {
		attempt.PaidAt = &now
	}
	if attempt.ID == 0 {
		return repo.Create(attempt)
	}
	return repo.Update(attempt)
}
