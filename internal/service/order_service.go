package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/threadhouse/internal/cache"
	"github.com/threadhouse/internal/constants"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/pricing"
	"github.com/threadhouse/internal/queue"
	"github.com/threadhouse/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderServiceOptions 订单服务参数
type OrderServiceOptions struct {
	Pricing              pricing.Options
	Currency             string
	PaymentExpireMinutes int
	RestockOnCancel      bool
	Now                  func() time.Time
}

// OrderService 订单服务
type OrderService struct {
	orderRepo       repository.OrderRepository
	variantRepo     repository.ProductVariantRepository
	productRepo     repository.ProductRepository
	cartRepo        repository.CartRepository
	queue           NotificationQueue
	pricing         pricing.Options
	currency        string
	expireMinutes   int
	restockOnCancel bool
	now             func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, variantRepo repository.ProductVariantRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, q NotificationQueue, opts OrderServiceOptions) *OrderService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	currency := strings.TrimSpace(opts.Currency)
	if currency == "" {
		currency = "INR"
	}
	return &OrderService{
		orderRepo:       orderRepo,
		variantRepo:     variantRepo,
		productRepo:     productRepo,
		cartRepo:        cartRepo,
		queue:           q,
		pricing:         opts.Pricing,
		currency:        currency,
		expireMinutes:   opts.PaymentExpireMinutes,
		restockOnCancel: opts.RestockOnCancel,
		now:             now,
	}
}

// ShippingInfo 收货信息
type ShippingInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Country  string `json:"country"`
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	SessionID     string
	Shipping      ShippingInfo
	PaymentMethod string
	ClientTotal   *decimal.Decimal // 仅用于比对，金额始终以服务端计算为准
	ClientIP      string
}

// CheckoutResult 结算结果
type CheckoutResult struct {
	Order           *models.Order `json:"order"`
	OrderNo         string        `json:"order_no"`
	Redirect        string        `json:"redirect,omitempty"`
	RequiresPayment bool          `json:"requires_payment"`
}

// Checkout 由会话购物车创建订单：校验、扣减库存、持久化快照；COD 立即清空购物车
func (s *OrderService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return nil, ErrCartSessionRequired
	}
	shipping, err := normalizeShipping(input.Shipping)
	if err != nil {
		return nil, err
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if method != constants.PaymentMethodCOD && method != constants.PaymentMethodGateway {
		return nil, newValidationError("payment_method", "must be cod or gateway")
	}

	now := s.now()
	var order *models.Order
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)
		c, err := loadCart(cartRepo, sessionID)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return ErrCartEmpty
		}

		lines := c.Items()
		var conflicts []StockConflictItem
		for _, line := range lines {
			affected, err := variantRepo.DecrementStock(line.VariantID, line.Quantity)
			if err != nil {
				return err
			}
			if affected > 0 {
				continue
			}
			available := 0
			live, err := variantRepo.GetByID(line.VariantID)
			if err != nil {
				return err
			}
			if live != nil {
				available = live.Stock
			}
			conflicts = append(conflicts, StockConflictItem{
				ProductID:  line.ProductID,
				VariantID:  line.VariantID,
				Name:       line.Name,
				Size:       line.Size,
				Color:      line.Color,
				SleeveType: line.SleeveType,
				Fit:        line.Fit,
				Requested:  line.Quantity,
				Available:  available,
			})
		}
		if len(conflicts) > 0 {
			return &StockConflictError{Items: conflicts}
		}

		totals := pricing.ComputeTotals(c.Lines(), s.pricing)
		if input.ClientTotal != nil && !input.ClientTotal.Round(2).Equal(totals.Total.Round(2)) {
			logger.FromContext(ctx).Warnw("checkout_client_total_mismatch",
				"session_id", sessionID,
				"client_total", input.ClientTotal.String(),
				"server_total", totals.Total.Round(2).String(),
			)
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, models.OrderItem{
				ProductID:  line.ProductID,
				VariantID:  line.VariantID,
				Name:       line.Name,
				Image:      line.Image,
				Size:       line.Size,
				Color:      line.Color,
				SleeveType: line.SleeveType,
				Fit:        line.Fit,
				UnitPrice:  models.NewMoneyFromDecimal(line.UnitPrice),
				Quantity:   line.Quantity,
				TotalPrice: models.NewMoneyFromDecimal(line.LineTotal()),
				CreatedAt:  now,
			})
		}
		order = &models.Order{
			OrderNo:        generateSerialNo(constants.OrderNoPrefix, now),
			SessionID:      sessionID,
			Status:         constants.OrderStatusPending,
			PaymentStatus:  constants.OrderPaymentStatusPending,
			PaymentMethod:  method,
			Currency:       s.currency,
			Subtotal:       models.NewMoneyFromDecimal(totals.Subtotal),
			ShippingAmount: models.NewMoneyFromDecimal(totals.Shipping),
			TaxAmount:      models.NewMoneyFromDecimal(totals.Tax),
			TotalAmount:    models.NewMoneyFromDecimal(totals.Total),
			FullName:       shipping.FullName,
			Email:          shipping.Email,
			Phone:          shipping.Phone,
			Address:        shipping.Address,
			City:           shipping.City,
			State:          shipping.State,
			Pincode:        shipping.Pincode,
			Country:        shipping.Country,
			ClientIP:       strings.TrimSpace(input.ClientIP),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}
		if method == constants.PaymentMethodCOD {
			return cartRepo.ClearBySession(sessionID)
		}
		return nil
	})
	if err != nil {
		var conflict *StockConflictError
		if errors.As(err, &conflict) || errors.Is(err, ErrCartEmpty) {
			return nil, err
		}
		logger.FromContext(ctx).Errorw("order_checkout_failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}

	s.invalidateCatalog(ctx, order.Items)
	logger.FromContext(ctx).Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"payment_method", order.PaymentMethod,
		"total_amount", order.TotalAmount.String(),
	)

	result := &CheckoutResult{Order: order, OrderNo: order.OrderNo}
	if method == constants.PaymentMethodCOD {
		result.Redirect = "/order-success?order_no=" + order.OrderNo
		return result, nil
	}
	result.RequiresPayment = true
	if s.queue != nil && s.expireMinutes > 0 {
		delay := time.Duration(s.expireMinutes) * time.Minute
		if err := s.queue.EnqueueOrderTimeoutCancel(ctx, queue.OrderTimeoutCancelPayload{OrderID: order.ID}, delay); err != nil {
			logger.FromContext(ctx).Errorw("order_enqueue_timeout_cancel_failed",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"error", err,
			)
		}
	}
	return result, nil
}

// GetByOrderNo 顾客按订单号查看订单，仅下单时的购物车会话可见
func (s *OrderService) GetByOrderNo(orderNo, sessionID string) (*models.Order, error) {
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

// orderOwnedBy 订单号可被猜测，公开接口以下单会话判定归属
func orderOwnedBy(order *models.Order, sessionID string) bool {
	sessionID = strings.TrimSpace(sessionID)
	return sessionID != "" && order.SessionID == sessionID
}

// CustomerView 管理端展示的顾客信息
type CustomerView struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// AdminOrderView 管理端订单视图
type AdminOrderView struct {
	*models.Order
	ItemCount         int              `json:"item_count"`
	Customer          CustomerView     `json:"customer"`
	Payments          []models.Payment `json:"payments,omitempty"`
	NotificationError string           `json:"notification_error,omitempty"` // 状态已提交但通知未能投递
}

func newAdminOrderView(order *models.Order) AdminOrderView {
	return AdminOrderView{
		Order:     order,
		ItemCount: order.ItemCount(),
		Customer: CustomerView{
			Name:    order.FullName,
			Email:   order.Email,
			Phone:   order.Phone,
			Address: order.Address,
			City:    order.City,
			State:   order.State,
			Pincode: order.Pincode,
			Country: order.Country,
		},
	}
}

// AdminList 管理端订单列表
func (s *OrderService) AdminList(filter repository.OrderListFilter) ([]AdminOrderView, int64, error) {
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]AdminOrderView, 0, len(orders))
	for i := range orders {
		views = append(views, newAdminOrderView(&orders[i]))
	}
	return views, total, nil
}

// AdminGet 管理端订单详情
func (s *OrderService) AdminGet(id uint) (*AdminOrderView, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	view := newAdminOrderView(order)
	return &view, nil
}

// AdminUpdateOrderInput 管理端订单更新（字段均可选）
type AdminUpdateOrderInput struct {
	Status         *string
	PaymentStatus  *string
	TrackingNumber *string
	Notes          *string
}

// AdminUpdate 更新订单状态与备注；行项与收货快照不可修改
func (s *OrderService) AdminUpdate(ctx context.Context, id uint, input AdminUpdateOrderInput) (*AdminOrderView, error) {
	var target, paymentTarget string
	if input.Status != nil {
		target = strings.ToLower(strings.TrimSpace(*input.Status))
		if !orderStatuses[target] {
			return nil, newValidationError("status", "invalid order status")
		}
	}
	if input.PaymentStatus != nil {
		paymentTarget = strings.ToLower(strings.TrimSpace(*input.PaymentStatus))
		if !orderPaymentStatuses[paymentTarget] {
			return nil, newValidationError("payment_status", "invalid payment status")
		}
	}

	now := s.now()
	var previousStatus string
	var updated *models.Order
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByID(id)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		previousStatus = order.Status

		updates := map[string]interface{}{"updated_at": now}
		if target != "" && target != order.Status {
			if !isTransitionAllowed(order.Status, target) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
			}
			updates["status"] = target
			if target == constants.OrderStatusCancelled {
				updates["canceled_at"] = now
			}
		}
		if paymentTarget != "" && paymentTarget != order.PaymentStatus {
			if !isPaymentTransitionAllowed(order.PaymentStatus, paymentTarget) {
				return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, order.PaymentStatus, paymentTarget)
			}
			updates["payment_status"] = paymentTarget
			if paymentTarget == constants.OrderPaymentStatusPaid {
				updates["paid_at"] = now
			}
		}
		if input.TrackingNumber != nil {
			updates["tracking_number"] = strings.TrimSpace(*input.TrackingNumber)
		}
		if input.Notes != nil {
			updates["notes"] = strings.TrimSpace(*input.Notes)
		}

		affected, err := orderRepo.UpdateIfState(order.ID, order.Status, []string{order.PaymentStatus}, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
		}
		if target != "" && s.restockOnCancel && releasesStock(order.Status, target) {
			if err := restockItems(s.variantRepo.WithTx(tx), order.Items); err != nil {
				return err
			}
		}
		updated, err = orderRepo.GetByID(order.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		logger.FromContext(ctx).Errorw("order_admin_update_failed", "order_id", id, "error", err)
		return nil, ErrOrderUpdateFailed
	}

	if updated.Status != previousStatus {
		logger.FromContext(ctx).Infow("order_status_changed",
			"order_id", updated.ID,
			"order_no", updated.OrderNo,
			"from", previousStatus,
			"to", updated.Status,
		)
		if releasesStock(previousStatus, updated.Status) {
			s.invalidateCatalog(ctx, updated.Items)
		}
		if nerr := enqueueOrderStatus(ctx, s.queue, updated, now); nerr != nil {
			logger.FromContext(ctx).Warnw("order_enqueue_status_email_failed",
				"order_id", updated.ID,
				"order_no", updated.OrderNo,
				"status", updated.Status,
				"error", nerr.Err,
			)
			view := newAdminOrderView(updated)
			view.NotificationError = nerr.Error()
			return &view, nil
		}
	}
	view := newAdminOrderView(updated)
	return &view, nil
}

// CancelExpiredOrder 网关订单超时未支付时取消并回补库存；已支付或已变更的订单保持不变
func (s *OrderService) CancelExpiredOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentMethod != constants.PaymentMethodGateway || order.Status != constants.OrderStatusPending {
		return order, nil
	}
	if order.PaymentStatus != constants.OrderPaymentStatusPending && order.PaymentStatus != constants.OrderPaymentStatusFailed {
		return order, nil
	}
	now := s.now()
	if s.expireMinutes > 0 && order.CreatedAt.Add(time.Duration(s.expireMinutes)*time.Minute).After(now) {
		return order, nil
	}

	cancelled := false
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.WithTx(tx).UpdateIfState(order.ID, constants.OrderStatusPending,
			[]string{constants.OrderPaymentStatusPending, constants.OrderPaymentStatusFailed},
			map[string]interface{}{
				"status":      constants.OrderStatusCancelled,
				"canceled_at": now,
				"updated_at":  now,
			})
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		cancelled = true
		if !s.restockOnCancel {
			return nil
		}
		return restockItems(s.variantRepo.WithTx(tx), order.Items)
	})
	if err != nil {
		return nil, ErrOrderUpdateFailed
	}

	fresh, err := s.orderRepo.GetByID(order.ID)
	if err != nil || fresh == nil {
		return nil, ErrOrderFetchFailed
	}
	if cancelled {
		logger.FromContext(ctx).Infow("order_timeout_cancelled", "order_id", fresh.ID, "order_no", fresh.OrderNo)
		s.invalidateCatalog(ctx, fresh.Items)
		// 超时取消无人等待结果，通知失败只记录
		if nerr := enqueueOrderStatus(ctx, s.queue, fresh, now); nerr != nil {
			logger.FromContext(ctx).Warnw("order_enqueue_status_email_failed",
				"order_id", fresh.ID,
				"order_no", fresh.OrderNo,
				"status", fresh.Status,
				"error", nerr.Err,
			)
		}
	}
	return fresh, nil
}

func restockItems(variantRepo repository.ProductVariantRepository, items []models.OrderItem) error {
	for _, item := range items {
		if _, err := variantRepo.IncrementStock(item.VariantID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// invalidateCatalog 库存变化后清理商品详情缓存，失败只记录日志
func (s *OrderService) invalidateCatalog(ctx context.Context, items []models.OrderItem) {
	if !cache.Enabled() || s.productRepo == nil {
		return
	}
	seen := make(map[uint]bool, len(items))
	slugs := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil || product == nil {
			continue
		}
		slugs = append(slugs, product.Slug)
	}
	if err := cache.InvalidateProducts(ctx, slugs...); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "slugs", slugs, "error", err)
	}
}

// normalizeShipping 校验收货信息，国家缺省为 India
func normalizeShipping(in ShippingInfo) (ShippingInfo, error) {
	out := ShippingInfo{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		City:     strings.TrimSpace(in.City),
		State:    strings.TrimSpace(in.State),
		Pincode:  strings.TrimSpace(in.Pincode),
		Country:  strings.TrimSpace(in.Country),
	}
	required := []struct {
		field string
		value string
	}{
		{"full_name", out.FullName},
		{"email", out.Email},
		{"phone", out.Phone},
		{"address", out.Address},
		{"city", out.City},
		{"state", out.State},
		{"pincode", out.Pincode},
	}
	for _, r := range required {
		if r.value == "" {
			return out, newValidationError(r.field, "required")
		}
	}
	if err := validateEmail(out.Email); err != nil {
		return out, err
	}
	if out.Country == "" {
		out.Country = "India"
	}
	return out, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return newValidationError("email", "invalid email address")
	}
	return nil
}

// generateSerialNo 生成 前缀+时间戳+6 位随机数 的业务编号
func generateSerialNo(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%s%s", prefix, now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
