package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/threadhouse/internal/constants"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/repository"

	"github.com/shopspring/decimal"
)

func TestCheckoutCODClearsCartAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "tee", 1499, models.ProductVariant{Size: "M", Color: "Black", Stock: 5})
	env.addToCart(t, "sess", product, "M", "Black", 2)

	clientTotal := decimal.RequireFromString("1.00")
	result, err := env.orders.Checkout(context.Background(), CheckoutInput{
		SessionID:     "sess",
		Shipping:      testShipping(),
		PaymentMethod: "cod",
		ClientTotal:   &clientTotal,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !strings.HasPrefix(result.OrderNo, "TH20260310090000") {
		t.Fatalf("unexpected order no: %s", result.OrderNo)
	}
	if result.Redirect != "/order-success?order_no="+result.OrderNo || result.RequiresPayment {
		t.Fatalf("unexpected cod result: %+v", result)
	}

	order, err := env.orders.GetByOrderNo(result.OrderNo, "sess")
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	// 服务端金额为准，忽略客户端提交的总额
	if order.TotalAmount.String() != "3537.64" || order.Subtotal.String() != "2998.00" {
		t.Fatalf("unexpected totals: subtotal=%s total=%s", order.Subtotal.String(), order.TotalAmount.String())
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.OrderPaymentStatusPending {
		t.Fatalf("unexpected state: %s/%s", order.Status, order.PaymentStatus)
	}
	if order.Country != "India" {
		t.Fatalf("expected default country, got %q", order.Country)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 || order.Items[0].TotalPrice.String() != "2998.00" {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if got := env.stockOf(t, product.Variants[0].ID); got != 3 {
		t.Fatalf("expected stock 3 after checkout, got %d", got)
	}

	view, _ := env.carts.Get("sess")
	if len(view.Items) != 0 {
		t.Fatalf("cod checkout must clear cart, got %+v", view.Items)
	}
	if len(env.queue.timeouts) != 0 {
		t.Fatalf("cod order must not schedule timeout cancel")
	}
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "tee", 999, models.ProductVariant{Size: "M", Color: "White", Stock: 5})

	_, err := env.orders.Checkout(context.Background(), CheckoutInput{SessionID: "empty", Shipping: testShipping(), PaymentMethod: "cod"})
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected cart empty, got %v", err)
	}

	env.addToCart(t, "sess", product, "M", "White", 1)
	shipping := testShipping()
	shipping.Email = "not-an-email"
	var verr *ValidationError
	_, err = env.orders.Checkout(context.Background(), CheckoutInput{SessionID: "sess", Shipping: shipping, PaymentMethod: "cod"})
	if !errors.As(err, &verr) || verr.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}

	shipping = testShipping()
	shipping.Pincode = " "
	_, err = env.orders.Checkout(context.Background(), CheckoutInput{SessionID: "sess", Shipping: shipping, PaymentMethod: "cod"})
	if !errors.As(err, &verr) || verr.Field != "pincode" {
		t.Fatalf("expected pincode validation error, got %v", err)
	}

	_, err = env.orders.Checkout(context.Background(), CheckoutInput{SessionID: "sess", Shipping: testShipping(), PaymentMethod: "card"})
	if !errors.As(err, &verr) || verr.Field != "payment_method" {
		t.Fatalf("expected payment method validation error, got %v", err)
	}
	if got := env.stockOf(t, product.Variants[0].ID); got != 5 {
		t.Fatalf("rejected checkout must not touch stock, got %d", got)
	}
}

func TestCheckoutStockConflictRejectsWholeOrder(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "tee", 999,
		models.ProductVariant{Size: "M", Color: "White", Stock: 5},
		models.ProductVariant{Size: "L", Color: "White", Stock: 2},
		models.ProductVariant{Size: "XL", Color: "White", Stock: 2},
	)
	env.addToCart(t, "sess", product, "M", "White", 2)
	env.addToCart(t, "sess", product, "L", "White", 2)
	env.addToCart(t, "sess", product, "XL", "White", 2)

	// 其他顾客抢先买走部分库存
	if _, err := env.variants.DecrementStock(product.Variants[1].ID, 1); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if _, err := env.variants.DecrementStock(product.Variants[2].ID, 2); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	_, err := env.orders.Checkout(context.Background(), CheckoutInput{SessionID: "sess", Shipping: testShipping(), PaymentMethod: "cod"})
	var conflict *StockConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected stock conflict, got %v", err)
	}
	if len(conflict.Items) != 2 {
		t.Fatalf("expected both conflicting lines, got %+v", conflict.Items)
	}
	if conflict.Items[0].Size != "L" || conflict.Items[0].Available != 1 || conflict.Items[0].Requested != 2 {
		t.Fatalf("unexpected first conflict: %+v", conflict.Items[0])
	}
	if conflict.Items[1].Size != "XL" || conflict.Items[1].Available != 0 {
		t.Fatalf("unexpected second conflict: %+v", conflict.Items[1])
	}

	if got := env.stockOf(t, product.Variants[0].ID); got != 5 {
		t.Fatalf("stock of satisfiable line must be untouched, got %d", got)
	}
	orders, total, err := env.orders.AdminList(repository.OrderListFilter{Page: 1, PageSize: 20})
	if err != nil || total != 0 || len(orders) != 0 {
		t.Fatalf("no order may be persisted: total=%d err=%v", total, err)
	}
	view, _ := env.carts.Get("sess")
	if len(view.Items) != 3 {
		t.Fatalf("cart must be kept after conflict, got %d lines", len(view.Items))
	}
}

func gatewayCheckout(t *testing.T, env *testEnv) (*models.Product, *CheckoutResult) {
	t.Helper()
	product := env.createProduct(t, "tee", 500, models.ProductVariant{Size: "S", Color: "Blue", Stock: 4})
	env.addToCart(t, "sess", product, "S", "Blue", 1)
	result, err := env.orders.Checkout(context.Background(), CheckoutInput{SessionID: "sess", Shipping: testShipping(), PaymentMethod: "gateway"})
	if err != nil {
		t.Fatalf("gateway checkout failed: %v", err)
	}
	return product, result
}

func TestGatewayCheckoutSuccessClearsCart(t *testing.T) {
	env := newTestEnv(t)
	_, result := gatewayCheckout(t, env)
	if !result.RequiresPayment || result.Redirect != "" {
		t.Fatalf("unexpected gateway result: %+v", result)
	}
	if len(env.queue.timeouts) != 1 || env.queue.timeouts[0].OrderID != result.Order.ID {
		t.Fatalf("expected timeout cancel scheduled, got %+v", env.queue.timeouts)
	}
	view, _ := env.carts.Get("sess")
	if len(view.Items) != 1 {
		t.Fatalf("gateway checkout keeps cart until payment succeeds")
	}

	attempt, err := env.payments.Initiate(context.Background(), result.OrderNo, "sess")
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if attempt.Status != constants.PaymentStatusInitiated || attempt.Amount.String() != "689.00" {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}

	success, err := env.payments.HandleSuccess(context.Background(), result.OrderNo, "sess", "txn_123")
	if err != nil {
		t.Fatalf("handle success failed: %v", err)
	}
	if success.TransactionID != "txn_123" || !strings.Contains(success.Redirect, "&txn=txn_123") {
		t.Fatalf("unexpected success result: %+v", success)
	}
	order, _ := env.orders.GetByOrderNo(result.OrderNo, "sess")
	if order.PaymentStatus != constants.OrderPaymentStatusPaid || order.TransactionID != "txn_123" || order.PaidAt == nil {
		t.Fatalf("order not marked paid: %+v", order)
	}
	view, _ = env.carts.Get("sess")
	if len(view.Items) != 0 {
		t.Fatalf("successful payment must clear cart")
	}

	// 同一交易号重复回调幂等
	if _, err := env.payments.HandleSuccess(context.Background(), result.OrderNo, "sess", "txn_123"); err != nil {
		t.Fatalf("repeated success must be idempotent: %v", err)
	}
	if _, err := env.payments.HandleSuccess(context.Background(), result.OrderNo, "sess", "txn_other"); !errors.Is(err, ErrPaymentNotAllowed) {
		t.Fatalf("different txn on paid order must be rejected, got %v", err)
	}
}

func TestGatewayPaymentFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	_, result := gatewayCheckout(t, env)
	ctx := context.Background()
	if _, err := env.payments.Initiate(ctx, result.OrderNo, "sess"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	_, err := env.payments.HandleSuccess(ctx, result.OrderNo, "sess", "fail_abc")
	var perr *PaymentError
	if !errors.As(err, &perr) || perr.Reason != "verification_failed" {
		t.Fatalf("expected verification failure, got %v", err)
	}

	err = env.payments.HandleFailure(ctx, result.OrderNo, "sess", "card_declined")
	if !errors.As(err, &perr) || perr.Reason != "card_declined" {
		t.Fatalf("expected payment error, got %v", err)
	}
	order, _ := env.orders.GetByOrderNo(result.OrderNo, "sess")
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.OrderPaymentStatusFailed {
		t.Fatalf("unexpected state after failure: %s/%s", order.Status, order.PaymentStatus)
	}
	view, _ := env.carts.Get("sess")
	if len(view.Items) != 1 {
		t.Fatalf("failed payment must keep cart")
	}

	// 失败关闭了本次尝试，需重新发起后才能成功
	if _, err := env.payments.HandleSuccess(ctx, result.OrderNo, "sess", "txn_retry"); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("success without a live attempt must be rejected, got %v", err)
	}
	if _, err := env.payments.Initiate(ctx, result.OrderNo, "sess"); err != nil {
		t.Fatalf("re-initiate failed: %v", err)
	}
	if _, err := env.payments.HandleSuccess(ctx, result.OrderNo, "sess", "txn_retry"); err != nil {
		t.Fatalf("retry after failure should succeed: %v", err)
	}
}

func TestPaymentSuccessRequiresInitiatedAttempt(t *testing.T) {
	env := newTestEnv(t)
	_, result := gatewayCheckout(t, env)

	_, err := env.payments.HandleSuccess(context.Background(), result.OrderNo, "sess", "forged-123")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("success without initiation must be rejected, got %v", err)
	}
	order, _ := env.orders.GetByOrderNo(result.OrderNo, "sess")
	if order.PaymentStatus != constants.OrderPaymentStatusPending || order.TransactionID != "" {
		t.Fatalf("order must stay unpaid: %s txn=%q", order.PaymentStatus, order.TransactionID)
	}
	var attempts int64
	env.db.Model(&models.Payment{}).Where("order_id = ?", result.Order.ID).Count(&attempts)
	if attempts != 0 {
		t.Fatalf("rejected success must not record an attempt, got %d", attempts)
	}
}

func TestPaymentRoutesRequireOwningSession(t *testing.T) {
	env := newTestEnv(t)
	_, result := gatewayCheckout(t, env)
	ctx := context.Background()

	if _, err := env.orders.GetByOrderNo(result.OrderNo, "intruder"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign session must not see the order, got %v", err)
	}
	if _, err := env.orders.GetByOrderNo(result.OrderNo, ""); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("empty session must not see the order, got %v", err)
	}
	if _, err := env.payments.Initiate(ctx, result.OrderNo, "intruder"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign initiate must be rejected, got %v", err)
	}
	if _, err := env.payments.Initiate(ctx, result.OrderNo, "sess"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := env.payments.HandleSuccess(ctx, result.OrderNo, "intruder", "txn_1"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign success must be rejected, got %v", err)
	}
	if err := env.payments.HandleFailure(ctx, result.OrderNo, "intruder", "x"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign failure must be rejected, got %v", err)
	}
	if _, err := env.payments.HandleCancel(ctx, result.OrderNo, "intruder"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign cancel must be rejected, got %v", err)
	}
	order, _ := env.orders.GetByOrderNo(result.OrderNo, "sess")
	if order.PaymentStatus != constants.OrderPaymentStatusPending {
		t.Fatalf("order must be untouched, got %s", order.PaymentStatus)
	}
}

func TestPaymentSuccessKeepsLinesAddedAfterCheckout(t *testing.T) {
	env := newTestEnv(t)
	_, result := gatewayCheckout(t, env)
	ctx := context.Background()
	hoodie := env.createProduct(t, "hoodie", 2499, models.ProductVariant{Size: "L", Color: "Grey", Stock: 3})
	env.addToCart(t, "sess", hoodie, "L", "Grey", 1)

	if _, err := env.payments.Initiate(ctx, result.OrderNo, "sess"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := env.payments.HandleSuccess(ctx, result.OrderNo, "sess", "txn_keep"); err != nil {
		t.Fatalf("success failed: %v", err)
	}
	view, _ := env.carts.Get("sess")
	if len(view.Items) != 1 || view.Items[0].ProductID != hoodie.ID || view.Items[0].Quantity != 1 {
		t.Fatalf("only ordered lines may be removed, got %+v", view.Items)
	}
}

// staleOrderRepo 返回仍处于待支付状态的订单快照
type staleOrderRepo struct {
	repository.OrderRepository
}

func (r *staleOrderRepo) GetByOrderNo(orderNo string) (*models.Order, error) {
	order, err := r.OrderRepository.GetByOrderNo(orderNo)
	if order != nil {
		order.PaymentStatus = constants.OrderPaymentStatusPending
		order.TransactionID = ""
	}
	return order, err
}

func TestPaymentFailureAfterConcurrentSuccessIsRejected(t *testing.T) {
	env := newTestEnv(t)
	_, result := gatewayCheckout(t, env)
	ctx := context.Background()
	if _, err := env.payments.Initiate(ctx, result.OrderNo, "sess"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := env.payments.HandleSuccess(ctx, result.OrderNo, "sess", "txn_first"); err != nil {
		t.Fatalf("success failed: %v", err)
	}
	// 失败回调读到的是支付完成前的订单快照
	live := env.payments.orderRepo
	env.payments.orderRepo = &staleOrderRepo{OrderRepository: live}
	err := env.payments.HandleFailure(ctx, result.OrderNo, "sess", "late_decline")
	if !errors.Is(err, ErrPaymentNotAllowed) {
		t.Fatalf("late failure must be rejected, got %v", err)
	}
	latest, _ := repository.NewPaymentRepository(env.db).GetLatestByOrder(result.Order.ID)
	if latest == nil || latest.Status != constants.PaymentStatusSuccess {
		t.Fatalf("late failure must not record an attempt, got %+v", latest)
	}
	env.payments.orderRepo = live
	order, _ := env.orders.GetByOrderNo(result.OrderNo, "sess")
	if order.PaymentStatus != constants.OrderPaymentStatusPaid {
		t.Fatalf("paid order must stay paid, got %s", order.PaymentStatus)
	}
}

func TestPaymentCancelKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	_, result := gatewayCheckout(t, env)
	if _, err := env.payments.Initiate(context.Background(), result.OrderNo, "sess"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	order, err := env.payments.HandleCancel(context.Background(), result.OrderNo, "sess")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.OrderPaymentStatusPending {
		t.Fatalf("cancel must not change order: %s/%s", order.Status, order.PaymentStatus)
	}
	view, _ := env.carts.Get("sess")
	if len(view.Items) != 1 {
		t.Fatalf("cancel must keep cart")
	}
}

func TestPaymentRejectsCODOrder(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "tee", 999, models.ProductVariant{Size: "M", Color: "White", Stock: 5})
	env.addToCart(t, "sess", product, "M", "White", 1)
	result, err := env.orders.Checkout(context.Background(), CheckoutInput{SessionID: "sess", Shipping: testShipping(), PaymentMethod: "cod"})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if _, err := env.payments.Initiate(context.Background(), result.OrderNo, "sess"); !errors.Is(err, ErrPaymentNotAllowed) {
		t.Fatalf("expected payment not allowed for cod, got %v", err)
	}
	if _, err := env.payments.Initiate(context.Background(), "TH-missing", "sess"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}

func codOrder(t *testing.T, env *testEnv) (*models.Product, *models.Order) {
	t.Helper()
	product := env.createProduct(t, "tee", 1499, models.ProductVariant{Size: "M", Color: "Black", Stock: 5})
	env.addToCart(t, "sess", product, "M", "Black", 2)
	result, err := env.orders.Checkout(context.Background(), CheckoutInput{SessionID: "sess", Shipping: testShipping(), PaymentMethod: "cod"})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	return product, result.Order
}

func TestAdminUpdateShippedNotifiesWithEstimate(t *testing.T) {
	env := newTestEnv(t)
	_, order := codOrder(t, env)

	view, err := env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{
		Status:         strPtr("shipped"),
		TrackingNumber: strPtr(" TRK-1 "),
	})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if view.Status != constants.OrderStatusShipped || view.TrackingNumber != "TRK-1" {
		t.Fatalf("unexpected order after update: %s %q", view.Status, view.TrackingNumber)
	}
	if view.Customer.Email != "asha@example.com" || view.ItemCount != 2 {
		t.Fatalf("unexpected admin view: %+v", view.Customer)
	}
	if len(env.queue.orders) != 1 {
		t.Fatalf("expected one notification, got %d", len(env.queue.orders))
	}
	payload := env.queue.orders[0]
	if payload.Status != "shipped" || payload.EstimatedDelivery != "2026-03-12" || payload.TrackingNumber != "TRK-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.CustomerEmail != "asha@example.com" || payload.OrderNo != order.OrderNo {
		t.Fatalf("unexpected recipient: %+v", payload)
	}
}

func TestAdminUpdateConfirmedDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	_, order := codOrder(t, env)

	if _, err := env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{Status: strPtr("confirmed")}); err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if len(env.queue.orders) != 0 {
		t.Fatalf("confirmed must not notify, got %+v", env.queue.orders)
	}
	// 同状态重复提交不再通知
	if _, err := env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{Notes: strPtr("call before delivery")}); err != nil {
		t.Fatalf("notes update failed: %v", err)
	}
	if len(env.queue.orders) != 0 {
		t.Fatalf("notes-only update must not notify")
	}
}

func TestAdminUpdateKeepsSnapshotImmutable(t *testing.T) {
	env := newTestEnv(t)
	product, order := codOrder(t, env)

	// 商品改价不影响历史订单
	if err := env.db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price_amount", models.NewMoneyFromInt(1999)).Error; err != nil {
		t.Fatalf("reprice failed: %v", err)
	}
	view, err := env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{
		Status:        strPtr("processing"),
		PaymentStatus: strPtr("paid"),
		Notes:         strPtr("rush"),
	})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if view.TotalAmount.String() != order.TotalAmount.String() || view.Items[0].UnitPrice.String() != "1499.00" {
		t.Fatalf("snapshot changed: total=%s unit=%s", view.TotalAmount.String(), view.Items[0].UnitPrice.String())
	}
	if view.FullName != order.FullName || view.Address != order.Address {
		t.Fatalf("shipping snapshot changed")
	}
	if view.PaymentStatus != constants.OrderPaymentStatusPaid || view.PaidAt == nil || view.Notes != "rush" {
		t.Fatalf("unexpected update result: %+v", view.Order)
	}
}

func TestAdminUpdateRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	_, order := codOrder(t, env)

	var verr *ValidationError
	_, err := env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{Status: strPtr("lost")})
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}
	_, err = env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{PaymentStatus: strPtr("maybe")})
	if !errors.As(err, &verr) || verr.Field != "payment_status" {
		t.Fatalf("expected payment status validation error, got %v", err)
	}
	_, err = env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{Status: strPtr("returned")})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending -> returned must be rejected, got %v", err)
	}
	_, err = env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{PaymentStatus: strPtr("refunded")})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending -> refunded must be rejected, got %v", err)
	}
	_, err = env.orders.AdminUpdate(context.Background(), 9999, AdminUpdateOrderInput{Status: strPtr("shipped")})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	fresh, _ := env.orders.AdminGet(order.ID)
	if fresh.Status != constants.OrderStatusPending {
		t.Fatalf("rejected updates must not change order, got %s", fresh.Status)
	}
}

func TestAdminCancelRestocksAndIsFinal(t *testing.T) {
	env := newTestEnv(t)
	product, order := codOrder(t, env)
	if got := env.stockOf(t, product.Variants[0].ID); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}

	view, err := env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{Status: strPtr("cancelled")})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if view.CanceledAt == nil {
		t.Fatalf("expected canceled_at set")
	}
	if got := env.stockOf(t, product.Variants[0].ID); got != 5 {
		t.Fatalf("expected restock to 5, got %d", got)
	}
	if len(env.queue.orders) != 1 || env.queue.orders[0].Status != "cancelled" {
		t.Fatalf("expected cancel notification, got %+v", env.queue.orders)
	}

	_, err = env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{Status: strPtr("processing")})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancelled must be final, got %v", err)
	}
	if got := env.stockOf(t, product.Variants[0].ID); got != 5 {
		t.Fatalf("stock must not be restocked twice, got %d", got)
	}
}

func TestAdminUpdateSurvivesEnqueueFailure(t *testing.T) {
	env := newTestEnv(t)
	_, order := codOrder(t, env)
	env.queue.failWith = errQueueDown

	view, err := env.orders.AdminUpdate(context.Background(), order.ID, AdminUpdateOrderInput{Status: strPtr("processing")})
	if err != nil {
		t.Fatalf("enqueue failure must not fail update: %v", err)
	}
	if view.Status != constants.OrderStatusProcessing {
		t.Fatalf("status must be committed, got %s", view.Status)
	}
	if !strings.Contains(view.NotificationError, "connection refused") {
		t.Fatalf("enqueue failure must be reported on the view, got %q", view.NotificationError)
	}
	fresh, _ := env.orders.AdminGet(order.ID)
	if fresh.Status != constants.OrderStatusProcessing {
		t.Fatalf("status must persist, got %s", fresh.Status)
	}
}

func TestCancelExpiredOrder(t *testing.T) {
	env := newTestEnv(t)
	product, result := gatewayCheckout(t, env)
	if got := env.stockOf(t, product.Variants[0].ID); got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}

	// 未到期不处理
	order, err := env.orders.CancelExpiredOrder(context.Background(), result.Order.ID)
	if err != nil || order.Status != constants.OrderStatusPending {
		t.Fatalf("unexpired order must stay pending: %v %+v", err, order)
	}

	env.orders.now = func() time.Time { return testNow.Add(31 * time.Minute) }
	order, err = env.orders.CancelExpiredOrder(context.Background(), result.Order.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if order.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
	if got := env.stockOf(t, product.Variants[0].ID); got != 4 {
		t.Fatalf("expected restock to 4, got %d", got)
	}

	// 重复执行幂等
	if _, err := env.orders.CancelExpiredOrder(context.Background(), result.Order.ID); err != nil {
		t.Fatalf("repeat cancel failed: %v", err)
	}
	if got := env.stockOf(t, product.Variants[0].ID); got != 4 {
		t.Fatalf("repeat cancel must not restock again, got %d", got)
	}
}

func TestCancelExpiredOrderSkipsPaidOrder(t *testing.T) {
	env := newTestEnv(t)
	_, result := gatewayCheckout(t, env)
	if _, err := env.payments.Initiate(context.Background(), result.OrderNo, "sess"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := env.payments.HandleSuccess(context.Background(), result.OrderNo, "sess", "txn_1"); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	env.orders.now = func() time.Time { return testNow.Add(time.Hour) }
	order, err := env.orders.CancelExpiredOrder(context.Background(), result.Order.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.OrderPaymentStatusPaid {
		t.Fatalf("paid order must be untouched: %s/%s", order.Status, order.PaymentStatus)
	}
}

func TestEstimatedDelivery(t *testing.T) {
	cases := map[string]string{
		"processing": "2026-03-13",
		"shipped":    "2026-03-12",
		"delivered":  "Delivered",
		"cancelled":  "2026-03-15",
	}
	for status, want := range cases {
		if got := EstimatedDelivery(testNow, status); got != want {
			t.Fatalf("status %s: want %s got %s", status, want, got)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{"pending", "shipped", true},
		{"shipped", "returned", true},
		{"delivered", "returned", true},
		{"delivered", "cancelled", false},
		{"pending", "returned", false},
		{"returned", "pending", false},
		{"cancelled", "pending", false},
	}
	for _, c := range cases {
		if got := isTransitionAllowed(c.from, c.to); got != c.ok {
			t.Fatalf("%s -> %s: want %v", c.from, c.to, c.ok)
		}
	}
	if !releasesStock("shipped", "returned") || releasesStock("cancelled", "cancelled") {
		t.Fatalf("unexpected releasesStock result")
	}
}
