package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/threadhouse/internal/config"
	"github.com/threadhouse/internal/constants"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/payment"
	"github.com/threadhouse/internal/provider"
	"github.com/threadhouse/internal/queue"
	"github.com/threadhouse/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func newTestConsumer(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:worker_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	qc, _ := queue.NewClient(nil)
	cfg := &config.Config{
		Order:   config.OrderConfig{PaymentExpireMinutes: 30, RestockOnCancel: true},
		Pricing: config.PricingConfig{Currency: "INR"},
	}
	c := provider.NewContainerWithDB(cfg, db, qc, payment.NewSandboxGateway())
	return NewConsumer(c), db
}

func mustTask(t *testing.T, taskType string, payload interface{}) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(taskType, body)
}

func TestHandleOrderTimeoutCancelRestocks(t *testing.T) {
	consumer, db := newTestConsumer(t)
	variant := models.ProductVariant{ProductID: 1, Size: "M", Color: "White", Stock: 2}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	created := time.Now().Add(-2 * time.Hour)
	order := &models.Order{
		OrderNo:       "TH-EXPIRED",
		Status:        constants.OrderStatusPending,
		PaymentStatus: constants.OrderPaymentStatusPending,
		PaymentMethod: constants.PaymentMethodGateway,
		Currency:      "INR",
		FullName:      "Asha",
		Email:         "asha@example.com",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	items := []models.OrderItem{{ProductID: 1, VariantID: variant.ID, Name: "Tee", Size: "M", Color: "White", Quantity: 3}}
	if err := consumer.OrderRepo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	task := mustTask(t, queue.TaskOrderTimeoutCancel, queue.OrderTimeoutCancelPayload{OrderID: order.ID})
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("timeout cancel failed: %v", err)
	}
	fresh, err := consumer.OrderRepo.GetByID(order.ID)
	if err != nil || fresh == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if fresh.Status != constants.OrderStatusCancelled || fresh.CanceledAt == nil {
		t.Fatalf("expected cancelled order, got %s", fresh.Status)
	}
	live, _ := consumer.VariantRepo.GetByID(variant.ID)
	if live.Stock != 5 {
		t.Fatalf("expected restock to 5, got %d", live.Stock)
	}
}

func TestHandleOrderTimeoutCancelSkipsMissingOrder(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	task := mustTask(t, queue.TaskOrderTimeoutCancel, queue.OrderTimeoutCancelPayload{OrderID: 404})
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}
	zero := mustTask(t, queue.TaskOrderTimeoutCancel, queue.OrderTimeoutCancelPayload{})
	if err := consumer.handleOrderTimeoutCancel(context.Background(), zero); err != nil {
		t.Fatalf("zero id should be skipped, got %v", err)
	}
}

func TestHandlersSkipRetryOnBadPayload(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	bad := asynq.NewTask(queue.TaskOrderStatusEmail, []byte("{"))
	if err := consumer.handleOrderStatusEmail(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry, got %v", err)
	}
	bad = asynq.NewTask(queue.TaskRequestStatusEmail, []byte("not-json"))
	if err := consumer.handleRequestStatusEmail(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry, got %v", err)
	}
}

func TestHandleStatusEmailSkipsWhenDisabled(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	task := mustTask(t, queue.TaskOrderStatusEmail, queue.OrderStatusEmailPayload{
		CustomerEmail: "asha@example.com",
		OrderNo:       "TH1",
		Status:        "shipped",
	})
	if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("disabled email should be skipped, got %v", err)
	}
	task = mustTask(t, queue.TaskRequestStatusEmail, queue.RequestStatusEmailPayload{Kind: "bulk", RequestNo: "BR1"})
	if err := consumer.handleRequestStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("empty receiver should be skipped, got %v", err)
	}
}

func TestRetryableEmailError(t *testing.T) {
	if err := retryableEmailError(fmt.Errorf("%w: 550 user unknown", service.ErrEmailRecipientRejected)); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("rejected recipient must skip retry, got %v", err)
	}
	transient := errors.New("dial tcp: i/o timeout")
	if err := retryableEmailError(transient); errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("transient error must be retried")
	}
	if retryableEmailError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
