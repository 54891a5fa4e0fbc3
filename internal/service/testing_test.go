package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/payment"
	"github.com/threadhouse/internal/pricing"
	"github.com/threadhouse/internal/queue"
	"github.com/threadhouse/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// openTestDB 每个测试独立的内存库；单连接避免 sqlite 共享缓存锁冲突
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// stubQueue 记录投递的通知，可模拟投递失败
type stubQueue struct {
	mu       sync.Mutex
	orders   []queue.OrderStatusEmailPayload
	requests []queue.RequestStatusEmailPayload
	timeouts []queue.OrderTimeoutCancelPayload
	failWith error
}

func (q *stubQueue) EnqueueOrderStatusEmail(ctx context.Context, payload queue.OrderStatusEmailPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return q.failWith
	}
	q.orders = append(q.orders, payload)
	return nil
}

func (q *stubQueue) EnqueueRequestStatusEmail(ctx context.Context, payload queue.RequestStatusEmailPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return q.failWith
	}
	q.requests = append(q.requests, payload)
	return nil
}

func (q *stubQueue) EnqueueOrderTimeoutCancel(ctx context.Context, payload queue.OrderTimeoutCancelPayload, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return q.failWith
	}
	q.timeouts = append(q.timeouts, payload)
	return nil
}

var errQueueDown = errors.New("redis: connection refused")

// testEnv 组装真实仓库与服务
type testEnv struct {
	db       *gorm.DB
	queue    *stubQueue
	gateway  *payment.SandboxGateway
	catalog  *CatalogService
	carts    *CartService
	orders   *OrderService
	payments *PaymentService
	requests *RequestService
	products *repository.GormProductRepository
	variants *repository.GormProductVariantRepository
	cartRepo *repository.GormCartRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)
	q := &stubQueue{}
	gw := payment.NewSandboxGateway()
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewProductVariantRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	opts := pricing.DefaultOptions()
	return &testEnv{
		db:       db,
		queue:    q,
		gateway:  gw,
		catalog:  NewCatalogService(productRepo, repository.NewCategoryRepository(db), 0, ParseResetPolicy("first_available")),
		carts:    NewCartService(cartRepo, productRepo, variantRepo, opts, "INR"),
		orders: NewOrderService(orderRepo, variantRepo, productRepo, cartRepo, q, OrderServiceOptions{
			Pricing:              opts,
			Currency:             "INR",
			PaymentExpireMinutes: 30,
			RestockOnCancel:      true,
			Now:                  fixedClock,
		}),
		payments: NewPaymentService(orderRepo, repository.NewPaymentRepository(db), cartRepo, gw, "", fixedClock),
		requests: NewRequestService(repository.NewBulkRequestRepository(db), repository.NewCustomRequestRepository(db), q, fixedClock),
		products: productRepo,
		variants: variantRepo,
		cartRepo: cartRepo,
	}
}

func (e *testEnv) createProduct(t *testing.T, slug string, price int64, variants ...models.ProductVariant) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:  1,
		Slug:        slug,
		Name:        "Tee " + slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Images:      models.StringArray{"/img/" + slug + ".jpg"},
		InStock:     true,
		IsActive:    true,
		Variants:    variants,
	}
	if err := e.products.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (e *testEnv) stockOf(t *testing.T, variantID uint) int {
	t.Helper()
	v, err := e.variants.GetByID(variantID)
	if err != nil || v == nil {
		t.Fatalf("get variant %d failed: %v", variantID, err)
	}
	return v.Stock
}

func (e *testEnv) addToCart(t *testing.T, session string, product *models.Product, size, color string, qty int) *CartView {
	t.Helper()
	view, err := e.carts.AddItem(AddCartItemInput{
		SessionID: session,
		ProductID: product.ID,
		Size:      size,
		Color:     color,
		Quantity:  qty,
	})
	if err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
	return view
}

func testShipping() ShippingInfo {
	return ShippingInfo{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "9999999999",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		State:    "KA",
		Pincode:  "560001",
	}
}

func strPtr(s string) *string { return &s }
