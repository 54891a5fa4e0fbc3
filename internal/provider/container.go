package provider

import (
	"errors"
	"time"

	"github.com/threadhouse/internal/cache"
	"github.com/threadhouse/internal/config"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/payment"
	"github.com/threadhouse/internal/queue"
	"github.com/threadhouse/internal/repository"
	"github.com/threadhouse/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Gateway     payment.Gateway

	// Repositories
	CategoryRepo      repository.CategoryRepository
	ProductRepo       repository.ProductRepository
	VariantRepo       repository.ProductVariantRepository
	CartRepo          repository.CartRepository
	OrderRepo         repository.OrderRepository
	PaymentRepo       repository.PaymentRepository
	BulkRequestRepo   repository.BulkRequestRepository
	CustomRequestRepo repository.CustomRequestRepository

	// Services
	EmailService   *service.EmailService
	CatalogService *service.CatalogService
	CartService    *service.CartService
	OrderService   *service.OrderService
	PaymentService *service.PaymentService
	RequestService *service.RequestService
}

// NewContainer 使用全局数据库初始化容器；支付网关配置无效时拒绝启动
func NewContainer(cfg *config.Config) (*Container, error) {
	gateway, err := payment.NewGateway(cfg.Payment, cfg.Server.Mode)
	if err != nil {
		logger.Errorw("provider_init_payment_gateway_failed", "provider", cfg.Payment.Provider, "error", err)
		return nil, err
	}

	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，未启用时投递为空操作
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}
	return NewContainerWithDB(cfg, models.DB, queueClient, gateway), nil
}

// NewContainerWithDB 基于指定数据库、队列与网关组装仓库和服务
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, queueClient *queue.Client, gateway payment.Gateway) *Container {
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Gateway:     gateway,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices()

	return c
}

// Close 释放队列客户端与缓存连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := cache.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariantRepo = repository.NewProductVariantRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.BulkRequestRepo = repository.NewBulkRequestRepository(db)
	c.CustomRequestRepo = repository.NewCustomRequestRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	pricingOpts := cfg.Pricing.ToOptions()

	// 队列客户端为空时不投递通知
	var notifier service.NotificationQueue
	if c.QueueClient != nil {
		notifier = c.QueueClient
	}

	c.EmailService = service.NewEmailService(&cfg.Email)
	c.CatalogService = service.NewCatalogService(
		c.ProductRepo,
		c.CategoryRepo,
		time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second,
		service.ParseResetPolicy(cfg.Order.ResetPolicy),
	)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.VariantRepo, pricingOpts, cfg.Pricing.Currency)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.VariantRepo, c.ProductRepo, c.CartRepo, notifier, service.OrderServiceOptions{
		Pricing:              pricingOpts,
		Currency:             cfg.Pricing.Currency,
		PaymentExpireMinutes: cfg.Order.PaymentExpireMinutes,
		RestockOnCancel:      cfg.Order.RestockOnCancel,
	})
	c.PaymentService = service.NewPaymentService(c.OrderRepo, c.PaymentRepo, c.CartRepo, c.Gateway, cfg.Payment.ReturnURL, nil)
	c.RequestService = service.NewRequestService(c.BulkRequestRepo, c.CustomRequestRepo, notifier, nil)
}
