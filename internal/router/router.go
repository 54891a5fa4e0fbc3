package router

import (
	"fmt"
	"strings"

	"github.com/threadhouse/internal/cache"
	"github.com/threadhouse/internal/config"
	adminhandlers "github.com/threadhouse/internal/http/handlers/admin"
	publichandlers "github.com/threadhouse/internal/http/handlers/public"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "th"
	}
	redisClient := cache.Client()
	bulkRule := NewFormRateLimitRule(fmt.Sprintf("%s:rate:bulk_order", redisPrefix), cfg.Security.FormRateLimit)
	customRule := NewFormRateLimitRule(fmt.Sprintf("%s:rate:custom_design", redisPrefix), cfg.Security.FormRateLimit)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 店铺前台：商品、购物车、结算、支付与表单
		public := apiV1.Group("/public")
		public.Use(CartSessionMiddleware())
		{
			public.GET("/categories", publicHandler.ListCategories)
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:slug", publicHandler.GetProduct)
			public.GET("/products/:slug/variant-options", publicHandler.VariantOptions)

			public.GET("/cart", publicHandler.GetCart)
			public.POST("/cart/items", publicHandler.AddCartItem)
			public.PATCH("/cart/items", publicHandler.UpdateCartItem)
			public.DELETE("/cart/items", publicHandler.RemoveCartItem)
			public.DELETE("/cart", publicHandler.ClearCart)

			public.POST("/checkout", publicHandler.Checkout)
			public.GET("/orders/:order_no", publicHandler.GetOrder)
			public.POST("/orders/:order_no/payments", publicHandler.InitiatePayment)
			public.POST("/orders/:order_no/payments/success", publicHandler.PaymentSuccess)
			public.POST("/orders/:order_no/payments/failure", publicHandler.PaymentFailure)
			public.POST("/orders/:order_no/payments/cancel", publicHandler.PaymentCancel)

			public.POST("/bulk-orders", RateLimitMiddleware(redisClient, bulkRule, KeyByIPAndJSONField("email")), publicHandler.SubmitBulkOrder)
			public.POST("/custom-designs", RateLimitMiddleware(redisClient, customRule, KeyByIPAndJSONField("email")), publicHandler.SubmitCustomDesign)
		}

		// 管理端：令牌由外部认证服务签发
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT))
		{
			admin.GET("/orders", adminHandler.AdminListOrders)
			admin.GET("/orders/:id", adminHandler.AdminGetOrder)
			admin.PATCH("/orders/:id", adminHandler.AdminUpdateOrder)

			admin.GET("/bulk-orders", adminHandler.ListBulkOrders)
			admin.GET("/bulk-orders/:id", adminHandler.GetBulkOrder)
			admin.PATCH("/bulk-orders/:id", adminHandler.UpdateBulkOrder)

			admin.GET("/custom-designs", adminHandler.ListCustomDesigns)
			admin.GET("/custom-designs/:id", adminHandler.GetCustomDesign)
			admin.PATCH("/custom-designs/:id", adminHandler.UpdateCustomDesign)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
