package public

import (
	"strings"

	"github.com/threadhouse/internal/http/handlers/shared"
	"github.com/threadhouse/internal/http/response"
	"github.com/threadhouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	Shipping      service.ShippingInfo `json:"shipping"`
	PaymentMethod string               `json:"payment_method" binding:"required"`
	ClientTotal   *decimal.Decimal     `json:"client_total"`
}

// Checkout 以当前购物车创建订单
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	result, err := h.OrderService.Checkout(c.Request.Context(), service.CheckoutInput{
		SessionID:     shared.CartSessionID(c),
		Shipping:      req.Shipping,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		ClientTotal:   req.ClientTotal,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// GetOrder 顾客按订单号查看订单，其他会话一律视为不存在
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.GetByOrderNo(c.Param("order_no"), shared.CartSessionID(c))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}
