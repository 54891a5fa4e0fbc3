package public

import (
	"strings"

	"github.com/threadhouse/internal/http/handlers/shared"
	"github.com/threadhouse/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PaymentSuccessRequest 网关支付成功回调
type PaymentSuccessRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

// PaymentFailureRequest 网关支付失败回调
type PaymentFailureRequest struct {
	Reason string `json:"reason"`
}

// InitiatePayment 为待支付订单发起网关支付
func (h *Handler) InitiatePayment(c *gin.Context) {
	payment, err := h.PaymentService.Initiate(c.Request.Context(), c.Param("order_no"), shared.CartSessionID(c))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, payment)
}

// PaymentSuccess 网关确认支付成功，仅限下单会话且须先发起支付
func (h *Handler) PaymentSuccess(c *gin.Context) {
	var req PaymentSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	result, err := h.PaymentService.HandleSuccess(c.Request.Context(), c.Param("order_no"), shared.CartSessionID(c), strings.TrimSpace(req.TransactionID))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// PaymentFailure 网关支付失败，订单保留可重试
func (h *Handler) PaymentFailure(c *gin.Context) {
	var req PaymentFailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	// 成功记录失败时同样返回 PaymentError，由统一映射输出 402
	if err := h.PaymentService.HandleFailure(c.Request.Context(), c.Param("order_no"), shared.CartSessionID(c), strings.TrimSpace(req.Reason)); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"order_no": c.Param("order_no")})
}

// PaymentCancel 顾客关闭支付窗口
func (h *Handler) PaymentCancel(c *gin.Context) {
	order, err := h.PaymentService.HandleCancel(c.Request.Context(), c.Param("order_no"), shared.CartSessionID(c))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}
