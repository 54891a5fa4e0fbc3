package admin

import (
	"strings"

	"github.com/threadhouse/internal/http/handlers/shared"
	"github.com/threadhouse/internal/http/response"
	"github.com/threadhouse/internal/repository"
	"github.com/threadhouse/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderRequest 管理端订单更新请求
type UpdateOrderRequest struct {
	Status         *string `json:"status"`
	PaymentStatus  *string `json:"payment_status"`
	TrackingNumber *string `json:"tracking_number"`
	Notes          *string `json:"notes"`
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		response.Error(c, response.CodeBadRequest, response.ErrCodeValidation, "invalid created_from")
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		response.Error(c, response.CodeBadRequest, response.ErrCodeValidation, "invalid created_to")
		return
	}

	orders, total, err := h.OrderService.AdminList(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		PaymentMethod: strings.TrimSpace(c.Query("payment_method")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
		Email:         strings.TrimSpace(c.Query("email")),
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// AdminGetOrder 管理端订单详情，附带全部支付尝试
func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := shared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.AdminGet(id)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	payments, err := h.PaymentService.ListAttempts(order.ID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	order.Payments = payments
	response.Success(c, order)
}

// AdminUpdateOrder 管理端更新订单状态、支付状态、物流单号与备注
func (h *Handler) AdminUpdateOrder(c *gin.Context) {
	id, ok := shared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	order, err := h.OrderService.AdminUpdate(c.Request.Context(), id, service.AdminUpdateOrderInput{
		Status:         req.Status,
		PaymentStatus:  req.PaymentStatus,
		TrackingNumber: req.TrackingNumber,
		Notes:          req.Notes,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("admin_order_updated",
		"admin", adminSubject(c),
		"order_id", id,
		"status", order.Status,
		"payment_status", order.PaymentStatus,
	)
	response.Success(c, order)
}
