package admin

import (
	"strings"

	"github.com/threadhouse/internal/http/handlers/shared"
	"github.com/threadhouse/internal/http/response"
	"github.com/threadhouse/internal/repository"
	"github.com/threadhouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UpdateRequestRequest 管理端询价/定制需求更新请求
type UpdateRequestRequest struct {
	Status         *string          `json:"status"`
	Priority       *string          `json:"priority"`
	EstimatedPrice *decimal.Decimal `json:"estimated_price"`
	AdminNotes     *string          `json:"admin_notes"`
	SendEmail      bool             `json:"send_email"`
}

func (r UpdateRequestRequest) toInput() service.RequestAdminUpdateInput {
	return service.RequestAdminUpdateInput{
		Status:         r.Status,
		Priority:       r.Priority,
		EstimatedPrice: r.EstimatedPrice,
		AdminNotes:     r.AdminNotes,
		SendEmail:      r.SendEmail,
	}
}

func requestListFilter(c *gin.Context) repository.RequestListFilter {
	page, pageSize := shared.QueryPagination(c)
	return repository.RequestListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Priority: strings.TrimSpace(c.Query("priority")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	}
}

// ListBulkOrders 批量询价列表
func (h *Handler) ListBulkOrders(c *gin.Context) {
	filter := requestListFilter(c)
	items, total, err := h.RequestService.ListBulk(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// GetBulkOrder 批量询价详情
func (h *Handler) GetBulkOrder(c *gin.Context) {
	id, ok := shared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.RequestService.GetBulk(id)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateBulkOrder 更新批量询价
func (h *Handler) UpdateBulkOrder(c *gin.Context) {
	id, ok := shared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	item, err := h.RequestService.UpdateBulk(c.Request.Context(), id, req.toInput())
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("admin_bulk_request_updated", "admin", adminSubject(c), "request_id", id, "status", item.Status)
	response.Success(c, item)
}

// ListCustomDesigns 定制需求列表
func (h *Handler) ListCustomDesigns(c *gin.Context) {
	filter := requestListFilter(c)
	items, total, err := h.RequestService.ListCustom(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// GetCustomDesign 定制需求详情
func (h *Handler) GetCustomDesign(c *gin.Context) {
	id, ok := shared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.RequestService.GetCustom(id)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateCustomDesign 更新定制需求
func (h *Handler) UpdateCustomDesign(c *gin.Context) {
	id, ok := shared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	item, err := h.RequestService.UpdateCustom(c.Request.Context(), id, req.toInput())
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RequestLog(c).Infow("admin_custom_request_updated", "admin", adminSubject(c), "request_id", id, "status", item.Status)
	response.Success(c, item)
}
