package public

import (
	"strings"
	"time"

	"github.com/threadhouse/internal/http/handlers/shared"
	"github.com/threadhouse/internal/http/response"
	"github.com/threadhouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BulkOrderRequest 批量订购询价表单
type BulkOrderRequest struct {
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ProductType string `json:"product_type"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	TargetDate  string `json:"target_date"`
}

// CustomDesignRequest 定制设计表单
type CustomDesignRequest struct {
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Phone           string                 `json:"phone"`
	GarmentType     string                 `json:"garment_type"`
	Description     string                 `json:"description"`
	Measurements    map[string]interface{} `json:"measurements"`
	ReferenceImages []string               `json:"reference_images"`
	Budget          *decimal.Decimal       `json:"budget"`
}

// SubmitBulkOrder 提交批量订购询价
func (h *Handler) SubmitBulkOrder(c *gin.Context) {
	var req BulkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	targetDate, err := parseDateNullable(req.TargetDate)
	if err != nil {
		response.Error(c, response.CodeBadRequest, response.ErrCodeValidation, "invalid target_date")
		return
	}
	created, err := h.RequestService.CreateBulk(service.BulkRequestInput{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		ProductType: req.ProductType,
		Quantity:    req.Quantity,
		Description: req.Description,
		TargetDate:  targetDate,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, created)
}

// SubmitCustomDesign 提交定制设计需求
func (h *Handler) SubmitCustomDesign(c *gin.Context) {
	var req CustomDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	created, err := h.RequestService.CreateCustom(service.CustomRequestInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		GarmentType:     req.GarmentType,
		Description:     req.Description,
		Measurements:    req.Measurements,
		ReferenceImages: req.ReferenceImages,
		Budget:          req.Budget,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, created)
}

// parseDateNullable 支持 RFC3339 与 YYYY-MM-DD，空值返回 nil
func parseDateNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
