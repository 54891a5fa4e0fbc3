package public

import (
	"strconv"
	"strings"

	"github.com/threadhouse/internal/http/handlers/shared"
	"github.com/threadhouse/internal/http/response"
	"github.com/threadhouse/internal/service"
	"github.com/threadhouse/internal/variant"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := shared.QueryPagination(c)
	input := service.ProductListInput{
		Page:         page,
		PageSize:     pageSize,
		CategorySlug: strings.TrimSpace(c.Query("category")),
		Search:       strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("in_stock")); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			shared.BindError(c, err)
			return
		}
		input.InStock = &inStock
	}
	products, total, err := h.CatalogService.ListProducts(input)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CatalogService.ListCategories()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, categories)
}

// GetProduct 商品详情（含全部规格组合）
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.CatalogService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// VariantOptions 应用一次规格选择，返回各维度可选项、级联重置与解析出的变体
func (h *Handler) VariantOptions(c *gin.Context) {
	selection := variant.Selection{}
	for _, dim := range variant.Hierarchy {
		if value := strings.TrimSpace(c.Query(string(dim))); value != "" {
			selection[dim] = value
		}
	}
	input := service.VariantOptionsInput{
		Slug:      c.Param("slug"),
		Selection: selection,
	}
	if raw := strings.TrimSpace(c.Query("changed")); raw != "" {
		dim, ok := variant.ParseDimension(raw)
		if !ok {
			response.Error(c, response.CodeBadRequest, response.ErrCodeValidation, "unknown dimension: "+raw)
			return
		}
		input.Changed = dim
	}
	view, err := h.CatalogService.VariantOptions(c.Request.Context(), input)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}
