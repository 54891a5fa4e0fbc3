package public

import (
	"strings"

	"github.com/threadhouse/internal/cart"
	"github.com/threadhouse/internal/http/handlers/shared"
	"github.com/threadhouse/internal/http/response"
	"github.com/threadhouse/internal/service"

	"github.com/gin-gonic/gin"
)

// CartLineRequest 购物车行项标识（商品 + 完整规格组合）
type CartLineRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	Size       string `json:"size"`
	Color      string `json:"color"`
	SleeveType string `json:"sleeve_type"`
	Fit        string `json:"fit"`
}

func (r CartLineRequest) key() cart.LineKey {
	return cart.LineKey{
		ProductID:  r.ProductID,
		Size:       strings.TrimSpace(r.Size),
		Color:      strings.TrimSpace(r.Color),
		SleeveType: strings.TrimSpace(r.SleeveType),
		Fit:        strings.TrimSpace(r.Fit),
	}
}

// CartItemRequest 加入或修改购物车请求
type CartItemRequest struct {
	CartLineRequest
	Quantity int `json:"quantity"`
}

// GetCart 获取购物车与实时金额
func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.CartService.Get(shared.CartSessionID(c))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车，数量按库存截断
func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	key := req.key()
	view, err := h.CartService.AddItem(service.AddCartItemInput{
		SessionID:  shared.CartSessionID(c),
		ProductID:  key.ProductID,
		Size:       key.Size,
		Color:      key.Color,
		SleeveType: key.SleeveType,
		Fit:        key.Fit,
		Quantity:   req.Quantity,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改行项数量，<=0 删除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	view, err := h.CartService.UpdateQuantity(service.UpdateCartItemInput{
		SessionID: shared.CartSessionID(c),
		Key:       req.key(),
		Quantity:  req.Quantity,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveCartItem 删除行项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BindError(c, err)
		return
	}
	view, err := h.CartService.RemoveItem(shared.CartSessionID(c), req.key())
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sessionID := shared.CartSessionID(c)
	if err := h.CartService.Clear(sessionID); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
