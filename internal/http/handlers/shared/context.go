package shared

import (
	"strconv"
	"strings"

	"github.com/threadhouse/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartSessionContextKey 购物车会话在 gin 上下文中的键
const CartSessionContextKey = "cart_session_id"

// CartSessionID 读取中间件解析出的购物车会话
func CartSessionID(c *gin.Context) string {
	value, ok := c.Get(CartSessionContextKey)
	if !ok {
		return ""
	}
	id, _ := value.(string)
	return id
}

// ParseIDParam 解析路径中的数字 ID，非法时直接写出 400
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Error(c, response.CodeBadRequest, response.ErrCodeValidation, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
