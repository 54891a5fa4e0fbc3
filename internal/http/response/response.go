package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	StatusCode int         `json:"status_code"` // 业务状态码
	Msg        string      `json:"msg"`         // 提示消息
	Data       interface{} `json:"data"`        // 数据内容
}

// PageResponse 分页响应结构
type PageResponse struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// NewPagination 计算总页数
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPage: totalPage}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: CodeOK,
		Msg:        "success",
		Data:       data,
	})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		StatusCode: CodeOK,
		Msg:        "success",
		Data:       data,
		Pagination: pagination,
	})
}

// Fail 错误响应：data 携带 error、details 与 request_id
func Fail(c *gin.Context, appErr *AppError) {
	data := gin.H{"error": appErr.ErrCode}
	if appErr.Details != nil {
		data["details"] = appErr.Details
	}
	c.JSON(http.StatusOK, Response{
		StatusCode: appErr.Code,
		Msg:        appErr.Message,
		Data:       attachRequestID(c, data),
	})
}

// Error 错误响应
func Error(c *gin.Context, statusCode int, errCode, msg string) {
	Fail(c, &AppError{Code: statusCode, ErrCode: errCode, Message: msg})
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, ErrCodeNotFound, msg)
}

// Unauthorized 401响应
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, ErrCodeUnauthorized, msg)
}

// BadRequest 400响应
func BadRequest(c *gin.Context, msg string) {
	Error(c, CodeBadRequest, ErrCodeBadRequest, msg)
}

func attachRequestID(c *gin.Context, data gin.H) gin.H {
	if c == nil {
		return data
	}
	value, ok := c.Get("request_id")
	if !ok {
		return data
	}
	if id, ok := value.(string); ok && id != "" {
		if _, exists := data["request_id"]; !exists {
			data["request_id"] = id
		}
	}
	return data
}
