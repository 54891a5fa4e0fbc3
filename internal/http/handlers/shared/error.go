package shared

import (
	"errors"

	"github.com/threadhouse/internal/http/response"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if c.Request != nil {
		if id := logger.RequestIDFromContext(c.Request.Context()); id != "" {
			return logger.SW("request_id", id)
		}
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil && appErr.Code >= response.CodeInternal {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"error_code", appErr.ErrCode,
			"message", appErr.Message,
			"error", appErr.Err,
		)
	}
	response.Fail(c, appErr)
}

// BindError 请求体或参数解析失败
func BindError(c *gin.Context, err error) {
	RequestLog(c).Debugw("handler_bind_failed", "path", c.FullPath(), "error", err)
	response.Error(c, response.CodeBadRequest, response.ErrCodeBadRequest, "invalid request payload")
}

// RespondServiceError 将业务错误映射为统一响应。
func RespondServiceError(c *gin.Context, err error) {
	RespondError(c, MapServiceError(err))
}

// MapServiceError 按错误类型映射状态码、错误码与详情。
func MapServiceError(err error) *response.AppError {
	var validationErr *service.ValidationError
	var conflictErr *service.StockConflictError
	var paymentErr *service.PaymentError

	switch {
	case errors.As(err, &validationErr):
		return response.WrapError(response.CodeBadRequest, response.ErrCodeValidation, validationErr.Error(), nil).
			WithDetails(validationErr)
	case errors.As(err, &conflictErr):
		return response.WrapError(response.CodeConflict, response.ErrCodeStockConflict,
			"some items are no longer available in the requested quantity", nil).
			WithDetails(gin.H{"items": conflictErr.Items})
	case errors.As(err, &paymentErr):
		return response.WrapError(response.CodePaymentRequired, response.ErrCodePaymentFailed, "payment failed", nil).
			WithDetails(gin.H{"order_no": paymentErr.OrderNo, "reason": paymentErr.Reason})
	case errors.Is(err, service.ErrCartEmpty):
		return response.WrapError(response.CodeBadRequest, response.ErrCodeValidation, "cart is empty", nil).
			WithDetails(gin.H{"field": "cart", "reason": "empty"})
	case errors.Is(err, service.ErrCartSessionRequired):
		return response.WrapError(response.CodeBadRequest, response.ErrCodeBadRequest, "cart session is required", nil)
	case errors.Is(err, service.ErrInvalidTransition):
		return response.WrapError(response.CodeConflict, response.ErrCodeInvalidState, err.Error(), nil)
	case errors.Is(err, service.ErrPaymentNotAllowed):
		return response.WrapError(response.CodeConflict, response.ErrCodePaymentRejected, "order cannot be paid in its current state", nil)
	case errors.Is(err, service.ErrProductNotFound):
		return response.WrapError(response.CodeNotFound, response.ErrCodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrVariantNotFound):
		return response.WrapError(response.CodeNotFound, response.ErrCodeNotFound, "variant not found", nil)
	case errors.Is(err, service.ErrCartItemNotFound):
		return response.WrapError(response.CodeNotFound, response.ErrCodeNotFound, "cart item not found", nil)
	case errors.Is(err, service.ErrOrderNotFound):
		return response.WrapError(response.CodeNotFound, response.ErrCodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrPaymentNotFound):
		return response.WrapError(response.CodeNotFound, response.ErrCodeNotFound, "payment not found", nil)
	case errors.Is(err, service.ErrRequestNotFound):
		return response.WrapError(response.CodeNotFound, response.ErrCodeNotFound, "request not found", nil)
	default:
		return response.WrapError(response.CodeInternal, response.ErrCodeInternal, "internal server error", err)
	}
}
