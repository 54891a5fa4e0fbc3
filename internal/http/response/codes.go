package response

// 业务状态码，与 HTTP 语义对齐
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodePaymentRequired = 402
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// 机器可读错误码（data.error）
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeValidation      = "validation_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeNotFound        = "not_found"
	ErrCodeStockConflict   = "stock_conflict"
	ErrCodeInvalidState    = "invalid_transition"
	ErrCodePaymentFailed   = "payment_failed"
	ErrCodePaymentRejected = "payment_not_allowed"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeInternal        = "internal_error"
)
