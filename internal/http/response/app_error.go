package response

// AppError 统一错误包装，Details 会原样放入 data.details
type AppError struct {
	Code    int
	ErrCode string
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, errCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		ErrCode: errCode,
		Message: message,
		Err:     err,
	}
}

// WithDetails 附加错误详情
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}
