// Package payment 外部支付网关能力：发起支付、确认支付结果。
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/threadhouse/internal/config"
	"github.com/threadhouse/internal/constants"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("payment gateway config invalid")
	ErrRequestFailed    = errors.New("payment gateway request failed")
	ErrResponseInvalid  = errors.New("payment gateway response invalid")
	ErrPaymentDeclined  = errors.New("payment declined")
	ErrPaymentUnmatched = errors.New("payment transaction does not match order")
)

// PaymentRequest 发起支付请求
type PaymentRequest struct {
	OrderNo   string
	Amount    decimal.Decimal
	Currency  string
	ReturnURL string
}

// PaymentResult 网关受理结果
type PaymentResult struct {
	ProviderRef string // 网关侧流水号
	PayURL      string // 收银台地址
}

// Gateway 支付网关能力；签名与协议细节由实现方负责
type Gateway interface {
	Name() string
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	VerifyPayment(ctx context.Context, orderNo, transactionID string) error
}

// NewGateway 按配置创建网关
// 未配置时按 http 处理；沙箱网关确认任意交易号，仅允许在 debug 模式下启用。
func NewGateway(cfg config.PaymentConfig, serverMode string) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case constants.PaymentProviderSandbox:
		if !strings.EqualFold(strings.TrimSpace(serverMode), "debug") {
			return nil, fmt.Errorf("%w: sandbox provider is only allowed in debug mode", ErrConfigInvalid)
		}
		return NewSandboxGateway(), nil
	case "", constants.PaymentProviderHTTP:
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		return NewHTTPGateway(HTTPConfig{
			GatewayURL: cfg.GatewayURL,
			APIKey:     cfg.APIKey,
			Timeout:    timeout,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrConfigInvalid, cfg.Provider)
	}
}
