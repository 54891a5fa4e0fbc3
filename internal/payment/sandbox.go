package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/threadhouse/internal/constants"

	"github.com/google/uuid"
)

// SandboxGateway 开发与测试用网关：受理所有支付，按交易号前缀模拟拒付
type SandboxGateway struct {
	mu       sync.Mutex
	declined map[string]bool
}

// NewSandboxGateway 创建沙箱网关
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{declined: make(map[string]bool)}
}

// Name 网关名称
func (g *SandboxGateway) Name() string {
	return constants.PaymentProviderSandbox
}

// Decline 标记某订单的后续确认失败
func (g *SandboxGateway) Decline(orderNo string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.declined[orderNo] = true
}

// InitiatePayment 生成沙箱流水号
func (g *SandboxGateway) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if strings.TrimSpace(req.OrderNo) == "" || !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: order_no and positive amount required", ErrConfigInvalid)
	}
	ref := "sbx_" + uuid.NewString()
	return &PaymentResult{
		ProviderRef: ref,
		PayURL:      fmt.Sprintf("/sandbox/pay/%s?ref=%s", req.OrderNo, ref),
	}, nil
}

// VerifyPayment 交易号以 fail_ 开头或订单被标记拒付时返回拒付
func (g *SandboxGateway) VerifyPayment(ctx context.Context, orderNo, transactionID string) error {
	g.mu.Lock()
	declined := g.declined[orderNo]
	g.mu.Unlock()
	if declined || strings.HasPrefix(transactionID, "fail_") {
		return ErrPaymentDeclined
	}
	return nil
}
