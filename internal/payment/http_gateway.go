package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/threadhouse/internal/constants"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPConfig JSON REST 网关配置
type HTTPConfig struct {
	GatewayURL string
	APIKey     string
	Timeout    time.Duration
}

// HTTPGateway 通过 JSON REST 接口对接的支付网关
type HTTPGateway struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPGateway 创建 HTTP 网关
func NewHTTPGateway(cfg HTTPConfig) (*HTTPGateway, error) {
	cfg.GatewayURL = strings.TrimRight(strings.TrimSpace(cfg.GatewayURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("%w: gateway_url is required", ErrConfigInvalid)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api_key is required", ErrConfigInvalid)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	return &HTTPGateway{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// Name 网关名称
func (g *HTTPGateway) Name() string {
	return constants.PaymentProviderHTTP
}

type gatewayEnvelope struct {
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// InitiatePayment 创建网关支付单
func (g *HTTPGateway) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if strings.TrimSpace(req.OrderNo) == "" || !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: order_no and positive amount required", ErrConfigInvalid)
	}
	params := map[string]interface{}{
		"order_no":   req.OrderNo,
		"amount":     req.Amount.StringFixed(2),
		"currency":   req.Currency,
		"return_url": req.ReturnURL,
	}
	var data struct {
		PaymentID  string `json:"payment_id"`
		PaymentURL string `json:"payment_url"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/v1/payments", params, &data); err != nil {
		return nil, err
	}
	if data.PaymentID == "" {
		return nil, fmt.Errorf("%w: missing payment_id", ErrResponseInvalid)
	}
	return &PaymentResult{ProviderRef: data.PaymentID, PayURL: data.PaymentURL}, nil
}

// VerifyPayment 向网关确认交易已成功且属于该订单
func (g *HTTPGateway) VerifyPayment(ctx context.Context, orderNo, transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return fmt.Errorf("%w: transaction_id is required", ErrConfigInvalid)
	}
	var data struct {
		OrderNo string `json:"order_no"`
		Status  string `json:"status"`
	}
	path := "/api/v1/transactions/" + url.PathEscape(transactionID)
	if err := g.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return err
	}
	if data.OrderNo != orderNo {
		return ErrPaymentUnmatched
	}
	if !strings.EqualFold(data.Status, "succeeded") {
		return fmt.Errorf("%w: status %s", ErrPaymentDeclined, data.Status)
	}
	return nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, params map[string]interface{}, out interface{}) error {
	var body io.Reader
	if params != nil {
		payload, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.cfg.GatewayURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}

	var envelope gatewayEnvelope
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.StatusCode == http.StatusPaymentRequired || envelope.StatusCode == http.StatusPaymentRequired {
		return fmt.Errorf("%w: %s", ErrPaymentDeclined, envelope.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest || envelope.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrResponseInvalid, envelope.Message)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return nil
}
