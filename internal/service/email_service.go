package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/threadhouse/internal/config"
	"github.com/threadhouse/internal/constants"
	"github.com/threadhouse/internal/queue"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 是否已启用邮件发送
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(payload queue.OrderStatusEmailPayload) error {
	subject, body := buildOrderStatusContent(payload)
	return s.sendTextEmail(payload.CustomerEmail, subject, body)
}

// SendRequestStatusEmail 发送批量/定制请求状态通知
func (s *EmailService) SendRequestStatusEmail(payload queue.RequestStatusEmailPayload) error {
	subject, body := buildRequestStatusContent(payload)
	return s.sendTextEmail(payload.CustomerEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if !s.Enabled() {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailDial(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg), s.cfg.UseTLS))
}

var orderStatusLabels = map[string]string{
	constants.OrderStatusPending:    "Pending",
	constants.OrderStatusConfirmed:  "Confirmed",
	constants.OrderStatusProcessing: "Processing",
	constants.OrderStatusShipped:    "Shipped",
	constants.OrderStatusDelivered:  "Delivered",
	constants.OrderStatusCancelled:  "Cancelled",
	constants.OrderStatusReturned:   "Returned",
}

func statusLabel(status string) string {
	if label, ok := orderStatusLabels[status]; ok {
		return label
	}
	label := strings.ReplaceAll(strings.TrimSpace(status), "_", " ")
	if label == "" {
		return status
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func buildOrderStatusContent(p queue.OrderStatusEmailPayload) (string, string) {
	label := statusLabel(p.Status)
	subject := fmt.Sprintf("Order %s: %s", p.OrderNo, label)

	var b strings.Builder
	name := strings.TrimSpace(p.CustomerName)
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	switch p.Status {
	case constants.OrderStatusProcessing:
		b.WriteString("Your order is being prepared.\n")
	case constants.OrderStatusShipped:
		b.WriteString("Your order is on its way.\n")
	case constants.OrderStatusDelivered:
		b.WriteString("Your order has been delivered. We hope you love it.\n")
	case constants.OrderStatusCancelled:
		b.WriteString("Your order has been cancelled.\n")
	default:
		fmt.Fprintf(&b, "Your order status is now %s.\n", label)
	}
	fmt.Fprintf(&b, "\nOrder No: %s\nStatus: %s\n", p.OrderNo, label)
	if p.TrackingNumber != "" {
		fmt.Fprintf(&b, "Tracking Number: %s\n", p.TrackingNumber)
	}
	if p.Status != constants.OrderStatusCancelled && p.EstimatedDelivery != "" {
		fmt.Fprintf(&b, "Estimated Delivery: %s\n", p.EstimatedDelivery)
	}
	return subject, b.String()
}

func buildRequestStatusContent(p queue.RequestStatusEmailPayload) (string, string) {
	kind := "Custom design request"
	if p.Kind == constants.RequestKindBulk {
		kind = "Bulk order request"
	}
	label := statusLabel(p.Status)
	subject := fmt.Sprintf("%s %s: %s", kind, p.RequestNo, label)

	var b strings.Builder
	name := strings.TrimSpace(p.CustomerName)
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\nYour %s has been updated.\n\n", name, strings.ToLower(kind))
	fmt.Fprintf(&b, "Request No: %s\nStatus: %s\n", p.RequestNo, label)
	if p.EstimatedPrice != "" {
		fmt.Fprintf(&b, "Estimated Price: %s\n", p.EstimatedPrice)
	}
	if notes := strings.TrimSpace(p.AdminNotes); notes != "" {
		fmt.Fprintf(&b, "\n%s\n", notes)
	}
	return subject, b.String()
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()
	return authAndSend(client, auth, from, to, msg)
}

// sendMailDial 明文连接，startTLS 为 true 时升级为 STARTTLS
func sendMailDial(addr string, auth smtp.Auth, host, from string, to []string, msg []byte, startTLS bool) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if startTLS {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	return authAndSend(client, auth, from, to, msg)
}

func authAndSend(client *smtp.Client, auth smtp.Auth, from string, to []string, msg []byte) error {
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return err
}

// isEmailRecipientRejected 收件人被拒属于永久失败，不应重试
func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
