package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/threadhouse/internal/constants"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/models"
	"github.com/threadhouse/internal/queue"
	"github.com/threadhouse/internal/repository"

	"github.com/shopspring/decimal"
)

var bulkStatuses = map[string]bool{
	constants.BulkStatusPending:    true,
	constants.BulkStatusContacted:  true,
	constants.BulkStatusProcessing: true,
	constants.BulkStatusConfirmed:  true,
	constants.BulkStatusCompleted:  true,
	constants.BulkStatusCancelled:  true,
}

var customStatuses = map[string]bool{
	constants.CustomStatusPending:    true,
	constants.CustomStatusContacted:  true,
	constants.CustomStatusInProgress: true,
	constants.CustomStatusCompleted:  true,
	constants.CustomStatusCancelled:  true,
}

// 请求流转：pending → contacted → 处理中 → 终态；终态（confirmed/completed/cancelled）不可再变更
var allowedBulkTransitions = map[string]map[string]bool{
	constants.BulkStatusPending: {
		constants.BulkStatusContacted: true,
		constants.BulkStatusCancelled: true,
	},
	constants.BulkStatusContacted: {
		constants.BulkStatusProcessing: true,
		constants.BulkStatusConfirmed:  true,
		constants.BulkStatusCancelled:  true,
	},
	constants.BulkStatusProcessing: {
		constants.BulkStatusContacted: true,
		constants.BulkStatusConfirmed: true,
		constants.BulkStatusCompleted: true,
		constants.BulkStatusCancelled: true,
	},
}

var allowedCustomTransitions = map[string]map[string]bool{
	constants.CustomStatusPending: {
		constants.CustomStatusContacted: true,
		constants.CustomStatusCancelled: true,
	},
	constants.CustomStatusContacted: {
		constants.CustomStatusInProgress: true,
		constants.CustomStatusCancelled:  true,
	},
	constants.CustomStatusInProgress: {
		constants.CustomStatusContacted: true,
		constants.CustomStatusCompleted: true,
		constants.CustomStatusCancelled: true,
	},
}

var priorities = map[string]bool{
	constants.PriorityLow:    true,
	constants.PriorityNormal: true,
	constants.PriorityHigh:   true,
	constants.PriorityUrgent: true,
}

// RequestService 批量采购与定制设计请求服务
type RequestService struct {
	bulkRepo   repository.BulkRequestRepository
	customRepo repository.CustomRequestRepository
	queue      NotificationQueue
	now        func() time.Time
}

// NewRequestService 创建请求服务
func NewRequestService(bulkRepo repository.BulkRequestRepository, customRepo repository.CustomRequestRepository, q NotificationQueue, now func() time.Time) *RequestService {
	if now == nil {
		now = time.Now
	}
	return &RequestService{bulkRepo: bulkRepo, customRepo: customRepo, queue: q, now: now}
}

// BulkRequestInput 批量采购表单
type BulkRequestInput struct {
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	ProductType string
	Quantity    int
	Description string
	TargetDate  *time.Time
}

// CustomRequestInput 定制设计表单
type CustomRequestInput struct {
	Name            string
	Email           string
	Phone           string
	GarmentType     string
	Description     string
	Measurements    map[string]interface{}
	ReferenceImages []string
	Budget          *decimal.Decimal
}

// RequestAdminUpdateInput 管理端更新（字段均可选），SendEmail 控制是否通知顾客
type RequestAdminUpdateInput struct {
	Status         *string
	Priority       *string
	EstimatedPrice *decimal.Decimal
	AdminNotes     *string
	SendEmail      bool
}

func requireFields(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return newValidationError(f[0], "required")
		}
	}
	return nil
}

// CreateBulk 提交批量采购请求
func (s *RequestService) CreateBulk(input BulkRequestInput) (*models.BulkOrderRequest, error) {
	if err := requireFields(
		[2]string{"company_name", input.CompanyName},
		[2]string{"contact_name", input.ContactName},
		[2]string{"email", input.Email},
		[2]string{"phone", input.Phone},
		[2]string{"product_type", input.ProductType},
	); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, newValidationError("quantity", "must be positive")
	}
	now := s.now()
	req := &models.BulkOrderRequest{
		RequestNo:   generateSerialNo(constants.BulkRequestNoPrefix, now),
		CompanyName: strings.TrimSpace(input.CompanyName),
		ContactName: strings.TrimSpace(input.ContactName),
		Email:       email,
		Phone:       strings.TrimSpace(input.Phone),
		ProductType: strings.TrimSpace(input.ProductType),
		Quantity:    input.Quantity,
		Description: strings.TrimSpace(input.Description),
		TargetDate:  input.TargetDate,
		Status:      constants.BulkStatusPending,
		Priority:    constants.PriorityNormal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.bulkRepo.Create(req); err != nil {
		return nil, err
	}
	logger.Infow("bulk_request_created", "request_id", req.ID, "request_no", req.RequestNo)
	return req, nil
}

// CreateCustom 提交定制设计请求
func (s *RequestService) CreateCustom(input CustomRequestInput) (*models.CustomDesignRequest, error) {
	if err := requireFields(
		[2]string{"name", input.Name},
		[2]string{"email", input.Email},
		[2]string{"phone", input.Phone},
		[2]string{"garment_type", input.GarmentType},
	); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if input.Budget != nil && input.Budget.IsNegative() {
		return nil, newValidationError("budget", "must not be negative")
	}
	images := make(models.StringArray, 0, len(input.ReferenceImages))
	for _, image := range input.ReferenceImages {
		if trimmed := strings.TrimSpace(image); trimmed != "" {
			images = append(images, trimmed)
		}
	}
	now := s.now()
	req := &models.CustomDesignRequest{
		RequestNo:       generateSerialNo(constants.CustomRequestNoPrefix, now),
		Name:            strings.TrimSpace(input.Name),
		Email:           email,
		Phone:           strings.TrimSpace(input.Phone),
		GarmentType:     strings.TrimSpace(input.GarmentType),
		Description:     strings.TrimSpace(input.Description),
		Measurements:    models.JSON(input.Measurements),
		ReferenceImages: images,
		Status:          constants.CustomStatusPending,
		Priority:        constants.PriorityNormal,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.Budget != nil {
		req.Budget = models.MoneyPtr(*input.Budget)
	}
	if err := s.customRepo.Create(req); err != nil {
		return nil, err
	}
	logger.Infow("custom_request_created", "request_id", req.ID, "request_no", req.RequestNo)
	return req, nil
}

// ListBulk 管理端批量请求列表
func (s *RequestService) ListBulk(filter repository.RequestListFilter) ([]models.BulkOrderRequest, int64, error) {
	return s.bulkRepo.List(filter)
}

// ListCustom 管理端定制请求列表
func (s *RequestService) ListCustom(filter repository.RequestListFilter) ([]models.CustomDesignRequest, int64, error) {
	return s.customRepo.List(filter)
}

// GetBulk 批量请求详情
func (s *RequestService) GetBulk(id uint) (*models.BulkOrderRequest, error) {
	req, err := s.bulkRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// GetCustom 定制请求详情
func (s *RequestService) GetCustom(id uint) (*models.CustomDesignRequest, error) {
	req, err := s.customRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// buildRequestUpdates 校验并生成更新字段；状态相同视为未变更
func buildRequestUpdates(input RequestAdminUpdateInput, current string, statuses map[string]bool, transitions map[string]map[string]bool, now time.Time) (map[string]interface{}, error) {
	updates := map[string]interface{}{"updated_at": now}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !statuses[status] {
			return nil, newValidationError("status", "invalid request status")
		}
		if status != current {
			if !transitions[current][status] {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
			}
			updates["status"] = status
		}
	}
	if input.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*input.Priority))
		if !priorities[priority] {
			return nil, newValidationError("priority", "invalid priority")
		}
		updates["priority"] = priority
	}
	if input.EstimatedPrice != nil {
		if input.EstimatedPrice.IsNegative() {
			return nil, newValidationError("estimated_price", "must not be negative")
		}
		updates["estimated_price"] = models.NewMoneyFromDecimal(*input.EstimatedPrice)
	}
	if input.AdminNotes != nil {
		updates["admin_notes"] = strings.TrimSpace(*input.AdminNotes)
	}
	return updates, nil
}

// UpdateBulk 管理端更新批量请求
func (s *RequestService) UpdateBulk(ctx context.Context, id uint, input RequestAdminUpdateInput) (*models.BulkOrderRequest, error) {
	current, err := s.GetBulk(id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	updates, err := buildRequestUpdates(input, current.Status, bulkStatuses, allowedBulkTransitions, now)
	if err != nil {
		return nil, err
	}
	if err := s.bulkRepo.Update(id, updates); err != nil {
		logger.Errorw("bulk_request_update_failed", "request_id", id, "error", err)
		return nil, ErrRequestUpdateFailed
	}
	updated, err := s.GetBulk(id)
	if err != nil {
		return nil, err
	}
	if input.SendEmail {
		s.notifyRequest(ctx, queue.RequestStatusEmailPayload{
			Kind:           constants.RequestKindBulk,
			RequestNo:      updated.RequestNo,
			CustomerEmail:  updated.Email,
			CustomerName:   updated.ContactName,
			Status:         updated.Status,
			EstimatedPrice: moneyText(updated.EstimatedPrice),
			AdminNotes:     updated.AdminNotes,
		})
	}
	return updated, nil
}

// UpdateCustom 管理端更新定制请求
func (s *RequestService) UpdateCustom(ctx context.Context, id uint, input RequestAdminUpdateInput) (*models.CustomDesignRequest, error) {
	current, err := s.GetCustom(id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	updates, err := buildRequestUpdates(input, current.Status, customStatuses, allowedCustomTransitions, now)
	if err != nil {
		return nil, err
	}
	if err := s.customRepo.Update(id, updates); err != nil {
		logger.Errorw("custom_request_update_failed", "request_id", id, "error", err)
		return nil, ErrRequestUpdateFailed
	}
	updated, err := s.GetCustom(id)
	if err != nil {
		return nil, err
	}
	if input.SendEmail {
		s.notifyRequest(ctx, queue.RequestStatusEmailPayload{
			Kind:           constants.RequestKindCustom,
			RequestNo:      updated.RequestNo,
			CustomerEmail:  updated.Email,
			CustomerName:   updated.Name,
			Status:         updated.Status,
			EstimatedPrice: moneyText(updated.EstimatedPrice),
			AdminNotes:     updated.AdminNotes,
		})
	}
	return updated, nil
}

// notifyRequest 更新已提交后投递通知，失败只记录日志
func (s *RequestService) notifyRequest(ctx context.Context, payload queue.RequestStatusEmailPayload) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueRequestStatusEmail(ctx, payload); err != nil {
		nerr := &NotificationError{Target: payload.RequestNo, Status: payload.Status, Err: err}
		logger.Warnw("request_enqueue_status_email_failed",
			"kind", payload.Kind,
			"request_no", payload.RequestNo,
			"status", payload.Status,
			"error", nerr,
		)
	}
}

func moneyText(m *models.Money) string {
	if m == nil {
		return ""
	}
	return m.String()
}
