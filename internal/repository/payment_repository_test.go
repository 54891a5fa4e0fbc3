package repository

import (
	"context"
	"testing"
	"time"

	"github.com/threadhouse/internal/constants"
	"github.com/threadhouse/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// errorRecorder 记录每条 SQL 的返回错误
type errorRecorder struct {
	gormlogger.Interface
	errs []error
}

func (r *errorRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }

func (r *errorRecorder) Trace(_ context.Context, _ time.Time, _ func() (string, int64), err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

func TestPaymentRepositoryLatestWithoutAttemptIsQuiet(t *testing.T) {
	db := openTestDB(t)
	recorder := &errorRecorder{Interface: gormlogger.Discard}
	repo := NewPaymentRepository(db.Session(&gorm.Session{Logger: recorder}))

	latest, err := repo.GetLatestByOrder(42)
	if err != nil || latest != nil {
		t.Fatalf("expected no attempt, got %+v err=%v", latest, err)
	}
	if len(recorder.errs) != 0 {
		t.Fatalf("missing attempt must not surface as a query error, got %v", recorder.errs)
	}
}

func TestPaymentRepositoryLatestAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewPaymentRepository(db)
	amount := models.NewMoneyFromDecimal(decimal.NewFromInt(689))
	for _, status := range []string{constants.PaymentStatusFailed, constants.PaymentStatusInitiated} {
		if err := repo.Create(&models.Payment{OrderID: 7, ProviderType: "sandbox", Amount: amount, Currency: "INR", Status: status}); err != nil {
			t.Fatalf("create payment failed: %v", err)
		}
	}
	if err := repo.Create(&models.Payment{OrderID: 8, ProviderType: "sandbox", Amount: amount, Currency: "INR", Status: constants.PaymentStatusInitiated}); err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	latest, err := repo.GetLatestByOrder(7)
	if err != nil || latest == nil || latest.Status != constants.PaymentStatusInitiated {
		t.Fatalf("expected latest initiated attempt, got %+v err=%v", latest, err)
	}
	attempts, err := repo.ListByOrderID(7)
	if err != nil || len(attempts) != 2 {
		t.Fatalf("expected two attempts, got %d err=%v", len(attempts), err)
	}
	if attempts[0].Status != constants.PaymentStatusFailed {
		t.Fatalf("attempts must be listed oldest first, got %s", attempts[0].Status)
	}
}
