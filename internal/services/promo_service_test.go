package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"storefront-system/internal/apperror"
	"storefront-system/internal/models"
)

var promoCols = []string{
	"id", "code", "discount_type", "discount_value", "min_purchase", "max_discount",
	"usage_limit", "usage_count", "start_date", "end_date", "enabled", "created_at", "updated_at",
}

func promoRow(code string, discountType models.DiscountType, value string, maxDiscount interface{}, usageLimit interface{}, usageCount int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(promoCols).
		AddRow(int64(1), code, discountType, value, nil, maxDiscount, usageLimit, usageCount, nil, nil, true, now, now)
}

func TestCalculateDiscount_PercentageCappedByMaxDiscount(t *testing.T) {
	maxDiscount := decimal.NewFromInt(5000)
	promo := &models.PromoCode{
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		MaxDiscount:   &maxDiscount,
	}

	got := CalculateDiscount(promo, decimal.NewFromInt(100000))
	if !got.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected discount 5000, got %s", got)
	}
}

func TestCalculateDiscount_PercentageWithoutCap(t *testing.T) {
	promo := &models.PromoCode{
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
	}

	got := CalculateDiscount(promo, decimal.NewFromInt(100000))
	if !got.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected discount 10000, got %s", got)
	}
}

func TestCalculateDiscount_FixedClampedToPrice(t *testing.T) {
	promo := &models.PromoCode{
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(20000),
	}

	got := CalculateDiscount(promo, decimal.NewFromInt(15000))
	if !got.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expected discount clamped to 15000, got %s", got)
	}
}

func TestCheckPromoEligibility(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := 5
	minPurchase := decimal.NewFromInt(50000)

	tests := []struct {
		name    string
		promo   models.PromoCode
		price   decimal.Decimal
		wantMsg string
	}{
		{
			name:    "disabled",
			promo:   models.PromoCode{Enabled: false},
			price:   decimal.NewFromInt(100000),
			wantMsg: "Kode promo tidak aktif",
		},
		{
			name:    "not started",
			promo:   models.PromoCode{Enabled: true, StartDate: &future},
			price:   decimal.NewFromInt(100000),
			wantMsg: "Kode promo belum berlaku",
		},
		{
			name:    "expired",
			promo:   models.PromoCode{Enabled: true, EndDate: &past},
			price:   decimal.NewFromInt(100000),
			wantMsg: "Kode promo sudah kadaluarsa",
		},
		{
			name:    "usage limit reached",
			promo:   models.PromoCode{Enabled: true, UsageLimit: &limit, UsageCount: 5},
			price:   decimal.NewFromInt(100000),
			wantMsg: "Kode promo sudah mencapai batas penggunaan",
		},
		{
			name:    "below min purchase",
			promo:   models.PromoCode{Enabled: true, MinPurchase: &minPurchase},
			price:   decimal.NewFromInt(25000),
			wantMsg: "Minimum pembelian Rp 50.000 untuk kode ini",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPromoEligibility(&tt.promo, tt.price, now)
			if err == nil {
				t.Fatal("expected eligibility error")
			}
			var appErr *apperror.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected apperror, got %T", err)
			}
			if appErr.Msg != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, appErr.Msg)
			}
		})
	}
}

func TestPromoService_ValidatePromo_Success(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	mock.ExpectQuery("SELECT (.+) FROM promo_codes WHERE code").
		WithArgs("SAVE10").
		WillReturnRows(promoRow("SAVE10", models.DiscountTypePercentage, "10", "5000", nil, 0))

	price := decimal.NewFromInt(100000)
	result, err := service.ValidatePromo(context.Background(), &models.ValidatePromoRequest{Code: "save10", Price: &price})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if !result.Valid {
		t.Error("expected valid result")
	}
	if !result.DiscountAmount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected discount 5000, got %s", result.DiscountAmount)
	}
	if !result.FinalPrice.Equal(decimal.NewFromInt(95000)) {
		t.Errorf("expected final price 95000, got %s", result.FinalPrice)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPromoService_ValidatePromo_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	mock.ExpectQuery("SELECT (.+) FROM promo_codes WHERE code").
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows(promoCols))

	price := decimal.NewFromInt(100000)
	_, err := service.ValidatePromo(context.Background(), &models.ValidatePromoRequest{Code: "NOPE", Price: &price})
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Msg != "Kode promo tidak ditemukan" {
		t.Errorf("unexpected message %q", appErr.Msg)
	}
}

func TestPromoService_ValidatePromo_MissingCode(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	price := decimal.NewFromInt(1000)
	_, err := service.ValidatePromo(context.Background(), &models.ValidatePromoRequest{Code: "  ", Price: &price})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPromoService_ApplyPromoWithTx_ConsumesUsage(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM promo_codes WHERE code = (.+) FOR UPDATE").
		WithArgs("FLAT20K").
		WillReturnRows(promoRow("FLAT20K", models.DiscountTypeFixed, "20000", nil, 5, 2))
	mock.ExpectExec("UPDATE promo_codes").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}

	promo, discount, err := service.ApplyPromoWithTx(context.Background(), tx, "flat20k", decimal.NewFromInt(15000))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if promo.Code != "FLAT20K" {
		t.Errorf("unexpected code %q", promo.Code)
	}
	if !discount.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("expected discount clamped to price, got %s", discount)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPromoService_ApplyPromoWithTx_LimitReached(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM promo_codes WHERE code = (.+) FOR UPDATE").
		WithArgs("USEDUP").
		WillReturnRows(promoRow("USEDUP", models.DiscountTypeFixed, "5000", nil, 3, 3))
	mock.ExpectRollback()

	tx, _ := db.Begin()
	if _, _, err := service.ApplyPromoWithTx(context.Background(), tx, "USEDUP", decimal.NewFromInt(50000)); err == nil {
		t.Fatal("expected error for exhausted promo")
	}
	_ = tx.Rollback()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPromoService_CreatePromoCode_Validation(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	value := decimal.NewFromInt(150)
	_, err := service.CreatePromoCode(context.Background(), &models.CreatePromoCodeRequest{
		Code:          "TOOMUCH",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: &value,
	})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPromoService_CreatePromoCode_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	value := decimal.NewFromInt(10)
	mock.ExpectQuery("INSERT INTO promo_codes").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := service.CreatePromoCode(context.Background(), &models.CreatePromoCodeRequest{
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: &value,
	})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPromoService_DeletePromoCode_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	mock.ExpectExec("DELETE FROM promo_codes").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := service.DeletePromoCode(context.Background(), 42); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPromoService_UpdatePromoCode_PartialPatch(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewPromoService(db, newTestLogger())

	mock.ExpectQuery("SELECT (.+) FROM promo_codes WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(promoRow("SAVE10", models.DiscountTypePercentage, "10", "5000", nil, 0))
	mock.ExpectExec("UPDATE promo_codes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT (.+) FROM promo_codes WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(promoRow("SAVE10", models.DiscountTypePercentage, "10", "5000", nil, 0))

	enabled := false
	updated, err := service.UpdatePromoCode(context.Background(), 1, &models.UpdatePromoCodeRequest{Enabled: &enabled})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if updated.Code != "SAVE10" {
		t.Errorf("expected code preserved, got %q", updated.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
