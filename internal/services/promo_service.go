package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"storefront-system/internal/apperror"
	"storefront-system/internal/database"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// PromoService управляет промокодами и расчётом скидок.
type PromoService struct {
	db  *database.DB
	log *logger.Logger
}

// NewPromoService создаёт сервис промокодов.
func NewPromoService(db *database.DB, log *logger.Logger) *PromoService {
	return &PromoService{
		db:  db,
		log: log,
	}
}

const promoColumns = "id, code, discount_type, discount_value, min_purchase, max_discount, usage_limit, usage_count, start_date, end_date, enabled, created_at, updated_at"

// CreatePromoCode создаёт новый промокод. Код хранится в верхнем регистре.
func (s *PromoService) CreatePromoCode(ctx context.Context, req *models.CreatePromoCodeRequest) (*models.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, apperror.Validation("code is required", nil)
	}
	if !req.DiscountType.Valid() {
		return nil, apperror.Validation("invalid discount_type", nil)
	}
	if req.DiscountValue == nil || req.DiscountValue.IsNegative() || req.DiscountValue.IsZero() {
		return nil, apperror.Validation("discount_value must be positive", nil)
	}
	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperror.Validation("percentage discount cannot exceed 100", nil)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperror.Validation("end_date must be after start_date", nil)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	query := `
		INSERT INTO promo_codes (code, discount_type, discount_value, min_purchase, max_discount, usage_limit, usage_count, start_date, end_date, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, NOW(), NOW())
		RETURNING ` + promoColumns

	promo := &models.PromoCode{}
	err := s.db.QueryRowContext(ctx, query,
		code, req.DiscountType, *req.DiscountValue, req.MinPurchase, req.MaxDiscount,
		req.UsageLimit, req.StartDate, req.EndDate, enabled,
	).Scan(promoFields(promo)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("Promo code already exists", err)
		}
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	s.log.WithField("promo_code", promo.Code).Info("Promo code created")
	return promo, nil
}

// UpdatePromoCode частично обновляет промокод: nil-поля не меняются.
func (s *PromoService) UpdatePromoCode(ctx context.Context, id int64, req *models.UpdatePromoCodeRequest) (*models.PromoCode, error) {
	promo, err := s.GetPromoCodeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code == "" {
			return nil, apperror.Validation("code is required", nil)
		}
		promo.Code = code
	}
	if req.DiscountType != nil {
		if !req.DiscountType.Valid() {
			return nil, apperror.Validation("invalid discount_type", nil)
		}
		promo.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		if req.DiscountValue.IsNegative() || req.DiscountValue.IsZero() {
			return nil, apperror.Validation("discount_value must be positive", nil)
		}
		promo.DiscountValue = *req.DiscountValue
	}
	if promo.DiscountType == models.DiscountTypePercentage && promo.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperror.Validation("percentage discount cannot exceed 100", nil)
	}
	if req.MinPurchase != nil {
		promo.MinPurchase = req.MinPurchase
	}
	if req.MaxDiscount != nil {
		promo.MaxDiscount = req.MaxDiscount
	}
	if req.UsageLimit != nil {
		promo.UsageLimit = req.UsageLimit
	}
	if req.StartDate != nil {
		promo.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		promo.EndDate = req.EndDate
	}
	if promo.StartDate != nil && promo.EndDate != nil && promo.EndDate.Before(*promo.StartDate) {
		return nil, apperror.Validation("end_date must be after start_date", nil)
	}
	if req.Enabled != nil {
		promo.Enabled = *req.Enabled
	}

	query := `
		UPDATE promo_codes
		SET code = $1, discount_type = $2, discount_value = $3, min_purchase = $4, max_discount = $5,
		    usage_limit = $6, start_date = $7, end_date = $8, enabled = $9, updated_at = NOW()
		WHERE id = $10
	`
	if _, err := s.db.ExecContext(ctx, query,
		promo.Code, promo.DiscountType, promo.DiscountValue, promo.MinPurchase, promo.MaxDiscount,
		promo.UsageLimit, promo.StartDate, promo.EndDate, promo.Enabled, id,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("Promo code already exists", err)
		}
		return nil, fmt.Errorf("failed to update promo code: %w", err)
	}

	return s.GetPromoCodeByID(ctx, id)
}

// DeletePromoCode удаляет промокод.
func (s *PromoService) DeletePromoCode(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM promo_codes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("Promo code not found", nil)
	}
	return nil
}

// GetPromoCodeByID возвращает промокод по идентификатору.
func (s *PromoService) GetPromoCodeByID(ctx context.Context, id int64) (*models.PromoCode, error) {
	promo := &models.PromoCode{}
	query := "SELECT " + promoColumns + " FROM promo_codes WHERE id = $1"
	if err := s.db.QueryRowContext(ctx, query, id).Scan(promoFields(promo)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Promo code not found", err)
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return promo, nil
}

// ListPromoCodes возвращает все промокоды для админки.
func (s *PromoService) ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error) {
	query := "SELECT " + promoColumns + " FROM promo_codes ORDER BY created_at DESC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer rows.Close()

	promos := []*models.PromoCode{}
	for rows.Next() {
		p := &models.PromoCode{}
		if err := rows.Scan(promoFields(p)...); err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

// ValidatePromo проверяет промокод для витрины, не расходуя его.
func (s *PromoService) ValidatePromo(ctx context.Context, req *models.ValidatePromoRequest) (*models.PromoDiscount, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, apperror.Validation("Kode promo wajib diisi", nil)
	}
	if req.Price == nil || req.Price.IsNegative() {
		return nil, apperror.Validation("Harga tidak valid", nil)
	}

	promo := &models.PromoCode{}
	query := "SELECT " + promoColumns + " FROM promo_codes WHERE code = $1"
	if err := s.db.QueryRowContext(ctx, query, code).Scan(promoFields(promo)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Kode promo tidak ditemukan", err)
		}
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}

	if err := checkPromoEligibility(promo, *req.Price, time.Now()); err != nil {
		return nil, err
	}

	discount := CalculateDiscount(promo, *req.Price)
	return &models.PromoDiscount{
		Valid:          true,
		Code:           promo.Code,
		DiscountType:   promo.DiscountType,
		DiscountValue:  promo.DiscountValue,
		DiscountAmount: discount,
		OriginalPrice:  *req.Price,
		FinalPrice:     req.Price.Sub(discount),
		Message:        "Kode promo berhasil diterapkan",
	}, nil
}

// ApplyPromoWithTx перепроверяет промокод под блокировкой и расходует
// одно использование в рамках транзакции заказа. Лимит не может быть
// превышен конкурентными заказами.
func (s *PromoService) ApplyPromoWithTx(ctx context.Context, tx *sql.Tx, code string, price decimal.Decimal) (*models.PromoCode, decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	promo := &models.PromoCode{}
	query := "SELECT " + promoColumns + " FROM promo_codes WHERE code = $1 FOR UPDATE"
	if err := tx.QueryRowContext(ctx, query, code).Scan(promoFields(promo)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, decimal.Zero, apperror.NotFound("Kode promo tidak ditemukan", err)
		}
		return nil, decimal.Zero, fmt.Errorf("failed to get promo code: %w", err)
	}

	if err := checkPromoEligibility(promo, price, time.Now()); err != nil {
		return nil, decimal.Zero, err
	}

	updateQuery := `
		UPDATE promo_codes
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery, promo.ID); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to update promo usage: %w", err)
	}

	discount := CalculateDiscount(promo, price)
	return promo, discount, nil
}

// checkPromoEligibility проверяет условия применимости промокода.
// Сообщения публичные, на индонезийском.
func checkPromoEligibility(promo *models.PromoCode, price decimal.Decimal, now time.Time) error {
	if !promo.Enabled {
		return apperror.Validation("Kode promo tidak aktif", nil)
	}
	if promo.StartDate != nil && now.Before(*promo.StartDate) {
		return apperror.Validation("Kode promo belum berlaku", nil)
	}
	if promo.EndDate != nil && now.After(*promo.EndDate) {
		return apperror.Validation("Kode promo sudah kadaluarsa", nil)
	}
	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return apperror.Validation("Kode promo sudah mencapai batas penggunaan", nil)
	}
	if promo.MinPurchase != nil && price.LessThan(*promo.MinPurchase) {
		msg := fmt.Sprintf("Minimum pembelian Rp %s untuk kode ini", groupThousands(promo.MinPurchase.Truncate(0).String()))
		return apperror.Validation(msg, nil)
	}
	return nil
}

// CalculateDiscount вычисляет размер скидки. Процентная скидка
// ограничивается max_discount, любая скидка — ценой.
func CalculateDiscount(promo *models.PromoCode, price decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch promo.DiscountType {
	case models.DiscountTypePercentage:
		discount = price.Mul(promo.DiscountValue).Div(decimal.NewFromInt(100))
		if promo.MaxDiscount != nil && discount.GreaterThan(*promo.MaxDiscount) {
			discount = *promo.MaxDiscount
		}
	case models.DiscountTypeFixed:
		discount = promo.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(price) {
		discount = price
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}

func promoFields(p *models.PromoCode) []interface{} {
	return []interface{}{
		&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.MinPurchase, &p.MaxDiscount,
		&p.UsageLimit, &p.UsageCount, &p.StartDate, &p.EndDate, &p.Enabled, &p.CreatedAt, &p.UpdatedAt,
	}
}

func groupThousands(digits string) string {
	var out strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(r)
	}
	return out.String()
}
