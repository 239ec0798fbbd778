package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType описывает тип скидки промокода.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Valid сообщает, известен ли тип скидки.
func (t DiscountType) Valid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// PromoCode представляет промокод в системе.
type PromoCode struct {
	ID            int64            `json:"id" db:"id"`
	Code          string           `json:"code" db:"code"`
	DiscountType  DiscountType     `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value" db:"discount_value"`
	MinPurchase   *decimal.Decimal `json:"min_purchase,omitempty" db:"min_purchase"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty" db:"max_discount"`
	UsageLimit    *int             `json:"usage_limit,omitempty" db:"usage_limit"`
	UsageCount    int              `json:"usage_count" db:"usage_count"`
	StartDate     *time.Time       `json:"start_date,omitempty" db:"start_date"`
	EndDate       *time.Time       `json:"end_date,omitempty" db:"end_date"`
	Enabled       bool             `json:"enabled" db:"enabled"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// CreatePromoCodeRequest описывает запрос на создание промокода.
type CreatePromoCodeRequest struct {
	Code          string           `json:"code"`
	DiscountType  DiscountType     `json:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	MinPurchase   *decimal.Decimal `json:"min_purchase,omitempty"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty"`
	UsageLimit    *int             `json:"usage_limit,omitempty"`
	StartDate     *time.Time       `json:"start_date,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	Enabled       *bool            `json:"enabled,omitempty"`
}

// UpdatePromoCodeRequest описывает частичное обновление промокода.
// Поля-указатели: nil означает «не менять».
type UpdatePromoCodeRequest struct {
	Code          *string          `json:"code,omitempty"`
	DiscountType  *DiscountType    `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	MinPurchase   *decimal.Decimal `json:"min_purchase,omitempty"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty"`
	UsageLimit    *int             `json:"usage_limit,omitempty"`
	StartDate     *time.Time       `json:"start_date,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	Enabled       *bool            `json:"enabled,omitempty"`
}

// ValidatePromoRequest — публичный запрос проверки промокода.
type ValidatePromoRequest struct {
	Code  string           `json:"code"`
	Price *decimal.Decimal `json:"price"`
}

// PromoDiscount — результат успешной проверки промокода.
type PromoDiscount struct {
	Valid          bool            `json:"valid"`
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	Message        string          `json:"message"`
}
