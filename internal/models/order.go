package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus представляет статус заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid сообщает, известен ли статус заказа.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order представляет заказ — неизменяемый снимок на момент оформления.
// Имена и цена денормализуются при создании, поэтому последующие правки
// каталога не затрагивают историю заказов.
type Order struct {
	ID             int64             `json:"id" db:"id"`
	ProductID      int64             `json:"product_id" db:"product_id"`
	PackageID      int64             `json:"package_id" db:"package_id"`
	ProductName    string            `json:"product_name" db:"product_name"`
	CategoryName   string            `json:"category_name" db:"category_name"`
	PackageName    string            `json:"package_name" db:"package_name"`
	Price          decimal.Decimal   `json:"price" db:"price"`
	OriginalPrice  *decimal.Decimal  `json:"original_price,omitempty" db:"original_price"`
	DiscountAmount *decimal.Decimal  `json:"discount_amount,omitempty" db:"discount_amount"`
	PromoCode      *string           `json:"promo_code,omitempty" db:"promo_code"`
	UserData       map[string]string `json:"user_data"`
	PaymentProof   *string           `json:"payment_proof,omitempty" db:"payment_proof"`
	Status         OrderStatus       `json:"status" db:"status"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// CreateOrderRequest представляет запрос на создание заказа.
// Скидочные поля клиента игнорируются: промокод перепроверяется на сервере.
type CreateOrderRequest struct {
	ProductID    int64             `json:"product_id"`
	PackageID    int64             `json:"package_id"`
	UserData     map[string]string `json:"user_data"`
	PaymentProof *string           `json:"payment_proof,omitempty"`
	PromoCode    *string           `json:"promo_code,omitempty"`
}

// UpdateOrderStatusRequest представляет запрос на обновление статуса заказа
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// CheckoutURLRequest — запрос генерации WhatsApp-ссылки оформления.
type CheckoutURLRequest struct {
	ProductID    int64             `json:"product_id"`
	PackageID    int64             `json:"package_id"`
	UserData     map[string]string `json:"user_data"`
	PaymentProof *string           `json:"payment_proof,omitempty"`
}

// DashboardStats — сводка для админской панели.
type DashboardStats struct {
	Categories       int64           `json:"categories"`
	Products         int64           `json:"products"`
	Orders           int64           `json:"orders"`
	PendingOrders    int64           `json:"pending_orders"`
	CompletedRevenue decimal.Decimal `json:"completed_revenue"`
}
