package models

import "time"

// AdminUser — учетная запись администратора.
type AdminUser struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Session — админская сессия, хранится в Redis.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest — запрос входа администратора.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Setting — произвольная пара ключ/значение настроек магазина.
type Setting struct {
	Key   string `json:"key" db:"key"`
	Value string `json:"value" db:"value"`
}

// Известные ключи настроек (конвенция, не схема).
const (
	SettingWhatsAppNumber    = "whatsapp_number"
	SettingCheckoutTemplate  = "checkout_message_template"
	SettingPaymentBankName   = "payment_bank_name"
	SettingPaymentAccountNum = "payment_account_number"
	SettingPaymentAccount    = "payment_account_name"
	SettingPaymentQRCode     = "payment_qr_code"
	SettingAdminEmail        = "admin_email"
	SettingSiteName          = "site_name"
)
