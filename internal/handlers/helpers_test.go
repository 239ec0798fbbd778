package handlers

import (
	"context"

	"storefront-system/internal/config"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
	"storefront-system/internal/services"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

// stubStorefront используется хендлерами каталога и витрины.
type stubStorefront struct {
	homepage    *models.HomepageData
	payment     *services.PaymentSettings
	checkoutURL string
	err         error

	invalidated int
}

func (s *stubStorefront) GetHomepage(ctx context.Context) (*models.HomepageData, error) {
	return s.homepage, s.err
}

func (s *stubStorefront) InvalidateHomepage(ctx context.Context) {
	s.invalidated++
}

func (s *stubStorefront) GetPaymentSettings(ctx context.Context) (*services.PaymentSettings, error) {
	return s.payment, s.err
}

func (s *stubStorefront) BuildCheckoutURL(ctx context.Context, req *models.CheckoutURLRequest) (string, error) {
	return s.checkoutURL, s.err
}

// stubStats подменяет статистику в тестах заказов и панели.
type stubStats struct {
	stats       *models.DashboardStats
	err         error
	invalidated int
}

func (s *stubStats) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return s.stats, s.err
}

func (s *stubStats) InvalidateStats(ctx context.Context) {
	s.invalidated++
}
