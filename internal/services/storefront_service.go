package services

import (
	"context"
	"fmt"
	"time"

	"storefront-system/internal/apperror"
	"storefront-system/internal/config"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
	"storefront-system/internal/notify"
	"storefront-system/internal/redis"
)

// PaymentSettings — публичные реквизиты для оплаты.
type PaymentSettings struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	QRCodeURL     string `json:"qr_code_url,omitempty"`
}

// StorefrontService собирает публичную витрину: главную страницу,
// платёжные реквизиты и WhatsApp-ссылку оформления заказа.
type StorefrontService struct {
	catalog  *CatalogService
	settings *SettingsService
	redis    *redis.Client
	log      *logger.Logger
	cfg      *config.StoreConfig
}

// NewStorefrontService создаёт сервис витрины.
func NewStorefrontService(catalog *CatalogService, settings *SettingsService, rdb *redis.Client, cfg *config.StoreConfig, log *logger.Logger) *StorefrontService {
	return &StorefrontService{
		catalog:  catalog,
		settings: settings,
		redis:    rdb,
		log:      log,
		cfg:      cfg,
	}
}

// GetHomepage возвращает данные главной страницы с коротким кешем.
func (s *StorefrontService) GetHomepage(ctx context.Context) (*models.HomepageData, error) {
	cacheKey := redis.GenerateKey(redis.KeyPrefixHomepage, "data")

	if s.redis != nil {
		var cached models.HomepageData
		if err := s.redis.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if err != redis.ErrNotFound {
			s.log.WithError(err).Warn("Failed to read homepage cache")
		}
	}

	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	featured, err := s.catalog.ListFeaturedProducts(ctx, s.cfg.FeaturedProducts)
	if err != nil {
		return nil, err
	}

	data := &models.HomepageData{
		Categories:       categories,
		FeaturedProducts: featured,
	}

	if s.redis != nil {
		ttl := time.Duration(s.cfg.HomepageCacheTTL) * time.Second
		if ttl <= 0 {
			ttl = time.Minute
		}
		if err := s.redis.Set(ctx, cacheKey, data, ttl); err != nil {
			s.log.WithError(err).Warn("Failed to cache homepage")
		}
	}

	return data, nil
}

// InvalidateHomepage сбрасывает кеш витрины после правок каталога.
func (s *StorefrontService) InvalidateHomepage(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.DeleteByPrefix(ctx, redis.KeyPrefixHomepage); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate homepage cache")
	}
}

// GetPaymentSettings возвращает платёжные реквизиты из настроек.
func (s *StorefrontService) GetPaymentSettings(ctx context.Context) (*PaymentSettings, error) {
	result := &PaymentSettings{}
	keys := []struct {
		key  string
		dest *string
	}{
		{models.SettingPaymentBankName, &result.BankName},
		{models.SettingPaymentAccountNum, &result.AccountNumber},
		{models.SettingPaymentAccount, &result.AccountName},
		{models.SettingPaymentQRCode, &result.QRCodeURL},
	}
	for _, k := range keys {
		value, err := s.settings.GetSettingValue(ctx, k.key)
		if err != nil {
			return nil, fmt.Errorf("failed to load payment settings: %w", err)
		}
		*k.dest = value
	}
	return result, nil
}

// BuildCheckoutURL собирает wa.me-ссылку с сообщением заказа. Шаблон и
// номер берутся из настроек, при их отсутствии действуют значения по
// умолчанию.
func (s *StorefrontService) BuildCheckoutURL(ctx context.Context, req *models.CheckoutURLRequest) (string, error) {
	if req.ProductID == 0 || req.PackageID == 0 || len(req.UserData) == 0 {
		return "", apperror.Validation("Missing required fields", nil)
	}

	product, err := s.catalog.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return "", err
	}
	pkg, err := s.catalog.GetPackageByID(ctx, req.PackageID)
	if err != nil {
		return "", err
	}
	if !pkg.Enabled {
		return "", apperror.NotFound("Package not found or disabled", nil)
	}
	if pkg.ProductID != product.ID {
		return "", apperror.Validation("Package does not belong to this product", nil)
	}

	number, err := s.settings.GetSettingValue(ctx, models.SettingWhatsAppNumber)
	if err != nil {
		return "", err
	}
	if number == "" {
		number = s.cfg.DefaultWhatsApp
	}

	tmpl, err := s.settings.GetSettingValue(ctx, models.SettingCheckoutTemplate)
	if err != nil {
		return "", err
	}
	if tmpl == "" {
		tmpl = notify.DefaultCheckoutTemplate
	}

	msgCtx := notify.CheckoutContext{
		ProductName:  product.Name,
		CategoryName: product.CategoryName,
		PackageName:  pkg.Name,
		Price:        pkg.Price,
		UserData:     req.UserData,
		OrderTime:    time.Now(),
	}
	if req.PaymentProof != nil {
		msgCtx.PaymentProof = *req.PaymentProof
	}

	message := notify.RenderCheckoutMessage(tmpl, msgCtx)
	return notify.BuildWhatsAppURL(number, message), nil
}
