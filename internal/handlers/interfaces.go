package handlers

import (
	"context"
	"time"

	"storefront-system/internal/models"
	"storefront-system/internal/services"
)

// ----- Catalog -----

type CatalogService interface {
	ListCategories(ctx context.Context) ([]*models.CategorySummary, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, onlyEnabled bool) ([]*models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListPackagesByProduct(ctx context.Context, productID int64, onlyEnabled bool) ([]*models.Package, error)
	GetPackageByID(ctx context.Context, id int64) (*models.Package, error)
	CreatePackage(ctx context.Context, req *models.CreatePackageRequest) (*models.Package, error)
	UpdatePackage(ctx context.Context, id int64, req *models.UpdatePackageRequest) (*models.Package, error)
	DeletePackage(ctx context.Context, id int64) error
}

// ----- Orders -----

type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, status models.OrderStatus) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, models.OrderStatus, error)
}

// ----- Promo -----

type PromoService interface {
	CreatePromoCode(ctx context.Context, req *models.CreatePromoCodeRequest) (*models.PromoCode, error)
	GetPromoCodeByID(ctx context.Context, id int64) (*models.PromoCode, error)
	UpdatePromoCode(ctx context.Context, id int64, req *models.UpdatePromoCodeRequest) (*models.PromoCode, error)
	DeletePromoCode(ctx context.Context, id int64) error
	ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error)
	ValidatePromo(ctx context.Context, req *models.ValidatePromoRequest) (*models.PromoDiscount, error)
}

// ----- Settings -----

type SettingsService interface {
	GetAllSettings(ctx context.Context) (map[string]string, error)
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, key, value string) (*models.Setting, error)
}

// ----- Auth -----

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error)
	GetSession(ctx context.Context, token string) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	SessionTTL() time.Duration
}

// ----- Storefront -----

type StorefrontService interface {
	GetHomepage(ctx context.Context) (*models.HomepageData, error)
	InvalidateHomepage(ctx context.Context)
	GetPaymentSettings(ctx context.Context) (*services.PaymentSettings, error)
	BuildCheckoutURL(ctx context.Context, req *models.CheckoutURLRequest) (string, error)
}

// ----- Stats -----

type StatsProvider interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	InvalidateStats(ctx context.Context)
}

// ----- Events -----

type EventProducer interface {
	PublishOrderCreated(order *models.Order) error
	PublishOrderStatusChanged(orderID int64, oldStatus, newStatus models.OrderStatus) error
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
