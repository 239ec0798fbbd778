package notify

import (
	"context"
	"fmt"
	"strings"

	"storefront-system/internal/config"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// OrderGetter отдает заказ по идентификатору.
type OrderGetter interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
}

// PackageGetter отдает пакет по идентификатору.
type PackageGetter interface {
	GetPackageByID(ctx context.Context, id int64) (*models.Package, error)
}

// SettingsGetter отдает значение настройки; пустая строка — настройка не задана.
type SettingsGetter interface {
	GetSettingValue(ctx context.Context, key string) (string, error)
}

// Notifier выполняет почтовые побочные эффекты по событиям заказов.
// Ошибки отправки логируются и не влияют на обработку заказа.
type Notifier struct {
	mailer   Mailer
	orders   OrderGetter
	packages PackageGetter
	settings SettingsGetter
	cfg      *config.StoreConfig
	log      *logger.Logger
}

// NewNotifier создает обработчик уведомлений.
func NewNotifier(mailer Mailer, orders OrderGetter, packages PackageGetter, settings SettingsGetter, cfg *config.StoreConfig, log *logger.Logger) *Notifier {
	return &Notifier{
		mailer:   mailer,
		orders:   orders,
		packages: packages,
		settings: settings,
		cfg:      cfg,
		log:      log,
	}
}

// HandleOrderCreated отправляет админу уведомление о новом заказе.
func (n *Notifier) HandleOrderCreated(ctx context.Context, data *models.OrderCreatedData) error {
	if data.Order == nil {
		return fmt.Errorf("order created event without order")
	}

	to := n.adminEmail(ctx)
	if to == "" {
		n.log.Warn("Admin email is not configured, skipping order notification")
		return nil
	}

	subject, body, err := RenderAdminOrderEmail(data.Order)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("failed to notify admin about order %d: %w", data.Order.ID, err)
	}
	return nil
}

// HandleOrderStatusChanged отправляет покупателю ссылку на скачивание,
// когда заказ переходит в completed и у пакета есть файл.
func (n *Notifier) HandleOrderStatusChanged(ctx context.Context, data *models.OrderStatusChangedData) error {
	if data.NewStatus != models.OrderStatusCompleted {
		return nil
	}

	order, err := n.orders.GetOrderByID(ctx, data.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %d: %w", data.OrderID, err)
	}

	to := customerEmail(order.UserData)
	if to == "" {
		n.log.WithField("order_id", order.ID).Info("Order has no customer email, skipping delivery email")
		return nil
	}

	pkg, err := n.packages.GetPackageByID(ctx, order.PackageID)
	if err != nil {
		return fmt.Errorf("failed to load package %d: %w", order.PackageID, err)
	}
	if pkg.DownloadURL == nil || *pkg.DownloadURL == "" {
		n.log.WithField("order_id", order.ID).Info("Package has no download file, skipping delivery email")
		return nil
	}

	siteName := n.siteName(ctx)
	subject, body, err := RenderDeliveryEmail(siteName, order, *pkg.DownloadURL)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("failed to send delivery email for order %d: %w", order.ID, err)
	}
	return nil
}

// adminEmail берет адрес из настроек, затем из конфигурации.
func (n *Notifier) adminEmail(ctx context.Context) string {
	if n.settings != nil {
		if v, err := n.settings.GetSettingValue(ctx, models.SettingAdminEmail); err == nil && v != "" {
			return v
		}
	}
	return n.cfg.AdminEmail
}

func (n *Notifier) siteName(ctx context.Context) string {
	if n.settings != nil {
		if v, err := n.settings.GetSettingValue(ctx, models.SettingSiteName); err == nil && v != "" {
			return v
		}
	}
	return n.cfg.SiteName
}

// customerEmail ищет адрес почты среди данных покупателя.
func customerEmail(data map[string]string) string {
	for k, v := range data {
		if strings.Contains(strings.ToLower(k), "email") && strings.Contains(v, "@") {
			return v
		}
	}
	return ""
}
