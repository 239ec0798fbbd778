package services

import (
	"context"
	"fmt"
	"time"

	"storefront-system/internal/config"
	"storefront-system/internal/database"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
	"storefront-system/internal/redis"
)

const defaultStatsCacheTTL = 5 * time.Minute

// StatsService агрегирует сводку для админской панели и кеширует её.
type StatsService struct {
	db       *database.DB
	redis    *redis.Client
	log      *logger.Logger
	cacheTTL time.Duration
}

// NewStatsService создает сервис статистики.
func NewStatsService(db *database.DB, rdb *redis.Client, log *logger.Logger, cfg *config.StatsConfig) *StatsService {
	cacheTTL := defaultStatsCacheTTL
	if cfg != nil && cfg.CacheTTLMinutes > 0 {
		cacheTTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
	}

	return &StatsService{
		db:       db,
		redis:    rdb,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// GetDashboardStats возвращает счётчики каталога и заказов плюс выручку
// по завершённым заказам.
func (s *StatsService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	cacheKey := redis.GenerateKey(redis.KeyPrefixStats, "dashboard")

	if s.redis != nil {
		var cached models.DashboardStats
		if err := s.redis.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if err != redis.ErrNotFound {
			s.log.WithError(err).Warn("Failed to read stats cache")
		}
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM categories) AS categories,
			(SELECT COUNT(*) FROM products) AS products,
			(SELECT COUNT(*) FROM orders) AS orders,
			(SELECT COUNT(*) FROM orders WHERE status = 'pending') AS pending_orders,
			(SELECT COALESCE(SUM(price), 0) FROM orders WHERE status = 'completed') AS completed_revenue
	`

	stats := &models.DashboardStats{}
	if err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.Categories, &stats.Products, &stats.Orders, &stats.PendingOrders, &stats.CompletedRevenue,
	); err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, stats, s.cacheTTL); err != nil {
			s.log.WithError(err).Warn("Failed to cache dashboard stats")
		}
	}

	return stats, nil
}

// InvalidateStats сбрасывает кеш статистики после мутаций заказов.
func (s *StatsService) InvalidateStats(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.DeleteByPrefix(ctx, redis.KeyPrefixStats); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate stats cache")
	}
}
