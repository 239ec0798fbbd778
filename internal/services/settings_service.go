package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storefront-system/internal/apperror"
	"storefront-system/internal/database"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
	"storefront-system/internal/redis"
)

// SettingsService управляет настройками магазина (ключ-значение).
// Значения кешируются в Redis, кеш сбрасывается при записи.
type SettingsService struct {
	db       *database.DB
	redis    *redis.Client
	log      *logger.Logger
	cacheTTL time.Duration
}

// NewSettingsService создаёт сервис настроек.
func NewSettingsService(db *database.DB, rdb *redis.Client, log *logger.Logger) *SettingsService {
	return &SettingsService{
		db:       db,
		redis:    rdb,
		log:      log,
		cacheTTL: 5 * time.Minute,
	}
}

// GetAllSettings возвращает все настройки как map ключ-значение.
func (s *SettingsService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// GetSettingValue возвращает значение настройки; пустая строка, если
// настройка не задана.
func (s *SettingsService) GetSettingValue(ctx context.Context, key string) (string, error) {
	cacheKey := redis.GenerateKey(redis.KeyPrefixSettings, key)
	if s.redis != nil {
		var cached string
		if err := s.redis.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, value, s.cacheTTL); err != nil {
			s.log.WithError(err).Warn("Failed to cache setting")
		}
	}
	return value, nil
}

// GetSetting возвращает настройку по ключу.
func (s *SettingsService) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	setting := &models.Setting{Key: key}
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&setting.Value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Setting not found", err)
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return setting, nil
}

// UpsertSetting записывает значение настройки, создавая ключ при
// необходимости, и сбрасывает кеш.
func (s *SettingsService) UpsertSetting(ctx context.Context, key, value string) (*models.Setting, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperror.Validation("Setting key cannot be empty", nil)
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return nil, fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}

	if s.redis != nil {
		if err := s.redis.Delete(ctx, redis.GenerateKey(redis.KeyPrefixSettings, key)); err != nil {
			s.log.WithError(err).Warn("Failed to invalidate settings cache")
		}
	}

	s.log.WithField("key", key).Info("Setting updated")
	return &models.Setting{Key: key, Value: value}, nil
}
