package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront-system/internal/apperror"
	"storefront-system/internal/config"
	"storefront-system/internal/database"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
	"storefront-system/internal/redis"
)

// AuthService выполняет вход администратора и хранит сессии в Redis.
type AuthService struct {
	db         *database.DB
	redis      *redis.Client
	log        *logger.Logger
	sessionTTL time.Duration
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(db *database.DB, rdb *redis.Client, cfg *config.SessionConfig, log *logger.Logger) *AuthService {
	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		db:         db,
		redis:      rdb,
		log:        log,
		sessionTTL: ttl,
	}
}

// Login проверяет учетные данные и создаёт сессию.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperror.Validation("Username and password are required", nil)
	}

	user := &models.AdminUser{}
	query := "SELECT id, username, password_hash, created_at FROM admin_users WHERE username = $1"
	if err := s.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.Unauthorized("Invalid username or password", err)
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid username or password", err)
	}

	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: time.Now(),
	}

	key := redis.GenerateKey(redis.KeyPrefixSession, session.Token)
	if err := s.redis.Set(ctx, key, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.log.WithField("username", user.Username).Info("Admin logged in")
	return session, nil
}

// GetSession возвращает сессию по токену.
func (s *AuthService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, apperror.Unauthorized("Authentication required", nil)
	}

	session := &models.Session{}
	key := redis.GenerateKey(redis.KeyPrefixSession, token)
	if err := s.redis.Get(ctx, key, session); err != nil {
		if err == redis.ErrNotFound {
			return nil, apperror.Unauthorized("Authentication required", err)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// Logout удаляет сессию. Отсутствующий токен не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.redis.Delete(ctx, redis.GenerateKey(redis.KeyPrefixSession, token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SessionTTL возвращает срок жизни сессии (для cookie Max-Age).
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}
