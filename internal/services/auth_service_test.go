package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"storefront-system/internal/apperror"
	"storefront-system/internal/config"
	"storefront-system/internal/models"
)

func newTestAuthService(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	t.Cleanup(func() { _ = db.Close() })

	rdb, _ := newTestRedis(t)
	cfg := &config.SessionConfig{CookieName: "session_id", TTLHours: 24}
	return NewAuthService(db, rdb, cfg, newTestLogger()), mock
}

func TestAuthService_Login_Success(t *testing.T) {
	service, mock := newTestAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	mock.ExpectQuery("SELECT id, username, password_hash, created_at FROM admin_users").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(int64(1), "admin", string(hash), time.Now()))

	session, err := service.Login(context.Background(), &models.LoginRequest{Username: "admin", Password: "secret"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if session.Token == "" {
		t.Error("expected session token")
	}
	if session.Username != "admin" {
		t.Errorf("unexpected username %q", session.Username)
	}

	// Сессия должна находиться по токену.
	got, err := service.GetSession(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("expected session lookup to succeed: %v", err)
	}
	if got.UserID != 1 {
		t.Errorf("unexpected user id %d", got.UserID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	service, mock := newTestAuthService(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)

	mock.ExpectQuery("SELECT id, username, password_hash, created_at FROM admin_users").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(int64(1), "admin", string(hash), time.Now()))

	_, err := service.Login(context.Background(), &models.LoginRequest{Username: "admin", Password: "wrong"})
	if !apperror.Is(err, apperror.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	service, mock := newTestAuthService(t)

	mock.ExpectQuery("SELECT id, username, password_hash, created_at FROM admin_users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))

	_, err := service.Login(context.Background(), &models.LoginRequest{Username: "ghost", Password: "x"})
	if !apperror.Is(err, apperror.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	service, _ := newTestAuthService(t)

	_, err := service.Login(context.Background(), &models.LoginRequest{Username: " ", Password: ""})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthService_GetSession_UnknownToken(t *testing.T) {
	service, _ := newTestAuthService(t)

	_, err := service.GetSession(context.Background(), "missing-token")
	if !apperror.Is(err, apperror.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthService_Logout_RemovesSession(t *testing.T) {
	service, mock := newTestAuthService(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT id, username, password_hash, created_at FROM admin_users").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(int64(1), "admin", string(hash), time.Now()))

	session, err := service.Login(context.Background(), &models.LoginRequest{Username: "admin", Password: "secret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := service.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := service.GetSession(context.Background(), session.Token); !apperror.Is(err, apperror.KindUnauthorized) {
		t.Fatalf("expected session gone, got %v", err)
	}
}

func TestAuthService_Logout_EmptyTokenNoop(t *testing.T) {
	service, _ := newTestAuthService(t)

	if err := service.Logout(context.Background(), ""); err != nil {
		t.Fatalf("expected noop, got error: %v", err)
	}
}
