package handlers

import (
	"net/http"

	"storefront-system/internal/config"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// AuthHandler обслуживает вход, выход и проверку сессии администратора.
type AuthHandler struct {
	auth AuthService
	cfg  *config.SessionConfig
	log  *logger.Logger
}

// NewAuthHandler создает обработчик аутентификации.
func NewAuthHandler(auth AuthService, cfg *config.SessionConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		cfg:  cfg,
		log:  log,
	}
}

// Login обрабатывает вход администратора и выставляет сессионную cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(h.auth.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":       session.UserID,
			"username": session.Username,
		},
	})
}

// Logout удаляет сессию и сбрасывает cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if cookie, err := r.Cookie(h.cfg.CookieName); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			h.log.WithError(err).Warn("Failed to delete session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Me сообщает, аутентифицирован ли текущий запрос.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	session, err := h.sessionFromRequest(r)
	if err != nil {
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user": map[string]interface{}{
			"id":       session.UserID,
			"username": session.Username,
		},
	})
}

// RequireAuth пропускает запрос дальше только при валидной сессии.
func (h *AuthHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.sessionFromRequest(r); err != nil {
			writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next(w, r)
	}
}

func (h *AuthHandler) sessionFromRequest(r *http.Request) (*models.Session, error) {
	cookie, err := r.Cookie(h.cfg.CookieName)
	if err != nil {
		return nil, err
	}
	return h.auth.GetSession(r.Context(), cookie.Value)
}
