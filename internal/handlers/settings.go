package handlers

import (
	"net/http"
	"strings"

	"storefront-system/internal/logger"
)

// SettingsHandler обслуживает хранилище настроек магазина.
type SettingsHandler struct {
	settings   SettingsService
	storefront StorefrontService
	log        *logger.Logger
}

// NewSettingsHandler создает обработчик настроек.
func NewSettingsHandler(settings SettingsService, storefront StorefrontService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings:   settings,
		storefront: storefront,
		log:        log,
	}
}

// Collection обрабатывает GET /api/settings: все настройки одной картой.
func (h *SettingsHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	all, err := h.settings.GetAllSettings(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get settings")
		return
	}
	writeJSONResponse(w, http.StatusOK, all)
}

// Item обрабатывает /api/settings/{key}: чтение и запись одной настройки.
func (h *SettingsHandler) Item(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings/")
	if key == "" || strings.Contains(key, "/") {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid setting key")
		return
	}

	switch r.Method {
	case http.MethodGet:
		setting, err := h.settings.GetSetting(r.Context(), key)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to get setting")
			return
		}
		writeJSONResponse(w, http.StatusOK, setting)
	case http.MethodPut:
		var req struct {
			Value string `json:"value"`
		}
		if err := decodeJSONBody(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		setting, err := h.settings.UpsertSetting(r.Context(), key, req.Value)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to save setting")
			return
		}
		// Настройки участвуют в сборке главной страницы, кэш сбрасываем.
		h.storefront.InvalidateHomepage(r.Context())
		writeJSONResponse(w, http.StatusOK, setting)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
