package handlers

import (
	"net/http"

	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// PromoHandler обслуживает промокоды: публичную проверку и админский CRUD.
type PromoHandler struct {
	promo PromoService
	log   *logger.Logger
}

// NewPromoHandler создает обработчик промокодов.
func NewPromoHandler(promo PromoService, log *logger.Logger) *PromoHandler {
	return &PromoHandler{
		promo: promo,
		log:   log,
	}
}

// Validate обрабатывает POST /api/promo/validate. Промокод не
// расходуется, только проверяется.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.ValidatePromoRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.promo.ValidatePromo(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to validate promo code")
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

// Collection обрабатывает /api/promo: список и создание.
func (h *PromoHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		promos, err := h.promo.ListPromoCodes(r.Context())
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to list promo codes")
			return
		}
		writeJSONResponse(w, http.StatusOK, promos)
	case http.MethodPost:
		var req models.CreatePromoCodeRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		promo, err := h.promo.CreatePromoCode(r.Context(), &req)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to create promo code")
			return
		}
		writeJSONResponse(w, http.StatusCreated, promo)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Item обрабатывает /api/promo/{id}. Обновление частичное: поля,
// отсутствующие в теле, не меняются.
func (h *PromoHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := extractIDFromPath(r.URL.Path, "/api/promo/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid promo code ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		promo, err := h.promo.GetPromoCodeByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to get promo code")
			return
		}
		writeJSONResponse(w, http.StatusOK, promo)
	case http.MethodPut, http.MethodPatch:
		var req models.UpdatePromoCodeRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		promo, err := h.promo.UpdatePromoCode(r.Context(), id, &req)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to update promo code")
			return
		}
		writeJSONResponse(w, http.StatusOK, promo)
	case http.MethodDelete:
		if err := h.promo.DeletePromoCode(r.Context(), id); err != nil {
			writeServiceError(w, h.log, err, "Failed to delete promo code")
			return
		}
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
