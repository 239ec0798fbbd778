package handlers

import (
	"net/http"

	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// PublicHandler обслуживает витрину: главную страницу, платежные
// реквизиты и ссылку оформления заказа в WhatsApp.
type PublicHandler struct {
	storefront StorefrontService
	log        *logger.Logger
}

// NewPublicHandler создает обработчик витрины.
func NewPublicHandler(storefront StorefrontService, log *logger.Logger) *PublicHandler {
	return &PublicHandler{
		storefront: storefront,
		log:        log,
	}
}

// Homepage обрабатывает GET /api/public/homepage.
func (h *PublicHandler) Homepage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	data, err := h.storefront.GetHomepage(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load homepage")
		return
	}
	writeJSONResponse(w, http.StatusOK, data)
}

// PaymentSettings обрабатывает GET /api/public/payment-settings.
func (h *PublicHandler) PaymentSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	settings, err := h.storefront.GetPaymentSettings(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load payment settings")
		return
	}
	writeJSONResponse(w, http.StatusOK, settings)
}

// CheckoutURL обрабатывает POST /api/public/checkout-url: собирает
// готовую wa.me ссылку с заполненным сообщением заказа.
func (h *PublicHandler) CheckoutURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CheckoutURLRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	url, err := h.storefront.BuildCheckoutURL(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to build checkout URL")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}
