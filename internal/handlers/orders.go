package handlers

import (
	"net/http"

	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// OrdersHandler обслуживает заказы.
type OrdersHandler struct {
	orders   OrderService
	producer EventProducer
	stats    StatsProvider
	log      *logger.Logger
}

// NewOrdersHandler создает обработчик заказов.
func NewOrdersHandler(orders OrderService, producer EventProducer, stats StatsProvider, log *logger.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:   orders,
		producer: producer,
		stats:    stats,
		log:      log,
	}
}

// Collection обрабатывает /api/orders: публичное создание и админский
// список.
func (h *OrdersHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create order")
		return
	}

	// Событие и кеш — best effort, заказ уже создан.
	if h.producer != nil {
		if err := h.producer.PublishOrderCreated(order); err != nil {
			h.log.WithError(err).Error("Failed to publish order created event")
		}
	}
	if h.stats != nil {
		h.stats.InvalidateStats(r.Context())
	}

	writeJSONResponse(w, http.StatusCreated, order)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	orders, err := h.orders.ListOrders(r.Context(), status)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list orders")
		return
	}
	writeJSONResponse(w, http.StatusOK, orders)
}

// Item обрабатывает /api/orders/{id} и /api/orders/{id}/status.
func (h *OrdersHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := extractIDFromPath(r.URL.Path, "/api/orders/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	switch {
	case r.Method == http.MethodGet:
		order, err := h.orders.GetOrderByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to get order")
			return
		}
		writeJSONResponse(w, http.StatusOK, order)
	case r.Method == http.MethodPut || r.Method == http.MethodPatch:
		h.updateStatus(w, r, id)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request, id int64) {
	var req models.UpdateOrderStatusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, oldStatus, err := h.orders.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update order status")
		return
	}

	if h.producer != nil && oldStatus != order.Status {
		if err := h.producer.PublishOrderStatusChanged(order.ID, oldStatus, order.Status); err != nil {
			h.log.WithError(err).Error("Failed to publish order status changed event")
		}
	}
	if h.stats != nil {
		h.stats.InvalidateStats(r.Context())
	}

	writeJSONResponse(w, http.StatusOK, order)
}
