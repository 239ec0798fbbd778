package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType описывает тип события заказа.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// Event — событие жизненного цикла заказа, публикуемое в Kafka.
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// OrderCreatedData — полезная нагрузка события order.created.
type OrderCreatedData struct {
	Order *Order `json:"order"`
}

// OrderStatusChangedData — полезная нагрузка события order.status_changed.
type OrderStatusChangedData struct {
	OrderID   int64       `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
}
