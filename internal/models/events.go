package models

import "time"

// Event types
const (
	EventTypeOrderSubmitted      = "ORDER_SUBMITTED"
	EventTypeOrderStatusChanged  = "ORDER_STATUS_CHANGED"
	EventTypeNotificationCreated = "NOTIFICATION_CREATED"
	EventTypeCatalogImported     = "CATALOG_IMPORTED"
	EventTypeReturnsImported     = "RETURNS_IMPORTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderSubmittedEvent published when a salesperson submits an order
type OrderSubmittedEvent struct {
	BaseEvent
	OrderID   string      `json:"order_id"`
	SalesID   string      `json:"sales_id"`
	OrderType OrderType   `json:"order_type"`
	Items     []OrderItem `json:"items"`
}

// OrderStatusChangedEvent published on every approval decision
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string      `json:"order_id"`
	ActorID string      `json:"actor_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	Message string      `json:"message,omitempty"`
}

// NotificationCreatedEvent mirrors a stored notification
type NotificationCreatedEvent struct {
	BaseEvent
	NotificationID string           `json:"notification_id"`
	Target         string           `json:"target"`
	Title          string           `json:"title"`
	Type           NotificationType `json:"type"`
}

// ImportCompletedEvent published after a wholesale catalog or return-log
// replacement. EventType tells the two apart.
type ImportCompletedEvent struct {
	BaseEvent
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
}
