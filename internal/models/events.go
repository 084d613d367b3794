package models

import "time"

// Event types
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderConfirmed = "ORDER_CONFIRMED"
	EventTypeOrderFailed    = "ORDER_FAILED"
	EventTypeOrderExpired   = "ORDER_EXPIRED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is assembled and submitted to the gateway
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string          `json:"order_id"`
	AccountID   string          `json:"account_id"`
	TotalAmount int64           `json:"total_amount"`
	GatewayRef  string          `json:"gateway_ref"`
	Items       []OrderItemData `json:"items"`
}

// OrderStatusEvent published when the reconciler applies a status transition
type OrderStatusEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	AccountID  string `json:"account_id"`
	GatewayRef string `json:"gateway_ref"`
	Status     string `json:"status"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}
