package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account roles
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// Account represents a registered user
type Account struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Document     string    `db:"document" json:"document"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Product represents a product in the catalog. Price is the unit price in
// decimal currency units, backed by a NUMERIC column so two-decimal prices
// never pass through a float.
type Product struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Order represents a customer order submitted to the payment gateway
type Order struct {
	ID            string    `db:"id" json:"id"`
	AccountID     string    `db:"account_id" json:"account_id"`
	TotalAmount   int64     `db:"total_amount" json:"total_amount"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	GatewayRef    string    `db:"gateway_ref" json:"gateway_ref,omitempty"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line item with the unit price snapshotted at checkout time,
// in minor currency units. The snapshot always comes from the catalog, never
// from the client request.
type OrderItem struct {
	ID          int64  `db:"id" json:"id"`
	OrderID     string `db:"order_id" json:"order_id"`
	ProductID   string `db:"product_id" json:"product_id"`
	Description string `db:"description" json:"description"`
	Quantity    int    `db:"quantity" json:"quantity"`
	UnitPrice   int64  `db:"unit_price" json:"unit_price"`
}

// Order statuses
const (
	OrderStatusCreated   = "CREATED"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusFailed    = "FAILED"
	OrderStatusExpired   = "EXPIRED"
)

// CanTransition reports whether an order status change is allowed. Statuses
// only move forward: CREATED is the sole non-terminal state.
func CanTransition(from, to string) bool {
	if from != OrderStatusCreated {
		return false
	}
	switch to {
	case OrderStatusConfirmed, OrderStatusFailed, OrderStatusExpired:
		return true
	}
	return false
}

// IsTerminalStatus reports whether no further transitions are allowed.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusConfirmed || status == OrderStatusFailed || status == OrderStatusExpired
}
