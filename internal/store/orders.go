package store

import (
	"context"
	"database/sql"
	"time"

	"shop-service/internal/models"
)

// CreateOrder inserts a new order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, account_id, total_amount, payment_method, gateway_ref, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	row := s.db.QueryRowxContext(ctx, query,
		order.ID, order.AccountID, order.TotalAmount, order.PaymentMethod, order.GatewayRef, order.Status)
	return row.Scan(&order.CreatedAt, &order.UpdatedAt)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByGatewayRef retrieves an order by its gateway charge reference
func (s *Store) GetOrderByGatewayRef(ctx context.Context, ref string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE gateway_ref = $1", ref)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetOrderGatewayRef records the gateway charge reference after submission
func (s *Store) SetOrderGatewayRef(ctx context.Context, orderID, ref string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET gateway_ref = $1, updated_at = NOW() WHERE id = $2",
		ref, orderID)
	return err
}

// TransitionOrderStatus applies a compare-and-set status update. It only
// succeeds when the stored status still equals the expected one, which keeps
// transitions forward-only under concurrent webhook deliveries. Returns true
// when a row was updated.
func (s *Store) TransitionOrderStatus(ctx context.Context, orderID, from, to string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, orderID, from)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// GetStaleOrders returns non-terminal orders created before the cutoff,
// candidates for the expiry sweep.
func (s *Store) GetStaleOrders(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE status = $1 AND created_at < $2 ORDER BY created_at LIMIT $3",
		models.OrderStatusCreated, cutoff, limit)
	return orders, err
}

// CreateOrderItem inserts a line item
func (s *Store) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, description, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return s.db.GetContext(ctx, &item.ID, query,
		item.OrderID, item.ProductID, item.Description, item.Quantity, item.UnitPrice)
}

// GetOrderItemsByOrderID retrieves all line items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}
