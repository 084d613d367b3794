package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrOrderBusy is returned when another delivery for the same order is being
// applied; the gateway retries the webhook.
var ErrOrderBusy = errors.New("order reconciliation in progress")

// Gateway outcome codes as delivered in confirmation payloads
const (
	confirmationPaid     = "paid"
	confirmationFailed   = "failed"
	confirmationDeclined = "declined"
)

const lockTTL = 10 * time.Second

// Confirmation is the payload of the gateway's asynchronous callback
type Confirmation struct {
	GatewayRef string `json:"id"`
	OrderCode  string `json:"code"`
	Status     string `json:"status"`
}

// Reconciler applies asynchronous gateway outcome notifications to locally
// owned order state. It is the only component that moves an order through its
// status machine.
type Reconciler struct {
	orders    OrderStore
	locker    Locker
	publisher Publisher
	secret    []byte
	logger    *zap.Logger
}

// NewReconciler creates a new reconciler. secret is the gateway's webhook
// signing key.
func NewReconciler(orders OrderStore, locker Locker, publisher Publisher, secret string) *Reconciler {
	return &Reconciler{
		orders:    orders,
		locker:    locker,
		publisher: publisher,
		secret:    []byte(secret),
		logger:    util.GetLogger(),
	}
}

// VerifySignature checks the gateway's HMAC-SHA256 signature over the raw
// payload. An unauthenticated delivery must never reach Apply.
func (r *Reconciler) VerifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, r.secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Apply reconciles one confirmation delivery. Redelivery of an identical
// terminal outcome is a no-op; a contradictory one is an integrity conflict
// and leaves the stored status untouched.
func (r *Reconciler) Apply(ctx context.Context, conf *Confirmation) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.Apply")
	defer span.End()

	target, err := targetStatus(conf.Status)
	if err != nil {
		util.WebhookDeliveriesTotal.WithLabelValues("unknown_status").Inc()
		return nil, err
	}

	order, err := r.lookupOrder(ctx, conf)
	if err != nil {
		return nil, err
	}

	acquired, err := r.locker.AcquireLock(ctx, "order:"+order.ID, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire order lock: %w", err)
	}
	if !acquired {
		return nil, ErrOrderBusy
	}
	defer func() {
		if err := r.locker.ReleaseLock(ctx, "order:"+order.ID); err != nil {
			r.logger.Warn("Failed to release order lock",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}()

	applied, err := r.orders.TransitionOrderStatus(ctx, order.ID, models.OrderStatusCreated, target)
	if err != nil {
		return nil, fmt.Errorf("failed to transition order status: %w", err)
	}

	if !applied {
		// The compare-and-set lost: re-read and decide between an idempotent
		// redelivery and a contradictory one.
		current, err := r.orders.GetOrderByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, &NotFoundError{Resource: "order", ID: order.ID}
		}
		if current.Status == target {
			util.WebhookDeliveriesTotal.WithLabelValues("duplicate").Inc()
			r.logger.Info("Duplicate confirmation ignored",
				zap.String("order_id", order.ID),
				zap.String("status", target))
			return current, nil
		}

		util.IntegrityConflictsTotal.Inc()
		util.WebhookDeliveriesTotal.WithLabelValues("conflict").Inc()
		conflict := &IntegrityConflictError{
			OrderID:    order.ID,
			StoredStat: current.Status,
			Incoming:   target,
		}
		r.logger.Error("Order status integrity conflict",
			zap.String("order_id", order.ID),
			zap.String("stored_status", current.Status),
			zap.String("incoming_status", target))
		return current, conflict
	}

	order.Status = target
	switch target {
	case models.OrderStatusConfirmed:
		util.OrdersConfirmedTotal.Inc()
	case models.OrderStatusFailed:
		util.OrdersFailedTotal.Inc()
	}
	util.WebhookDeliveriesTotal.WithLabelValues("applied").Inc()

	r.logger.Info("Order status reconciled",
		zap.String("order_id", order.ID),
		zap.String("status", target))

	r.publishStatus(ctx, order, target)
	return order, nil
}

// Expire marks a stale order EXPIRED through the same compare-and-set path.
// Used by the reconciliation sweep; a concurrent confirmation simply wins.
func (r *Reconciler) Expire(ctx context.Context, order *models.Order) error {
	applied, err := r.orders.TransitionOrderStatus(ctx, order.ID, models.OrderStatusCreated, models.OrderStatusExpired)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	order.Status = models.OrderStatusExpired
	util.OrdersExpiredTotal.Inc()
	r.logger.Warn("Order expired without gateway confirmation",
		zap.String("order_id", order.ID),
		zap.Time("created_at", order.CreatedAt))

	r.publishStatus(ctx, order, models.OrderStatusExpired)
	return nil
}

func (r *Reconciler) lookupOrder(ctx context.Context, conf *Confirmation) (*models.Order, error) {
	if conf.OrderCode != "" {
		order, err := r.orders.GetOrderByID(ctx, conf.OrderCode)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
	}
	if conf.GatewayRef != "" {
		order, err := r.orders.GetOrderByGatewayRef(ctx, conf.GatewayRef)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
	}
	return nil, &NotFoundError{Resource: "order", ID: conf.OrderCode + conf.GatewayRef}
}

func (r *Reconciler) publishStatus(ctx context.Context, order *models.Order, status string) {
	eventType := models.EventTypeOrderConfirmed
	switch status {
	case models.OrderStatusFailed:
		eventType = models.EventTypeOrderFailed
	case models.OrderStatusExpired:
		eventType = models.EventTypeOrderExpired
	}

	event := &models.OrderStatusEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		AccountID:  order.AccountID,
		GatewayRef: order.GatewayRef,
		Status:     status,
	}
	if err := r.publisher.PublishOrderStatus(ctx, event); err != nil {
		r.logger.Error("Failed to publish order status event",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}

func targetStatus(gatewayStatus string) (string, error) {
	switch gatewayStatus {
	case confirmationPaid:
		return models.OrderStatusConfirmed, nil
	case confirmationFailed, confirmationDeclined:
		return models.OrderStatusFailed, nil
	default:
		return "", fmt.Errorf("unknown confirmation status: %q", gatewayStatus)
	}
}
