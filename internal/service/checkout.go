package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"shop-service/internal/gateway"
	"shop-service/internal/models"
	"shop-service/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutService assembles orders from client carts and submits them to the
// payment gateway. Prices always come from the catalog: any price present in
// the client request is ignored.
type CheckoutService struct {
	catalog   CatalogStore
	orders    OrderStore
	charger   Charger
	publisher Publisher
	validate  *validator.Validate
	logger    *zap.Logger

	// dropUnmatchedItems keeps cart lines referencing unknown products out of
	// the charge instead of rejecting the whole checkout. A cart that ends up
	// with zero chargeable lines still proceeds to the gateway.
	dropUnmatchedItems bool
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(catalog CatalogStore, orders OrderStore, charger Charger, publisher Publisher) *CheckoutService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &CheckoutService{
		catalog:            catalog,
		orders:             orders,
		charger:            charger,
		publisher:          publisher,
		validate:           v,
		logger:             util.GetLogger(),
		dropUnmatchedItems: true,
	}
}

// CheckoutRequest is the client-submitted cart plus payment instrument
type CheckoutRequest struct {
	// An empty cart is not rejected here: a checkout that ends up with zero
	// chargeable lines still goes to the gateway.
	Items    []CartItemRequest `json:"items" validate:"dive"`
	Customer CustomerInfo      `json:"customer"`
	Payment  PaymentInstrument `json:"payment"`
}

// CartItemRequest references a catalog product. No price field: clients never
// set prices.
type CartItemRequest struct {
	ID       string `json:"id" validate:"required,uuid4"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// CustomerInfo is per-order buyer data, not required to match the account
type CustomerInfo struct {
	Name     string       `json:"name" validate:"required"`
	Email    string       `json:"email" validate:"required,email"`
	Document string       `json:"document" validate:"required,len=11"`
	Phone    string       `json:"phone"`
	Address  *AddressInfo `json:"address"`
}

// PaymentInstrument is the card data. It is held only for the duration of the
// gateway call and never persisted.
type PaymentInstrument struct {
	Type           string       `json:"type" validate:"required,oneof=credit debit"`
	Number         string       `json:"number" validate:"required,len=12"`
	ExpMonth       int          `json:"exp_month" validate:"required,min=1,max=12"`
	ExpYear        int          `json:"exp_year" validate:"required"`
	CVV            string       `json:"cvv" validate:"required,len=3"`
	HolderName     string       `json:"name"`
	HolderDocument string       `json:"document" validate:"omitempty,len=11"`
	Address        *AddressInfo `json:"address"`
}

// AddressInfo is a billing address
type AddressInfo struct {
	Line1   string `json:"line_1" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// CheckoutResponse confirms order placement
type CheckoutResponse struct {
	OrderID    string `json:"order_id"`
	GatewayRef string `json:"gateway_ref"`
	Status     string `json:"status"`
}

// Checkout validates the request, resolves authoritative prices, persists the
// order with snapshotted prices and submits the charge to the gateway.
func (s *CheckoutService) Checkout(ctx context.Context, accountID string, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	util.CheckoutAttemptsTotal.Inc()

	if err := s.validateRequest(req); err != nil {
		util.CheckoutRejectedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	productIDs := lo.Map(req.Items, func(item CartItemRequest, _ int) string {
		return item.ID
	})
	products, err := s.catalog.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog prices: %w", err)
	}
	productsByID := lo.KeyBy(products, func(p models.Product) string {
		return p.ID
	})

	order := &models.Order{
		ID:            uuid.New().String(),
		AccountID:     accountID,
		PaymentMethod: req.Payment.Type,
		Status:        models.OrderStatusCreated,
	}

	var chargeItems []gateway.ChargeItem
	var orderItems []models.OrderItem
	var total int64
	for _, line := range req.Items {
		product, ok := productsByID[line.ID]
		if !ok {
			if s.dropUnmatchedItems {
				util.DroppedCartItemsTotal.Inc()
				s.logger.Warn("Dropping cart item with unknown product",
					zap.String("order_id", order.ID),
					zap.String("product_id", line.ID))
				continue
			}
			return nil, &ValidationError{Fields: map[string][]string{
				"items": {fmt.Sprintf("unknown product: %s", line.ID)},
			}}
		}

		amount := MinorUnits(product.Price)
		total += amount * int64(line.Quantity)

		chargeItems = append(chargeItems, gateway.ChargeItem{
			Code:        product.ID,
			Description: product.Name,
			Amount:      amount,
			Quantity:    line.Quantity,
		})
		orderItems = append(orderItems, models.OrderItem{
			OrderID:     order.ID,
			ProductID:   product.ID,
			Description: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   amount,
		})
	}

	order.TotalAmount = total
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	for i := range orderItems {
		if err := s.orders.CreateOrderItem(ctx, &orderItems[i]); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	util.OrdersCreatedTotal.Inc()

	charge := s.buildChargeRequest(order, accountID, req, chargeItems)
	chargeResp, err := s.charger.CreateCharge(ctx, charge)
	if err != nil {
		// The order stays CREATED; the expiry sweep reconciles it if no
		// confirmation ever arrives.
		util.CheckoutRejectedTotal.WithLabelValues("gateway").Inc()
		return nil, err
	}

	if err := s.orders.SetOrderGatewayRef(ctx, order.ID, chargeResp.ID); err != nil {
		return nil, fmt.Errorf("failed to record gateway reference: %w", err)
	}
	order.GatewayRef = chargeResp.ID

	s.logger.Info("Order submitted to gateway",
		zap.String("order_id", order.ID),
		zap.String("gateway_ref", chargeResp.ID),
		zap.Int64("total_amount", total))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		AccountID:   accountID,
		TotalAmount: total,
		GatewayRef:  chargeResp.ID,
		Items: lo.Map(orderItems, func(it models.OrderItem, _ int) models.OrderItemData {
			return models.OrderItemData{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		}),
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &CheckoutResponse{
		OrderID:    order.ID,
		GatewayRef: chargeResp.ID,
		Status:     order.Status,
	}, nil
}

// ListOrders passes the gateway's paginated order list through unmodified
func (s *CheckoutService) ListOrders(ctx context.Context, accountID string, page int) (json.RawMessage, error) {
	if page < 1 {
		page = 1
	}
	return s.charger.ListOrders(ctx, accountID, page)
}

// validateRequest collects every field violation, not just the first
func (s *CheckoutService) validateRequest(req *CheckoutRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := map[string][]string{}
	for _, fe := range violations {
		path := strings.TrimPrefix(fe.Namespace(), "CheckoutRequest.")
		fields[path] = append(fields[path], violationMessage(fe))
	}
	return &ValidationError{Fields: fields}
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid4":
		return "must be a valid uuid"
	case "email":
		return "must be a valid email"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// buildChargeRequest applies the defaulting rules: payment instrument
// overrides win over customer data for holder name, document and billing
// address.
func (s *CheckoutService) buildChargeRequest(order *models.Order, accountID string, req *CheckoutRequest, items []gateway.ChargeItem) *gateway.ChargeRequest {
	holderName := req.Payment.HolderName
	if holderName == "" {
		holderName = req.Customer.Name
	}
	holderDocument := req.Payment.HolderDocument
	if holderDocument == "" {
		holderDocument = req.Customer.Document
	}
	billing := req.Payment.Address
	if billing == nil {
		billing = req.Customer.Address
	}

	card := &gateway.Card{
		Number:         req.Payment.Number,
		HolderName:     holderName,
		HolderDocument: holderDocument,
		ExpMonth:       req.Payment.ExpMonth,
		ExpYear:        req.Payment.ExpYear,
		CVV:            req.Payment.CVV,
	}
	if billing != nil {
		card.BillingAddress = &gateway.Address{
			Line1:   billing.Line1,
			City:    billing.City,
			State:   billing.State,
			ZipCode: billing.ZipCode,
			Country: billing.Country,
		}
	}

	payment := gateway.Payment{}
	if req.Payment.Type == "debit" {
		payment.PaymentMethod = gateway.MethodDebitCard
		payment.DebitCard = card
	} else {
		payment.PaymentMethod = gateway.MethodCreditCard
		payment.CreditCard = card
	}

	return &gateway.ChargeRequest{
		Code:  order.ID,
		Items: items,
		Customer: gateway.ChargeCustomer{
			Code:     accountID,
			Name:     req.Customer.Name,
			Email:    req.Customer.Email,
			Document: req.Customer.Document,
			Phone:    req.Customer.Phone,
		},
		Payments: []gateway.Payment{payment},
	}
}

// MinorUnits converts a decimal currency amount to integer minor units.
// Decimal arithmetic keeps two-decimal prices exact: 19.99 -> 1999, 0.10 -> 10.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
