package service

import (
	"context"
	"encoding/json"
	"time"

	"shop-service/internal/gateway"
	"shop-service/internal/models"
)

// Store interfaces are satisfied by *store.Store. They exist so services can
// be tested against hand-rolled fakes and so lookup strategies (e.g. a cached
// account source) can be swapped without touching call sites.

type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

type CatalogStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderByGatewayRef(ctx context.Context, ref string) (*models.Order, error)
	SetOrderGatewayRef(ctx context.Context, orderID, ref string) error
	TransitionOrderStatus(ctx context.Context, orderID, from, to string) (bool, error)
	GetStaleOrders(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// Charger is the outbound payment gateway surface, satisfied by *gateway.Client
type Charger interface {
	CreateCharge(ctx context.Context, charge *gateway.ChargeRequest) (*gateway.ChargeResponse, error)
	ListOrders(ctx context.Context, customerRef string, page int) (json.RawMessage, error)
}

// Locker provides per-order mutual exclusion, satisfied by *redisclient.Client
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// Publisher emits domain events, satisfied by *broker.EventPublisher
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatus(ctx context.Context, event *models.OrderStatusEvent) error
}
