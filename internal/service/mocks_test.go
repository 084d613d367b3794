package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"shop-service/internal/gateway"
	"shop-service/internal/models"
)

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func newFakeAccounts(accounts ...*models.Account) *fakeAccounts {
	m := map[string]*models.Account{}
	for _, a := range accounts {
		m[a.ID] = a
	}
	return &fakeAccounts{accounts: m}
}

func (f *fakeAccounts) CreateAccount(_ context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account.CreatedAt = time.Now()
	cp := *account
	f.accounts[account.ID] = &cp
	return nil
}

func (f *fakeAccounts) GetAccountByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *account
	return &cp, nil
}

func (f *fakeAccounts) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			cp := *account
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeCatalog struct {
	products map[string]models.Product
}

func newFakeCatalog(products ...models.Product) *fakeCatalog {
	m := make(map[string]models.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeCatalog{products: m}
}

func (f *fakeCatalog) CreateProduct(_ context.Context, product *models.Product) error {
	f.products[product.ID] = *product
	return nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, product *models.Product) error {
	f.products[product.ID] = *product
	return nil
}

func (f *fakeCatalog) DeleteProduct(_ context.Context, id string) error {
	delete(f.products, id)
	return nil
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeCatalog) GetProducts(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) GetProductsByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	items  []models.OrderItem
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]*models.Order{}}
}

func (f *fakeOrders) CreateOrder(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeOrders) CreateOrderItem(_ context.Context, item *models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = int64(len(f.items) + 1)
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrders) GetOrderByGatewayRef(_ context.Context, ref string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.GatewayRef == ref {
			cp := *order
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) SetOrderGatewayRef(_ context.Context, orderID, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[orderID]; ok {
		order.GatewayRef = ref
	}
	return nil
}

func (f *fakeOrders) TransitionOrderStatus(_ context.Context, orderID, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeOrders) GetStaleOrders(_ context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, order := range f.orders {
		if order.Status == models.OrderStatusCreated && order.CreatedAt.Before(cutoff) && len(out) < limit {
			out = append(out, *order)
		}
	}
	return out, nil
}

type fakeCharger struct {
	mu         sync.Mutex
	lastCharge *gateway.ChargeRequest
	resp       *gateway.ChargeResponse
	err        error
	listResp   json.RawMessage
	listRef    string
	listPage   int
}

func (f *fakeCharger) CreateCharge(_ context.Context, charge *gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCharge = charge
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &gateway.ChargeResponse{ID: "ch_test", Status: "pending"}, nil
}

func (f *fakeCharger) ListOrders(_ context.Context, customerRef string, page int) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listRef = customerRef
	f.listPage = page
	if f.err != nil {
		return nil, f.err
	}
	return f.listResp, nil
}

type fakeLocker struct {
	mu      sync.Mutex
	held    map[string]bool
	blocked bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (f *fakeLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blocked || f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) ReleaseLock(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, key)
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	created []*models.OrderCreatedEvent
	status  []*models.OrderStatusEvent
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, event *models.OrderCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, event)
	return nil
}

func (f *fakePublisher) PublishOrderStatus(_ context.Context, event *models.OrderStatusEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = append(f.status, event)
	return nil
}
