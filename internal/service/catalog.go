package service

import (
	"context"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService handles product CRUD
type CatalogService struct {
	catalog CatalogStore
	logger  *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog CatalogStore) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		logger:  util.GetLogger(),
	}
}

// ProductRequest carries a product create or update
type ProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (s *CatalogService) validate(req *ProductRequest) error {
	fields := map[string][]string{}
	if req.Name == "" {
		fields["name"] = append(fields["name"], "is required")
	}
	if req.Price.IsNegative() {
		fields["price"] = append(fields["price"], "must not be negative")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreateProduct adds a product to the catalog
func (s *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:    uuid.New().String(),
		Name:  req.Name,
		Price: req.Price,
	}
	if err := s.catalog.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID))
	return product, nil
}

// UpdateProduct updates an existing product
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *ProductRequest) (*models.Product, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}

	product.Name = req.Name
	product.Price = req.Price
	if err := s.catalog.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.catalog.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}

	if err := s.catalog.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves one product
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.catalog.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	return product, nil
}

// ListProducts retrieves the whole catalog
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.catalog.GetProducts(ctx)
}
