package service

import (
	"context"

	"retail-orders/internal/models"
	"retail-orders/internal/storage"
	"retail-orders/internal/util"

	"go.uber.org/zap"
)

// CatalogCache serves cached product reads. Lookups return (nil, nil) on
// a miss.
type CatalogCache interface {
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product) error
}

// CatalogService serves the read-only catalog surface: products,
// customers, and active promo codes. Product reads go through a
// cache-aside Redis layer; everything here is out of the transactional
// core and never mutates business state.
type CatalogService struct {
	store  storage.Store
	cache  CatalogCache
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(store storage.Store, cache CatalogCache) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// GetProduct retrieves a product by ID, consulting the cache first.
func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProduct(ctx, productID)
		if err != nil {
			s.logger.Warn("Product cache read failed",
				zap.Int64("product_id", productID), zap.Error(err))
		} else if cached != nil {
			util.CacheHitsTotal.Inc()
			return cached, nil
		} else {
			util.CacheMissesTotal.Inc()
		}
	}

	product, err := s.store.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, product); err != nil {
			s.logger.Warn("Product cache write failed",
				zap.Int64("product_id", productID), zap.Error(err))
		}
	}
	return product, nil
}

// ListProducts retrieves the full catalog.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.Products(ctx)
}

// GetCustomer retrieves a customer by ID.
func (s *CatalogService) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	customer, err := s.store.CustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// ListCustomers retrieves all customers.
func (s *CatalogService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.store.Customers(ctx)
}

// ListPromoCodes retrieves the active promo codes.
func (s *CatalogService) ListPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	return s.store.ActivePromoCodes(ctx)
}
