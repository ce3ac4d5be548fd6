package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stay-fcsd/ecommerce-api/internal/domain"
	"github.com/stay-fcsd/ecommerce-api/internal/persistence"
	"github.com/stay-fcsd/ecommerce-api/internal/repository"
	apperrors "github.com/stay-fcsd/ecommerce-api/pkg/util"
)

const productCachePrefix = "product:"

// ProductInput describes create/update payloads for catalog entries.
type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
}

// ProductService coordinates catalog reads and writes with a read-through
// Redis cache on product-by-ID lookups.
type ProductService struct {
	products repository.ProductRepository
	cache    *persistence.Redis
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewProductService builds the service.
func NewProductService(products repository.ProductRepository, cache *persistence.Redis, cacheTTL time.Duration, logger *zap.Logger) *ProductService {
	return &ProductService{
		products: products,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Create validates and persists a new catalog entry.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}
	return product, nil
}

// Update replaces a catalog entry and drops its cached copy.
func (s *ProductService) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product")
		}
		return nil, apperrors.MapError(err)
	}

	product.Name = input.Name
	product.Description = input.Description
	product.PriceCents = input.PriceCents
	product.Stock = input.Stock

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product")
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidate(ctx, id)
	return product, nil
}

// Delete removes a catalog entry and drops its cached copy.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("product")
		}
		return apperrors.MapError(err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Get returns a single product, serving from cache when possible.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if cached := s.fromCache(ctx, id); cached != nil {
		return cached, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product")
		}
		return nil, apperrors.MapError(err)
	}

	s.toCache(ctx, product)
	return product, nil
}

// List returns a page of the catalog.
func (s *ProductService) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.products.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return products, nil
}

func (s *ProductService) fromCache(ctx context.Context, id string) *domain.Product {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, productCachePrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("product cache read failed", zap.Error(err))
		}
		return nil
	}
	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil
	}
	return &product
}

func (s *ProductService) toCache(ctx context.Context, product *domain.Product) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, productCachePrefix+product.ID, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("product cache write failed", zap.Error(err))
	}
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, productCachePrefix+id).Err(); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Error(err))
	}
}

func validateProductInput(input ProductInput) error {
	fields := make([]apperrors.FieldError, 0, 3)
	if input.Name == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Message: "must not be blank"})
	}
	if input.PriceCents < 0 {
		fields = append(fields, apperrors.FieldError{Field: "price_cents", Message: "must not be negative"})
	}
	if input.Stock < 0 {
		fields = append(fields, apperrors.FieldError{Field: "stock", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("Validation error. Check 'errors' field for details.", fields...)
	}
	return nil
}
