package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindAllActive(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
}

type Cache interface {
	InvalidateTrending(ctx context.Context) int64
	InvalidateSimilarity(ctx context.Context) int64
}

type productService struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	cache        Cache
}

func NewProductService(productRepo ProductRepository, categoryRepo CategoryRepository, cache Cache) *productService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

func (s *productService) GetAllProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if activeOnly {
		return s.productRepo.FindAllActive(ctx)
	}

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all products", "error", err)
		return nil, err
	}

	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		return nil, errors.New("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Validation
	if product.Name == "" {
		return nil, errors.New("product name is required")
	}

	if product.Price < 0 {
		return nil, errors.New("price cannot be negative")
	}

	if product.CategoryID != 0 {
		if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
			logger.Error("category not found for product", "category_id", product.CategoryID)
			return nil, domain.ErrCategoryNotFound
		}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", "error", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.Info("product created", "product_id", product.ID)

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if product.ID == 0 {
		return nil, errors.New("product ID is required")
	}

	if product.Name == "" {
		return nil, errors.New("product name is required")
	}

	if product.Price < 0 {
		return nil, errors.New("price cannot be negative")
	}

	current, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	if product.CategoryID != 0 && product.CategoryID != current.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
			return nil, domain.ErrCategoryNotFound
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", "product_id", product.ID, "error", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Deactivation hides a product from every surface at read time, but the
	// derived tables still hold it until the next pipeline run. Cached lists
	// could keep serving it for their full TTL, so drop them now.
	if current.IsActive && !product.IsActive {
		s.cache.InvalidateTrending(ctx)
		s.cache.InvalidateSimilarity(ctx)
		logger.Info("product deactivated, caches invalidated", "product_id", product.ID)
	}

	updated, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated product: %w", err)
	}

	logger.Info("product updated", "product_id", product.ID)

	return &updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if id == 0 {
		return errors.New("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", "product_id", id, "error", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.cache.InvalidateTrending(ctx)
	s.cache.InvalidateSimilarity(ctx)

	logger.Info("product deleted", "product_id", id)

	return nil
}
