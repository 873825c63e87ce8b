package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all categories", "error", err)
		return nil, err
	}

	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint64) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return domain.Category{}, fmt.Errorf("context error: %w", err)
	}

	if id == 0 {
		return domain.Category{}, errors.New("invalid category id")
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Validation
	if category.Name == "" {
		return nil, errors.New("category name is required")
	}

	if category.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *category.ParentID); err != nil {
			return nil, errors.New("parent category not found")
		}
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		logger.Error("failed to create new category", "error", err)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	logger.Info("category created", "category_id", category.ID)

	return category, nil
}
