package postgres

import (
	"context"
	"fmt"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"

	"gorm.io/gorm"
)

type TrendingRepository struct {
	DB *gorm.DB
}

func NewTrendingRepository(db *gorm.DB) *TrendingRepository {
	return &TrendingRepository{
		DB: db,
	}
}

const insertBatchSize = 1000

// ReplaceWindow swaps out all trending rows for a window in one transaction.
// Readers either see the previous run or the new one, never a mix.
func (r *TrendingRepository) ReplaceWindow(ctx context.Context, window domain.TimeWindow, rows []domain.TrendingScore) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("time_window = ?", window).Delete(&domain.TrendingScore{}).Error; err != nil {
			return fmt.Errorf("failed to clear window %s: %w", window, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert trending scores: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace trending window: %w", err)
	}

	return nil
}

// GetTopGlobal returns the k highest-scored rows for a window, restricted to
// products that are still active.
func (r *TrendingRepository) GetTopGlobal(ctx context.Context, window domain.TimeWindow, k int) ([]domain.TrendingScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.TrendingScore
	err := r.DB.WithContext(ctx).
		Where("time_window = ?", window).
		Where("product_id IN (?)", r.activeProductIDs()).
		Order("score desc").
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query global trending: %w", err)
	}

	return rows, nil
}

// GetTopByCategory is GetTopGlobal scoped to one category.
func (r *TrendingRepository) GetTopByCategory(ctx context.Context, window domain.TimeWindow, categoryID uint64, k int) ([]domain.TrendingScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.TrendingScore
	err := r.DB.WithContext(ctx).
		Where("time_window = ?", window).
		Where("category_id = ?", categoryID).
		Where("product_id IN (?)", r.activeProductIDs()).
		Order("score desc").
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query category trending: %w", err)
	}

	return rows, nil
}

// LastComputedAt reports freshness of a window's table, zero time when empty.
func (r *TrendingRepository) LastComputedAt(ctx context.Context, window domain.TimeWindow) (*domain.TrendingScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var row domain.TrendingScore
	err := r.DB.WithContext(ctx).
		Where("time_window = ?", window).
		Order("computed_at desc").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query trending freshness: %w", err)
	}

	return &row, nil
}

func (r *TrendingRepository) activeProductIDs() *gorm.DB {
	return r.DB.Model(&domain.Product{}).Select("id").Where("is_active = ?", true)
}
