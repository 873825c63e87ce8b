package postgres

import (
	"context"
	"fmt"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"

	"gorm.io/gorm"
)

type SimilarityRepository struct {
	DB *gorm.DB
}

func NewSimilarityRepository(db *gorm.DB) *SimilarityRepository {
	return &SimilarityRepository{
		DB: db,
	}
}

// ReplaceForProducts commits one pipeline batch: all existing edges for the
// batch's source products are deleted and the fresh edges inserted in a
// single transaction. A batch that fails mid-way leaves no partial state.
func (r *SimilarityRepository) ReplaceForProducts(ctx context.Context, productIDs []uint64, rows []domain.ItemSimilarity) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(productIDs) == 0 {
		return nil
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id IN ?", productIDs).Delete(&domain.ItemSimilarity{}).Error; err != nil {
			return fmt.Errorf("failed to clear similarity batch: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert similarity edges: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace similarity edges: %w", err)
	}

	return nil
}

// DeleteStale removes edges for source products not processed in the current
// run (products that dropped out of the interaction window).
func (r *SimilarityRepository) DeleteStale(ctx context.Context, keepProductIDs []uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx)
	if len(keepProductIDs) > 0 {
		q = q.Where("product_id NOT IN ?", keepProductIDs)
	}

	if err := q.Delete(&domain.ItemSimilarity{}).Error; err != nil {
		return fmt.Errorf("failed to delete stale similarity edges: %w", err)
	}

	return nil
}

// GetTopNeighbors returns the k strongest outgoing edges of a product,
// restricted to active neighbor products.
func (r *SimilarityRepository) GetTopNeighbors(ctx context.Context, productID uint64, k int) ([]domain.ItemSimilarity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ItemSimilarity
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("similar_product_id IN (?)", r.activeProductIDs()).
		Order("similarity_score desc").
		Limit(k).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query similarity neighbors: %w", err)
	}

	return rows, nil
}

// AggregateNeighbors sums similarity scores of neighbors across a set of
// source products, strongest candidates first.
func (r *SimilarityRepository) AggregateNeighbors(ctx context.Context, productIDs []uint64, limit int) ([]domain.NeighborScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(productIDs) == 0 {
		return []domain.NeighborScore{}, nil
	}

	var rows []domain.NeighborScore
	err := r.DB.WithContext(ctx).
		Model(&domain.ItemSimilarity{}).
		Select("similar_product_id AS product_id, SUM(similarity_score) AS score").
		Where("product_id IN ?", productIDs).
		Group("similar_product_id").
		Order("score desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate similarity neighbors: %w", err)
	}

	return rows, nil
}

// LastComputedAt reports freshness of the similarity table.
func (r *SimilarityRepository) LastComputedAt(ctx context.Context) (*domain.ItemSimilarity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var row domain.ItemSimilarity
	err := r.DB.WithContext(ctx).Order("computed_at desc").First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query similarity freshness: %w", err)
	}

	return &row, nil
}

func (r *SimilarityRepository) activeProductIDs() *gorm.DB {
	return r.DB.Model(&domain.Product{}).Select("id").Where("is_active = ?", true)
}
