package redis

import (
	"context"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/config"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/metrics"
)

// RecommendationCache layers the key schema and TTL policy on top of the raw
// cache repository. All policy-facing caching goes through here.
type RecommendationCache struct {
	*CacheRepository

	recTTL      time.Duration
	simTTL      time.Duration
	trendingTTL time.Duration
}

func NewRecommendationCache(repo *CacheRepository, ttl config.CacheTTLConfig) *RecommendationCache {
	return &RecommendationCache{
		CacheRepository: repo,
		recTTL:          time.Duration(ttl.Recommendations) * time.Second,
		simTTL:          time.Duration(ttl.SimilarProducts) * time.Second,
		trendingTTL:     time.Duration(ttl.Trending) * time.Second,
	}
}

func (c *RecommendationCache) GetRecommendation(ctx context.Context, userExternalID string, k int, categoryID uint64) (*domain.RecommendationResult, bool) {
	var result domain.RecommendationResult
	if c.Get(ctx, RecommendationKey(userExternalID, k, categoryID), &result) {
		metrics.CacheHits.WithLabelValues("rec").Inc()
		return &result, true
	}
	metrics.CacheMisses.WithLabelValues("rec").Inc()
	return nil, false
}

func (c *RecommendationCache) SetRecommendation(ctx context.Context, k int, categoryID uint64, result domain.RecommendationResult) {
	c.Set(ctx, RecommendationKey(result.UserID, k, categoryID), result, c.recTTL)
}

func (c *RecommendationCache) GetSimilarProducts(ctx context.Context, productID uint64, k int) ([]domain.ScoredProduct, bool) {
	var products []domain.ScoredProduct
	if c.Get(ctx, SimilarProductsKey(productID, k), &products) {
		metrics.CacheHits.WithLabelValues("sim").Inc()
		return products, true
	}
	metrics.CacheMisses.WithLabelValues("sim").Inc()
	return nil, false
}

func (c *RecommendationCache) SetSimilarProducts(ctx context.Context, productID uint64, k int, products []domain.ScoredProduct) {
	c.Set(ctx, SimilarProductsKey(productID, k), products, c.simTTL)
}

func (c *RecommendationCache) GetTrending(ctx context.Context, window domain.TimeWindow, categoryID uint64) ([]domain.ScoredProduct, bool) {
	var products []domain.ScoredProduct
	if c.Get(ctx, TrendingKey(window, categoryID), &products) {
		metrics.CacheHits.WithLabelValues("trending").Inc()
		return products, true
	}
	metrics.CacheMisses.WithLabelValues("trending").Inc()
	return nil, false
}

func (c *RecommendationCache) SetTrending(ctx context.Context, window domain.TimeWindow, categoryID uint64, products []domain.ScoredProduct) {
	c.Set(ctx, TrendingKey(window, categoryID), products, c.trendingTTL)
}
