package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// CacheRepository wraps the Redis client with the never-fatal contract: a
// failed read is a miss, a failed write is a no-op. Callers always hold the
// authoritative computation path.
type CacheRepository struct {
	client *redis.Client
}

func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{
		client: client,
	}
}

// Get unmarshals the cached value into dest. Returns false on miss or on any
// cache failure.
func (r *CacheRepository) Get(ctx context.Context, key string, dest any) bool {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		logger.Warn("cache payload unreadable", "key", key, "error", err)
		return false
	}

	return true
}

// Set stores value under key with a TTL. Failures are logged and swallowed.
func (r *CacheRepository) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// DeletePattern removes every key matching pattern and returns the number
// deleted. Uses SCAN so a large keyspace never blocks the server.
func (r *CacheRepository) DeletePattern(ctx context.Context, pattern string) int64 {
	var deleted int64

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0, 100)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			deleted += r.deleteKeys(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("cache scan failed", "pattern", pattern, "error", err)
	}
	if len(keys) > 0 {
		deleted += r.deleteKeys(ctx, keys)
	}

	return deleted
}

func (r *CacheRepository) deleteKeys(ctx context.Context, keys []string) int64 {
	n, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		logger.Warn("cache delete failed", "error", err)
		return 0
	}
	return n
}

// InvalidateUserRecommendations drops all cached recommendation results for
// one user. Runs synchronously with event ingestion.
func (r *CacheRepository) InvalidateUserRecommendations(ctx context.Context, userExternalID string) int64 {
	return r.DeletePattern(ctx, UserRecommendationPattern(userExternalID))
}

// InvalidateTrending drops trending lists plus every recommendation result,
// since cached recommendations may embed stale trending data.
func (r *CacheRepository) InvalidateTrending(ctx context.Context) int64 {
	n := r.DeletePattern(ctx, TrendingPattern)
	return n + r.DeletePattern(ctx, RecommendationPattern)
}

// InvalidateSimilarity drops similarity lookups plus every recommendation
// result, for the same staleness reason.
func (r *CacheRepository) InvalidateSimilarity(ctx context.Context) int64 {
	n := r.DeletePattern(ctx, SimilarPattern)
	return n + r.DeletePattern(ctx, RecommendationPattern)
}

// FlushAll clears the whole cache keyspace (admin operation).
func (r *CacheRepository) FlushAll(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}
