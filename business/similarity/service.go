package similarity

import (
	"context"
	"fmt"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/config"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/metrics"
)

// ---- Repository interfaces ----

type EventRepository interface {
	GetActiveProductEvents(ctx context.Context, since time.Time) ([]domain.Event, error)
}

type SimilarityRepository interface {
	ReplaceForProducts(ctx context.Context, productIDs []uint64, rows []domain.ItemSimilarity) error
	DeleteStale(ctx context.Context, keepProductIDs []uint64) error
}

type Cache interface {
	InvalidateSimilarity(ctx context.Context) int64
}

// ---- Usecase / Service ----

type Service struct {
	eventRepo      EventRepository
	similarityRepo SimilarityRepository
	cache          Cache
	cfg            config.RecommenderConfig
}

func NewService(
	eventRepo EventRepository,
	similarityRepo SimilarityRepository,
	cache Cache,
	cfg config.RecommenderConfig,
) *Service {
	return &Service{
		eventRepo:      eventRepo,
		similarityRepo: similarityRepo,
		cache:          cache,
		cfg:            cfg,
	}
}

type RunStats struct {
	Users         int
	Products      int
	Edges         int
	Batches       int
	SkippedEvents int
	Duration      time.Duration
}

// Run rebuilds the item_similarity table from the interaction window.
// Products are processed in batches of cfg.BatchSize target products against
// the full matrix; each batch commits in its own transaction, so a mid-run
// failure leaves earlier batches intact and later products untouched — the
// next full run makes the table whole again.
func (s *Service) Run(ctx context.Context) (RunStats, error) {
	if err := ctx.Err(); err != nil {
		return RunStats{}, fmt.Errorf("context error: %w", err)
	}

	started := time.Now()
	computedAt := started.UTC().Truncate(time.Hour)
	cutoff := computedAt.AddDate(0, 0, -s.cfg.LookbackDays)

	events, err := s.eventRepo.GetActiveProductEvents(ctx, cutoff)
	if err != nil {
		return RunStats{}, fmt.Errorf("load interactions: %w", err)
	}

	matrix, skipped := BuildMatrix(events, computedAt)
	if skipped > 0 {
		metrics.MalformedEvents.Add(float64(skipped))
	}

	stats := RunStats{
		Users:         matrix.NumUsers(),
		Products:      matrix.NumProducts(),
		SkippedEvents: skipped,
	}

	if matrix.NumProducts() < 2 {
		// a window that empties of interactions still must not serve last
		// run's edges
		if err := s.similarityRepo.DeleteStale(ctx, matrix.ProductIDs); err != nil {
			return stats, fmt.Errorf("delete stale edges: %w", err)
		}
		invalidated := s.cache.InvalidateSimilarity(ctx)

		logger.Info("not enough products for similarity computation",
			"products", matrix.NumProducts(),
			"cache_invalidated", invalidated,
		)
		stats.Duration = time.Since(started)
		return stats, nil
	}

	logger.Info("computing item similarities",
		"interactions", len(events),
		"users", matrix.NumUsers(),
		"products", matrix.NumProducts(),
		"batch_size", s.cfg.BatchSize,
	)

	engineCfg := EngineConfig{
		TopK:            s.cfg.TopKSimilar,
		MinCoOccurrence: s.cfg.MinCoOccurrence,
	}

	for start := 0; start < matrix.NumProducts(); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("context error: %w", err)
		}

		end := start + s.cfg.BatchSize
		if end > matrix.NumProducts() {
			end = matrix.NumProducts()
		}

		edges := ComputeBatch(matrix, start, end, engineCfg, computedAt)
		batchIDs := matrix.ProductIDs[start:end]

		if err := s.similarityRepo.ReplaceForProducts(ctx, batchIDs, edges); err != nil {
			return stats, fmt.Errorf("save similarity batch %d-%d: %w", start, end, err)
		}

		stats.Edges += len(edges)
		stats.Batches++
		logger.Debug("similarity batch saved", "from", start, "to", end, "edges", len(edges))
	}

	// products that dropped out of the window keep no edges
	if err := s.similarityRepo.DeleteStale(ctx, matrix.ProductIDs); err != nil {
		return stats, fmt.Errorf("delete stale edges: %w", err)
	}

	invalidated := s.cache.InvalidateSimilarity(ctx)

	stats.Duration = time.Since(started)
	metrics.PipelineDuration.WithLabelValues("similarity").Set(stats.Duration.Seconds())
	metrics.PipelineLastSuccess.WithLabelValues("similarity").Set(float64(time.Now().Unix()))

	logger.Info("similarity pipeline complete",
		"edges", stats.Edges,
		"batches", stats.Batches,
		"cache_invalidated", invalidated,
		"duration", stats.Duration,
	)

	return stats, nil
}
