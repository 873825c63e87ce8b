package trending

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

type ProductRepository interface {
	FindAllActive(ctx context.Context) ([]domain.Product, error)
}

type TrendingRepository interface {
	ReplaceWindow(ctx context.Context, window domain.TimeWindow, rows []domain.TrendingScore) error
}

type Cache interface {
	InvalidateTrending(ctx context.Context) int64
}

// ---- Usecase / Service ----

type Service struct {
	eventRepo    EventRepository
	productRepo  ProductRepository
	trendingRepo TrendingRepository
	cache        Cache
	cfg          config.RecommenderConfig
}

func NewService(
	eventRepo EventRepository,
	productRepo ProductRepository,
	trendingRepo TrendingRepository,
	cache Cache,
	cfg config.RecommenderConfig,
) *Service {
	return &Service{
		eventRepo:    eventRepo,
		productRepo:  productRepo,
		trendingRepo: trendingRepo,
		cache:        cache,
		cfg:          cfg,
	}
}

type RunStats struct {
	RowsPerWindow map[domain.TimeWindow]int
	SkippedEvents int
	Duration      time.Duration
}

func (s *Service) lambda(window domain.TimeWindow) float64 {
	if window == domain.Window30d {
		return s.cfg.DecayLambda30d
	}
	return s.cfg.DecayLambda7d
}

// Run recomputes trending scores for the given windows (both by default) and
// fully replaces each window's table. On success every trending-namespaced
// and recommendation-namespaced cache entry is invalidated.
func (s *Service) Run(ctx context.Context, windows []domain.TimeWindow) (RunStats, error) {
	if err := ctx.Err(); err != nil {
		return RunStats{}, fmt.Errorf("context error: %w", err)
	}

	if len(windows) == 0 {
		windows = []domain.TimeWindow{domain.Window7d, domain.Window30d}
	}
	for _, w := range windows {
		if !w.Valid() {
			return RunStats{}, domain.ErrInvalidTimeWindow
		}
	}

	started := time.Now()
	now := ScoringTime(started)

	products, err := s.productRepo.FindAllActive(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("load products: %w", err)
	}
	categories := make(map[uint64]uint64, len(products))
	for _, p := range products {
		categories[p.ID] = p.CategoryID
	}

	stats := RunStats{RowsPerWindow: make(map[domain.TimeWindow]int, len(windows))}

	for _, window := range windows {
		cutoff := now.AddDate(0, 0, -window.Days())

		events, err := s.eventRepo.GetActiveProductEvents(ctx, cutoff)
		if err != nil {
			return RunStats{}, fmt.Errorf("load events for %s window: %w", window, err)
		}

		scores, skipped := ComputeScores(events, categories, window, s.lambda(window), now)
		stats.SkippedEvents += skipped
		if skipped > 0 {
			metrics.MalformedEvents.Add(float64(skipped))
		}

		if err := s.trendingRepo.ReplaceWindow(ctx, window, scores); err != nil {
			return RunStats{}, fmt.Errorf("save %s window: %w", window, err)
		}

		stats.RowsPerWindow[window] = len(scores)
		logger.Info("trending window computed",
			"window", window,
			"events", len(events),
			"rows", len(scores),
			"skipped", skipped,
		)
	}

	// recommendation results may embed stale trending data
	invalidated := s.cache.InvalidateTrending(ctx)

	stats.Duration = time.Since(started)
	metrics.PipelineDuration.WithLabelValues("trending").Set(stats.Duration.Seconds())
	metrics.PipelineLastSuccess.WithLabelValues("trending").Set(float64(time.Now().Unix()))

	logger.Info("trending pipeline complete",
		"windows", len(windows),
		"cache_invalidated", invalidated,
		"duration", stats.Duration,
	)

	return stats, nil
}
