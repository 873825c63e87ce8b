package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/config"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/metrics"
)

// trendingWindow is the window cold-start tiers read from.
const trendingWindow = domain.Window7d

// sameCategoryBoost re-ranks same-category neighbors in similar-product
// lookups. The displayed score stays the raw cosine value.
const sameCategoryBoost = 1.2

// trendingCacheDepth is how many rows a cached trending list holds. The
// trending cache key carries no k, so one deep list serves every request size.
const trendingCacheDepth = 100

// ---- Repository interfaces ----

type UserRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*domain.User, error)
}

type EventRepository interface {
	GetRecentEvents(ctx context.Context, userID uint64, limit int) ([]domain.Event, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

type SimilarityRepository interface {
	GetTopNeighbors(ctx context.Context, productID uint64, k int) ([]domain.ItemSimilarity, error)
}

type TrendingRepository interface {
	GetTopGlobal(ctx context.Context, window domain.TimeWindow, k int) ([]domain.TrendingScore, error)
	GetTopByCategory(ctx context.Context, window domain.TimeWindow, categoryID uint64, k int) ([]domain.TrendingScore, error)
}

type Cache interface {
	GetRecommendation(ctx context.Context, userExternalID string, k int, categoryID uint64) (*domain.RecommendationResult, bool)
	SetRecommendation(ctx context.Context, k int, categoryID uint64, result domain.RecommendationResult)
	GetSimilarProducts(ctx context.Context, productID uint64, k int) ([]domain.ScoredProduct, bool)
	SetSimilarProducts(ctx context.Context, productID uint64, k int, products []domain.ScoredProduct)
	GetTrending(ctx context.Context, window domain.TimeWindow, categoryID uint64) ([]domain.ScoredProduct, bool)
	SetTrending(ctx context.Context, window domain.TimeWindow, categoryID uint64, products []domain.ScoredProduct)
}

// ---- Usecase / Service ----

// Service is the online three-tier policy. It only reads: derived tables are
// written by the pipelines, the cache is populated cache-aside per request,
// and no state is shared between calls.
type Service struct {
	userRepo       UserRepository
	eventRepo      EventRepository
	productRepo    ProductRepository
	similarityRepo SimilarityRepository
	trendingRepo   TrendingRepository
	cache          Cache
	cfg            config.RecommenderConfig
}

func NewService(
	userRepo UserRepository,
	eventRepo EventRepository,
	productRepo ProductRepository,
	similarityRepo SimilarityRepository,
	trendingRepo TrendingRepository,
	cache Cache,
	cfg config.RecommenderConfig,
) *Service {
	return &Service{
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		productRepo:    productRepo,
		similarityRepo: similarityRepo,
		trendingRepo:   trendingRepo,
		cache:          cache,
		cfg:            cfg,
	}
}

// Recommend evaluates the tiers in strict order; the first satisfied tier
// wins:
//
//  1. personalized — the user has history and collaborative filtering yields
//     at least k * PersonalizedMinFraction candidates
//  2. cold_start_category — a category was supplied
//  3. trending — global 7d trending, the universal fallback
//
// A user with no history is a normal input. Store failures surface as
// ErrRecommendationUnavailable so the boundary can tell a system fault apart
// from an empty result, which means "no data yet", never "failure".
func (s *Service) Recommend(ctx context.Context, userExternalID string, k int, categoryID uint64) (domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationResult{}, fmt.Errorf("context error: %w", err)
	}
	if k <= 0 {
		k = 10
	}

	if cached, ok := s.cache.GetRecommendation(ctx, userExternalID, k, categoryID); ok {
		return *cached, nil
	}

	// tier 1: personalized
	recs, qualified, err := s.personalized(ctx, userExternalID, k, categoryID)
	if err != nil {
		return domain.RecommendationResult{}, unavailable(err)
	}
	if qualified {
		return s.finish(ctx, userExternalID, k, categoryID, recs, domain.StrategyPersonalized)
	}

	// tier 2: cold start with category
	if categoryID != 0 {
		rows, err := s.trendingRepo.GetTopByCategory(ctx, trendingWindow, categoryID, k)
		if err != nil {
			return domain.RecommendationResult{}, unavailable(fmt.Errorf("load category trending: %w", err))
		}
		recs, err := s.fromTrendingRows(ctx, rows)
		if err != nil {
			return domain.RecommendationResult{}, unavailable(err)
		}
		return s.finish(ctx, userExternalID, k, categoryID, recs, domain.StrategyColdStartCategory)
	}

	// tier 3: global trending
	rows, err := s.trendingRepo.GetTopGlobal(ctx, trendingWindow, k)
	if err != nil {
		return domain.RecommendationResult{}, unavailable(fmt.Errorf("load global trending: %w", err))
	}
	recs, err = s.fromTrendingRows(ctx, rows)
	if err != nil {
		return domain.RecommendationResult{}, unavailable(err)
	}
	return s.finish(ctx, userExternalID, k, categoryID, recs, domain.StrategyTrending)
}

// unavailable types a store failure on the serving path. errors.Is matches
// domain.ErrRecommendationUnavailable; the cause stays in the message.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrRecommendationUnavailable, err)
}

// personalized runs item-to-item collaborative filtering over the user's
// recent events. Returns qualified=false when the user has no history or the
// candidate pool is below the quality floor, in which case control falls
// through to the cold-start tiers.
func (s *Service) personalized(ctx context.Context, userExternalID string, k int, categoryID uint64) ([]domain.ScoredProduct, bool, error) {
	user, err := s.userRepo.FindByExternalID(ctx, userExternalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load user: %w", err)
	}

	events, err := s.eventRepo.GetRecentEvents(ctx, user.ID, s.cfg.RecentEventsLimit)
	if err != nil {
		return nil, false, fmt.Errorf("load recent events: %w", err)
	}
	if len(events) == 0 {
		return nil, false, nil
	}

	interacted := make(map[uint64]struct{}, len(events))
	for _, e := range events {
		interacted[e.ProductID] = struct{}{}
	}

	// accumulate neighbor scores weighted by the source event's strength
	scores := make(map[uint64]float64)
	for _, e := range events {
		weight, known := e.EventType.Weight()
		if !known {
			weight = 1.0
		}

		neighbors, err := s.similarityRepo.GetTopNeighbors(ctx, e.ProductID, s.cfg.NeighborLookupK)
		if err != nil {
			return nil, false, fmt.Errorf("load similarity neighbors: %w", err)
		}

		for _, n := range neighbors {
			if _, seen := interacted[n.SimilarProductID]; seen {
				continue
			}
			scores[n.SimilarProductID] += n.SimilarityScore * weight
		}
	}

	candidateIDs := make([]uint64, 0, len(scores))
	for id := range scores {
		candidateIDs = append(candidateIDs, id)
	}

	products, err := s.productRepo.FindByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, false, fmt.Errorf("load candidate products: %w", err)
	}

	candidates := make([]domain.ScoredProduct, 0, len(products))
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		candidates = append(candidates, domain.ScoredProduct{
			Product: p,
			Score:   scores[p.ID],
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Product.ID < candidates[j].Product.ID
	})

	// quality floor: a sparse personalized list falls through to trending
	minCandidates := int(float64(k) * s.cfg.PersonalizedMinFraction)
	if len(candidates) < minCandidates {
		logger.Debug("personalized tier below quality floor",
			"user", userExternalID,
			"candidates", len(candidates),
			"floor", minCandidates,
		)
		return nil, false, nil
	}

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	return candidates, true, nil
}

// fromTrendingRows resolves trending rows into ranked products, keeping the
// repository's score order.
func (s *Service) fromTrendingRows(ctx context.Context, rows []domain.TrendingScore) ([]domain.ScoredProduct, error) {
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load trending products: %w", err)
	}

	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	recs := make([]domain.ScoredProduct, 0, len(rows))
	for _, row := range rows {
		p, ok := byID[row.ProductID]
		if !ok {
			continue
		}
		recs = append(recs, domain.ScoredProduct{
			Product: p,
			Score:   row.Score,
			Rank:    len(recs) + 1,
		})
	}

	return recs, nil
}

func (s *Service) finish(ctx context.Context, userExternalID string, k int, categoryID uint64, recs []domain.ScoredProduct, strategy domain.Strategy) (domain.RecommendationResult, error) {
	result := domain.RecommendationResult{
		UserID:          userExternalID,
		Recommendations: recs,
		Strategy:        strategy,
		GeneratedAt:     time.Now().UTC(),
	}

	s.cache.SetRecommendation(ctx, k, categoryID, result)
	metrics.RecommendTotal.WithLabelValues(string(strategy)).Inc()

	return result, nil
}

// SimilarProducts returns the k best neighbors of a product, cache-aside.
// Same-category neighbors get a 20% re-rank boost; the returned score is the
// stored cosine value.
func (s *Service) SimilarProducts(ctx context.Context, productID uint64, k int) ([]domain.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if k <= 0 {
		k = 10
	}

	source, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.GetSimilarProducts(ctx, productID, k); ok {
		return cached, nil
	}

	// fetch extra candidates so the boost has room to reorder
	neighbors, err := s.similarityRepo.GetTopNeighbors(ctx, productID, k*3)
	if err != nil {
		return nil, fmt.Errorf("load similarity neighbors: %w", err)
	}

	ids := make([]uint64, 0, len(neighbors))
	for _, n := range neighbors {
		ids = append(ids, n.SimilarProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load neighbor products: %w", err)
	}
	byID := make(map[uint64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	type ranked struct {
		product  domain.Product
		score    float64
		adjusted float64
	}

	rankedList := make([]ranked, 0, len(neighbors))
	for _, n := range neighbors {
		p, ok := byID[n.SimilarProductID]
		if !ok || !p.IsActive {
			continue
		}
		adjusted := n.SimilarityScore
		if p.CategoryID != 0 && p.CategoryID == source.CategoryID {
			adjusted *= sameCategoryBoost
		}
		rankedList = append(rankedList, ranked{
			product:  p,
			score:    n.SimilarityScore,
			adjusted: adjusted,
		})
	}

	sort.Slice(rankedList, func(i, j int) bool {
		if rankedList[i].adjusted != rankedList[j].adjusted {
			return rankedList[i].adjusted > rankedList[j].adjusted
		}
		return rankedList[i].product.ID < rankedList[j].product.ID
	})

	if len(rankedList) > k {
		rankedList = rankedList[:k]
	}

	out := make([]domain.ScoredProduct, 0, len(rankedList))
	for i, r := range rankedList {
		out = append(out, domain.ScoredProduct{
			Product: r.product,
			Score:   r.score,
			Rank:    i + 1,
		})
	}

	s.cache.SetSimilarProducts(ctx, productID, k, out)

	return out, nil
}

// Trending returns the top trending products for a window, optionally scoped
// to a category, cache-aside.
func (s *Service) Trending(ctx context.Context, window domain.TimeWindow, categoryID uint64, k int) ([]domain.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if !window.Valid() {
		return nil, domain.ErrInvalidTimeWindow
	}
	if k <= 0 {
		k = 10
	}
	if k > trendingCacheDepth {
		k = trendingCacheDepth
	}

	if cached, ok := s.cache.GetTrending(ctx, window, categoryID); ok {
		if len(cached) > k {
			cached = cached[:k]
		}
		return cached, nil
	}

	var (
		rows []domain.TrendingScore
		err  error
	)
	if categoryID != 0 {
		rows, err = s.trendingRepo.GetTopByCategory(ctx, window, categoryID, trendingCacheDepth)
	} else {
		rows, err = s.trendingRepo.GetTopGlobal(ctx, window, trendingCacheDepth)
	}
	if err != nil {
		return nil, fmt.Errorf("load trending: %w", err)
	}

	recs, err := s.fromTrendingRows(ctx, rows)
	if err != nil {
		return nil, err
	}

	s.cache.SetTrending(ctx, window, categoryID, recs)

	if len(recs) > k {
		recs = recs[:k]
	}
	return recs, nil
}
