package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- Fakes ----

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) FindByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	u, ok := f.users[externalID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type fakeEventRepo struct {
	events map[uint64][]domain.Event
}

func (f *fakeEventRepo) GetRecentEvents(_ context.Context, userID uint64, limit int) ([]domain.Event, error) {
	evs := f.events[userID]
	if len(evs) > limit {
		evs = evs[:limit]
	}
	return evs, nil
}

type fakeProductRepo struct {
	products map[uint64]domain.Product
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) FindByIDs(_ context.Context, ids []uint64) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSimilarityRepo struct {
	neighbors map[uint64][]domain.ItemSimilarity
}

func (f *fakeSimilarityRepo) GetTopNeighbors(_ context.Context, productID uint64, k int) ([]domain.ItemSimilarity, error) {
	ns := f.neighbors[productID]
	if len(ns) > k {
		ns = ns[:k]
	}
	return ns, nil
}

type fakeTrendingRepo struct {
	global     []domain.TrendingScore
	byCategory map[uint64][]domain.TrendingScore
	err        error

	globalCalls   int
	categoryCalls int
}

func (f *fakeTrendingRepo) GetTopGlobal(_ context.Context, _ domain.TimeWindow, k int) ([]domain.TrendingScore, error) {
	f.globalCalls++
	if f.err != nil {
		return nil, f.err
	}
	rows := f.global
	if len(rows) > k {
		rows = rows[:k]
	}
	return rows, nil
}

func (f *fakeTrendingRepo) GetTopByCategory(_ context.Context, _ domain.TimeWindow, categoryID uint64, k int) ([]domain.TrendingScore, error) {
	f.categoryCalls++
	if f.err != nil {
		return nil, f.err
	}
	rows := f.byCategory[categoryID]
	if len(rows) > k {
		rows = rows[:k]
	}
	return rows, nil
}

type fakeCache struct {
	recSets      int
	simSets      int
	trendingSets int
}

func (f *fakeCache) GetRecommendation(context.Context, string, int, uint64) (*domain.RecommendationResult, bool) {
	return nil, false
}

func (f *fakeCache) SetRecommendation(context.Context, int, uint64, domain.RecommendationResult) {
	f.recSets++
}

func (f *fakeCache) GetSimilarProducts(context.Context, uint64, int) ([]domain.ScoredProduct, bool) {
	return nil, false
}

func (f *fakeCache) SetSimilarProducts(context.Context, uint64, int, []domain.ScoredProduct) {
	f.simSets++
}

func (f *fakeCache) GetTrending(context.Context, domain.TimeWindow, uint64) ([]domain.ScoredProduct, bool) {
	return nil, false
}

func (f *fakeCache) SetTrending(context.Context, domain.TimeWindow, uint64, []domain.ScoredProduct) {
	f.trendingSets++
}

func testConfig() config.RecommenderConfig {
	return config.RecommenderConfig{
		LookbackDays:            90,
		DecayLambda7d:           0.3,
		DecayLambda30d:          0.1,
		BatchSize:               500,
		TopKSimilar:             50,
		NeighborLookupK:         20,
		MinCoOccurrence:         2,
		RecentEventsLimit:       50,
		PersonalizedMinFraction: 0.5,
	}
}

func activeProduct(id, categoryID uint64) domain.Product {
	return domain.Product{ID: id, Name: "p", CategoryID: categoryID, IsActive: true}
}

func edge(from, to uint64, score float64) domain.ItemSimilarity {
	return domain.ItemSimilarity{ProductID: from, SimilarProductID: to, SimilarityScore: score, CoOccurrenceCount: 3}
}

func newTestService(
	users *fakeUserRepo,
	events *fakeEventRepo,
	products *fakeProductRepo,
	sims *fakeSimilarityRepo,
	trendings *fakeTrendingRepo,
	cache *fakeCache,
) *Service {
	return NewService(users, events, products, sims, trendings, cache, testConfig())
}

// ---- Tests ----

func TestRecommend_PersonalizedScoring(t *testing.T) {
	// user purchased product 5 (weight 5.0) and viewed product 1 (weight 1.0);
	// 5's neighbors are (10, 0.8), (11, 0.6); 1's neighbor is (10, 0.3);
	// expected: product 10 = 0.8*5.0 + 0.3*1.0 = 4.3, product 11 = 0.6*5.0 = 3.0
	ts := time.Now().UTC()
	users := &fakeUserRepo{users: map[string]*domain.User{"u1": {ID: 1, ExternalID: "u1"}}}
	events := &fakeEventRepo{events: map[uint64][]domain.Event{
		1: {
			{UserID: 1, ProductID: 5, EventType: domain.EventPurchase, Timestamp: ts},
			{UserID: 1, ProductID: 1, EventType: domain.EventView, Timestamp: ts},
		},
	}}
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		1:  activeProduct(1, 2),
		5:  activeProduct(5, 2),
		10: activeProduct(10, 2),
		11: activeProduct(11, 3),
	}}
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.ItemSimilarity{
		5: {edge(5, 10, 0.8), edge(5, 11, 0.6)},
		1: {edge(1, 10, 0.3)},
	}}
	trendings := &fakeTrendingRepo{}
	cache := &fakeCache{}

	svc := newTestService(users, events, products, sims, trendings, cache)

	result, err := svc.Recommend(context.Background(), "u1", 4, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyPersonalized, result.Strategy)
	require.Len(t, result.Recommendations, 2)

	assert.Equal(t, uint64(10), result.Recommendations[0].Product.ID)
	assert.InDelta(t, 4.3, result.Recommendations[0].Score, 1e-9)
	assert.Equal(t, 1, result.Recommendations[0].Rank)

	assert.Equal(t, uint64(11), result.Recommendations[1].Product.ID)
	assert.InDelta(t, 3.0, result.Recommendations[1].Score, 1e-9)
	assert.Equal(t, 2, result.Recommendations[1].Rank)

	assert.Equal(t, 1, cache.recSets)
	assert.Zero(t, trendings.globalCalls)
}

func TestRecommend_NeverRecommendsInteractedProducts(t *testing.T) {
	ts := time.Now().UTC()
	users := &fakeUserRepo{users: map[string]*domain.User{"u1": {ID: 1, ExternalID: "u1"}}}
	events := &fakeEventRepo{events: map[uint64][]domain.Event{
		1: {
			{UserID: 1, ProductID: 5, EventType: domain.EventPurchase, Timestamp: ts},
			{UserID: 1, ProductID: 6, EventType: domain.EventView, Timestamp: ts},
		},
	}}
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		5:  activeProduct(5, 0),
		6:  activeProduct(6, 0),
		10: activeProduct(10, 0),
	}}
	// 5's strongest neighbor is 6, which the user already saw
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.ItemSimilarity{
		5: {edge(5, 6, 0.9), edge(5, 10, 0.4)},
		6: {edge(6, 5, 0.9), edge(6, 10, 0.2)},
	}}

	svc := newTestService(users, events, products, sims, &fakeTrendingRepo{}, &fakeCache{})

	result, err := svc.Recommend(context.Background(), "u1", 2, 0)
	require.NoError(t, err)

	for _, rec := range result.Recommendations {
		assert.NotEqual(t, uint64(5), rec.Product.ID)
		assert.NotEqual(t, uint64(6), rec.Product.ID)
	}
}

func TestRecommend_ColdStartWithCategory(t *testing.T) {
	trendings := &fakeTrendingRepo{
		byCategory: map[uint64][]domain.TrendingScore{
			3: {
				{ProductID: 20, CategoryID: 3, TimeWindow: domain.Window7d, Score: 9.5},
				{ProductID: 21, CategoryID: 3, TimeWindow: domain.Window7d, Score: 7.1},
			},
		},
	}
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		20: activeProduct(20, 3),
		21: activeProduct(21, 3),
	}}

	svc := newTestService(
		&fakeUserRepo{users: map[string]*domain.User{}},
		&fakeEventRepo{},
		products,
		&fakeSimilarityRepo{},
		trendings,
		&fakeCache{},
	)

	result, err := svc.Recommend(context.Background(), "newcomer", 10, 3)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyColdStartCategory, result.Strategy)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, uint64(20), result.Recommendations[0].Product.ID)
	assert.InDelta(t, 9.5, result.Recommendations[0].Score, 1e-9)
	assert.Equal(t, 1, trendings.categoryCalls)
	assert.Zero(t, trendings.globalCalls)
}

func TestRecommend_GlobalTrendingFallback(t *testing.T) {
	trendings := &fakeTrendingRepo{
		global: []domain.TrendingScore{
			{ProductID: 30, TimeWindow: domain.Window7d, Score: 12.0},
		},
	}
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		30: activeProduct(30, 1),
	}}

	svc := newTestService(
		&fakeUserRepo{users: map[string]*domain.User{}},
		&fakeEventRepo{},
		products,
		&fakeSimilarityRepo{},
		trendings,
		&fakeCache{},
	)

	result, err := svc.Recommend(context.Background(), "newcomer", 10, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyTrending, result.Strategy)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, uint64(30), result.Recommendations[0].Product.ID)
}

func TestRecommend_QualityFloorFallsThrough(t *testing.T) {
	// one weak candidate against k=10 and min fraction 0.5: the personalized
	// tier is discarded and global trending serves the request
	ts := time.Now().UTC()
	users := &fakeUserRepo{users: map[string]*domain.User{"u1": {ID: 1, ExternalID: "u1"}}}
	events := &fakeEventRepo{events: map[uint64][]domain.Event{
		1: {{UserID: 1, ProductID: 5, EventType: domain.EventView, Timestamp: ts}},
	}}
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		5:  activeProduct(5, 0),
		10: activeProduct(10, 0),
		30: activeProduct(30, 0),
	}}
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.ItemSimilarity{
		5: {edge(5, 10, 0.4)},
	}}
	trendings := &fakeTrendingRepo{
		global: []domain.TrendingScore{{ProductID: 30, TimeWindow: domain.Window7d, Score: 3.3}},
	}

	svc := newTestService(users, events, products, sims, trendings, &fakeCache{})

	result, err := svc.Recommend(context.Background(), "u1", 10, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyTrending, result.Strategy)
	assert.Equal(t, 1, trendings.globalCalls)
}

func TestRecommend_StoreFailureIsTyped(t *testing.T) {
	// a dead store must surface as the unavailability error, not a generic
	// failure, so the boundary can answer 503 instead of 500
	trendings := &fakeTrendingRepo{err: errors.New("connection refused")}

	svc := newTestService(
		&fakeUserRepo{users: map[string]*domain.User{}},
		&fakeEventRepo{},
		&fakeProductRepo{products: map[uint64]domain.Product{}},
		&fakeSimilarityRepo{},
		trendings,
		&fakeCache{},
	)

	_, err := svc.Recommend(context.Background(), "u1", 10, 0)
	assert.ErrorIs(t, err, domain.ErrRecommendationUnavailable)

	_, err = svc.Recommend(context.Background(), "u1", 10, 3)
	assert.ErrorIs(t, err, domain.ErrRecommendationUnavailable)
}

func TestRecommend_InactiveProductsFiltered(t *testing.T) {
	ts := time.Now().UTC()
	users := &fakeUserRepo{users: map[string]*domain.User{"u1": {ID: 1, ExternalID: "u1"}}}
	events := &fakeEventRepo{events: map[uint64][]domain.Event{
		1: {{UserID: 1, ProductID: 5, EventType: domain.EventPurchase, Timestamp: ts}},
	}}
	inactive := activeProduct(11, 0)
	inactive.IsActive = false
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		5:  activeProduct(5, 0),
		10: activeProduct(10, 0),
		11: inactive,
	}}
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.ItemSimilarity{
		5: {edge(5, 11, 0.9), edge(5, 10, 0.8)},
	}}

	svc := newTestService(users, events, products, sims, &fakeTrendingRepo{}, &fakeCache{})

	result, err := svc.Recommend(context.Background(), "u1", 2, 0)
	require.NoError(t, err)
	require.Equal(t, domain.StrategyPersonalized, result.Strategy)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, uint64(10), result.Recommendations[0].Product.ID)
}

func TestSimilarProducts_CategoryBoostReordersButKeepsRawScore(t *testing.T) {
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		1: activeProduct(1, 10),
		2: activeProduct(2, 20),
		3: activeProduct(3, 10),
	}}
	// raw order is 2 (0.5) then 3 (0.45); the same-category boost lifts
	// 3 to 0.54 adjusted, so it ranks first while keeping its raw score
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.ItemSimilarity{
		1: {edge(1, 2, 0.5), edge(1, 3, 0.45)},
	}}
	cache := &fakeCache{}

	svc := newTestService(
		&fakeUserRepo{users: map[string]*domain.User{}},
		&fakeEventRepo{},
		products,
		sims,
		&fakeTrendingRepo{},
		cache,
	)

	similar, err := svc.SimilarProducts(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, similar, 2)

	assert.Equal(t, uint64(3), similar[0].Product.ID)
	assert.InDelta(t, 0.45, similar[0].Score, 1e-9)
	assert.Equal(t, uint64(2), similar[1].Product.ID)
	assert.InDelta(t, 0.5, similar[1].Score, 1e-9)
	assert.Equal(t, 1, cache.simSets)
}

func TestSimilarProducts_UnknownProduct(t *testing.T) {
	svc := newTestService(
		&fakeUserRepo{users: map[string]*domain.User{}},
		&fakeEventRepo{},
		&fakeProductRepo{products: map[uint64]domain.Product{}},
		&fakeSimilarityRepo{},
		&fakeTrendingRepo{},
		&fakeCache{},
	)

	_, err := svc.SimilarProducts(context.Background(), 99, 5)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestTrending_CacheAside(t *testing.T) {
	trendings := &fakeTrendingRepo{
		global: []domain.TrendingScore{
			{ProductID: 30, TimeWindow: domain.Window7d, Score: 12.0},
			{ProductID: 31, TimeWindow: domain.Window7d, Score: 8.0},
		},
	}
	products := &fakeProductRepo{products: map[uint64]domain.Product{
		30: activeProduct(30, 1),
		31: activeProduct(31, 1),
	}}
	cache := &fakeCache{}

	svc := newTestService(
		&fakeUserRepo{users: map[string]*domain.User{}},
		&fakeEventRepo{},
		products,
		&fakeSimilarityRepo{},
		trendings,
		cache,
	)

	got, err := svc.Trending(context.Background(), domain.Window7d, 0, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(30), got[0].Product.ID)
	assert.Equal(t, 1, cache.trendingSets)

	_, err = svc.Trending(context.Background(), domain.TimeWindow("90d"), 0, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeWindow)
}
