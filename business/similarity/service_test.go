package similarity

import (
	"context"
	"testing"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/config"
)

type fakeEventRepo struct {
	events []domain.Event
}

func (f *fakeEventRepo) GetActiveProductEvents(_ context.Context, _ time.Time) ([]domain.Event, error) {
	return f.events, nil
}

type fakeSimilarityRepo struct {
	replaced     []domain.ItemSimilarity
	replaceCalls int
	staleCalls   int
	keptIDs      []uint64
}

func (f *fakeSimilarityRepo) ReplaceForProducts(_ context.Context, _ []uint64, rows []domain.ItemSimilarity) error {
	f.replaceCalls++
	f.replaced = append(f.replaced, rows...)
	return nil
}

func (f *fakeSimilarityRepo) DeleteStale(_ context.Context, keepProductIDs []uint64) error {
	f.staleCalls++
	f.keptIDs = keepProductIDs
	return nil
}

type fakeCache struct {
	invalidations int
}

func (f *fakeCache) InvalidateSimilarity(_ context.Context) int64 {
	f.invalidations++
	return 1
}

func pipelineConfig() config.RecommenderConfig {
	return config.RecommenderConfig{
		LookbackDays:    90,
		BatchSize:       500,
		TopKSimilar:     50,
		MinCoOccurrence: 1,
	}
}

func TestRun_ComputesAndInvalidates(t *testing.T) {
	repo := &fakeSimilarityRepo{}
	cache := &fakeCache{}
	svc := NewService(&fakeEventRepo{events: []domain.Event{
		interaction(1, 10, domain.EventView),
		interaction(1, 11, domain.EventView),
		interaction(2, 10, domain.EventView),
		interaction(2, 11, domain.EventView),
	}}, repo, cache, pipelineConfig())

	stats, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if stats.Products != 2 || stats.Edges == 0 {
		t.Errorf("stats = %+v, want 2 products and nonzero edges", stats)
	}
	if repo.staleCalls != 1 {
		t.Errorf("DeleteStale calls = %d, want 1", repo.staleCalls)
	}
	if cache.invalidations != 1 {
		t.Errorf("cache invalidations = %d, want 1", cache.invalidations)
	}
}

func TestRun_EmptyWindowStillClearsStaleState(t *testing.T) {
	// a window that drops below two products computes nothing, but last
	// run's edges and cached lookups must not keep serving
	repo := &fakeSimilarityRepo{}
	cache := &fakeCache{}
	svc := NewService(&fakeEventRepo{events: []domain.Event{
		interaction(1, 10, domain.EventView),
	}}, repo, cache, pipelineConfig())

	stats, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if stats.Edges != 0 || stats.Batches != 0 {
		t.Errorf("stats = %+v, want no edges computed", stats)
	}
	if repo.replaceCalls != 0 {
		t.Errorf("ReplaceForProducts calls = %d, want 0", repo.replaceCalls)
	}
	if repo.staleCalls != 1 {
		t.Fatalf("DeleteStale calls = %d, want 1", repo.staleCalls)
	}
	if len(repo.keptIDs) != 1 || repo.keptIDs[0] != 10 {
		t.Errorf("kept ids = %v, want [10]", repo.keptIDs)
	}
	if cache.invalidations != 1 {
		t.Errorf("cache invalidations = %d, want 1", cache.invalidations)
	}
}
