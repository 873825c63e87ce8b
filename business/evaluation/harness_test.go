package evaluation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
)

type fakeEventRepo struct {
	events []domain.Event
}

func (f *fakeEventRepo) GetEvents(_ context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(f.events))
	for _, e := range f.events {
		if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && e.Timestamp.After(*filter.Until) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeSimilarityRepo struct {
	neighbors map[uint64][]domain.NeighborScore
}

func (f *fakeSimilarityRepo) AggregateNeighbors(_ context.Context, productIDs []uint64, limit int) ([]domain.NeighborScore, error) {
	sums := make(map[uint64]float64)
	for _, pid := range productIDs {
		for _, n := range f.neighbors[pid] {
			sums[n.ProductID] += n.Score
		}
	}

	out := make([]domain.NeighborScore, 0, len(sums))
	for id, score := range sums {
		out = append(out, domain.NeighborScore{ProductID: id, Score: score})
	}
	// highest first, ties by id for determinism
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Score > out[i].Score || (out[j].Score == out[i].Score && out[j].ProductID < out[i].ProductID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	testStart = time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	trainTime = testStart.AddDate(0, 0, -10)
	testTime  = testStart.Add(24 * time.Hour)
)

func trainEvent(userID, productID uint64) domain.Event {
	return domain.Event{UserID: userID, ProductID: productID, EventType: domain.EventPurchase, Timestamp: trainTime}
}

func testEvent(userID, productID uint64, eventType domain.EventType) domain.Event {
	return domain.Event{UserID: userID, ProductID: productID, EventType: eventType, Timestamp: testTime}
}

func TestEvaluate_PerfectPredictions(t *testing.T) {
	// user 1 trained on product 10, whose sole neighbor is 20, and then
	// bought 20 in the test window: every metric at k=5 is 1.0
	events := &fakeEventRepo{events: []domain.Event{
		trainEvent(1, 10),
		testEvent(1, 20, domain.EventPurchase),
	}}
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.NeighborScore{
		10: {{ProductID: 20, Score: 0.9}},
	}}

	harness := NewHarness(events, sims)

	m, err := harness.Evaluate(context.Background(), testStart, testEnd, []int{5})
	if err != nil {
		t.Fatal(err)
	}

	if m.Recall[5] != 1.0 {
		t.Errorf("recall@5 = %v, want 1.0", m.Recall[5])
	}
	if m.HitRate[5] != 1.0 {
		t.Errorf("hit rate@5 = %v, want 1.0", m.HitRate[5])
	}
	if math.Abs(m.Precision[5]-0.2) > 1e-9 {
		t.Errorf("precision@5 = %v, want 0.2 (1 relevant of k=5)", m.Precision[5])
	}
	if m.NDCG[5] != 1.0 {
		t.Errorf("ndcg@5 = %v, want 1.0", m.NDCG[5])
	}
	if m.TestUsers != 1 {
		t.Errorf("test users = %d, want 1", m.TestUsers)
	}
}

func TestEvaluate_ViewsAreNotGroundTruth(t *testing.T) {
	events := &fakeEventRepo{events: []domain.Event{
		trainEvent(1, 10),
		testEvent(1, 20, domain.EventView),
	}}
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.NeighborScore{
		10: {{ProductID: 20, Score: 0.9}},
	}}

	harness := NewHarness(events, sims)

	_, err := harness.Evaluate(context.Background(), testStart, testEnd, []int{5})
	if err == nil {
		t.Fatal("view-only test window should yield no evaluable users")
	}
}

func TestEvaluate_ExcludesTrainedProductsFromPredictions(t *testing.T) {
	// the model's top neighbor is the trained product itself; it must be
	// skipped, letting product 21 fill the list
	events := &fakeEventRepo{events: []domain.Event{
		trainEvent(1, 10),
		testEvent(1, 21, domain.EventAddToCart),
	}}
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.NeighborScore{
		10: {{ProductID: 10, Score: 1.0}, {ProductID: 21, Score: 0.3}},
	}}

	harness := NewHarness(events, sims)

	m, err := harness.Evaluate(context.Background(), testStart, testEnd, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	if m.HitRate[1] != 1.0 {
		t.Errorf("hit rate@1 = %v, want 1.0 after excluding the trained product", m.HitRate[1])
	}
}

func TestEvaluate_UsersWithoutTrainHistorySkipped(t *testing.T) {
	// user 2 only appears in the test window; they count toward TestUsers but
	// receive no predictions, dragging averaged metrics down
	events := &fakeEventRepo{events: []domain.Event{
		trainEvent(1, 10),
		testEvent(1, 20, domain.EventPurchase),
		testEvent(2, 20, domain.EventPurchase),
	}}
	sims := &fakeSimilarityRepo{neighbors: map[uint64][]domain.NeighborScore{
		10: {{ProductID: 20, Score: 0.9}},
	}}

	harness := NewHarness(events, sims)

	m, err := harness.Evaluate(context.Background(), testStart, testEnd, []int{5})
	if err != nil {
		t.Fatal(err)
	}
	if m.TestUsers != 2 {
		t.Errorf("test users = %d, want 2", m.TestUsers)
	}
	if m.HitRate[5] != 1.0 {
		t.Errorf("hit rate@5 = %v, want 1.0 over the one predictable user", m.HitRate[5])
	}
}

func TestNDCG_DiscountsLowerRanks(t *testing.T) {
	actual := map[uint64]struct{}{20: {}}

	top := ndcg([]uint64{20, 21}, actual, 2)
	if top != 1.0 {
		t.Errorf("hit at rank 1: ndcg = %v, want 1.0", top)
	}

	second := ndcg([]uint64{21, 20}, actual, 2)
	want := 1.0 / math.Log2(3)
	if math.Abs(second-want) > 1e-9 {
		t.Errorf("hit at rank 2: ndcg = %v, want %v", second, want)
	}
}
