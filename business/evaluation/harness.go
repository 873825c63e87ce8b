package evaluation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"
)

// ---- Repository interfaces ----

type EventRepository interface {
	GetEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
}

type SimilarityRepository interface {
	AggregateNeighbors(ctx context.Context, productIDs []uint64, limit int) ([]domain.NeighborScore, error)
}

// ---- Harness ----

// Harness scores the offline pipelines against held-out interactions. Events
// before the test window are "train"; add_to_cart and purchase events inside
// the window are the ground truth a user's recommendations are judged by.
type Harness struct {
	eventRepo      EventRepository
	similarityRepo SimilarityRepository
}

func NewHarness(eventRepo EventRepository, similarityRepo SimilarityRepository) *Harness {
	return &Harness{
		eventRepo:      eventRepo,
		similarityRepo: similarityRepo,
	}
}

// Metrics holds metric -> k -> value.
type Metrics struct {
	Recall    map[int]float64 `json:"recall"`
	Precision map[int]float64 `json:"precision"`
	HitRate   map[int]float64 `json:"hit_rate"`
	NDCG      map[int]float64 `json:"ndcg"`

	TrainEvents int `json:"train_events"`
	TestEvents  int `json:"test_events"`
	TestUsers   int `json:"test_users"`
}

func (h *Harness) Evaluate(ctx context.Context, testStart, testEnd time.Time, kValues []int) (Metrics, error) {
	if err := ctx.Err(); err != nil {
		return Metrics{}, fmt.Errorf("context error: %w", err)
	}
	if len(kValues) == 0 {
		kValues = []int{5, 10, 20}
	}

	trainCutoff := testStart.Add(-time.Nanosecond)
	trainEvents, err := h.eventRepo.GetEvents(ctx, domain.EventFilter{Until: &trainCutoff})
	if err != nil {
		return Metrics{}, fmt.Errorf("load train events: %w", err)
	}

	testEvents, err := h.eventRepo.GetEvents(ctx, domain.EventFilter{Since: &testStart, Until: &testEnd})
	if err != nil {
		return Metrics{}, fmt.Errorf("load test events: %w", err)
	}

	groundTruth := buildGroundTruth(testEvents)
	if len(groundTruth) == 0 {
		return Metrics{}, fmt.Errorf("no users with relevant items in test period")
	}

	trainByUser := make(map[uint64]map[uint64]struct{})
	for _, e := range trainEvents {
		set, ok := trainByUser[e.UserID]
		if !ok {
			set = make(map[uint64]struct{})
			trainByUser[e.UserID] = set
		}
		set[e.ProductID] = struct{}{}
	}

	maxK := 0
	for _, k := range kValues {
		if k > maxK {
			maxK = k
		}
	}

	recommendations := make(map[uint64][]uint64, len(groundTruth))
	for userID := range groundTruth {
		interacted, ok := trainByUser[userID]
		if !ok || len(interacted) == 0 {
			continue
		}

		recs, err := h.recommendFromSimilarity(ctx, interacted, maxK)
		if err != nil {
			logger.Warn("could not build recommendations for user", "user_id", userID, "error", err)
			continue
		}
		recommendations[userID] = recs
	}

	metrics := computeMetrics(groundTruth, recommendations, kValues)
	metrics.TrainEvents = len(trainEvents)
	metrics.TestEvents = len(testEvents)
	metrics.TestUsers = len(groundTruth)

	return metrics, nil
}

// recommendFromSimilarity ranks candidates by summed similarity against the
// user's train-period products, excluding everything already interacted.
func (h *Harness) recommendFromSimilarity(ctx context.Context, interacted map[uint64]struct{}, k int) ([]uint64, error) {
	sourceIDs := make([]uint64, 0, len(interacted))
	for id := range interacted {
		sourceIDs = append(sourceIDs, id)
	}
	sort.Slice(sourceIDs, func(i, j int) bool { return sourceIDs[i] < sourceIDs[j] })

	// fetch extra so exclusion still leaves k candidates
	candidates, err := h.similarityRepo.AggregateNeighbors(ctx, sourceIDs, k+len(sourceIDs))
	if err != nil {
		return nil, err
	}

	recs := make([]uint64, 0, k)
	for _, c := range candidates {
		if _, seen := interacted[c.ProductID]; seen {
			continue
		}
		recs = append(recs, c.ProductID)
		if len(recs) == k {
			break
		}
	}

	return recs, nil
}

func buildGroundTruth(testEvents []domain.Event) map[uint64]map[uint64]struct{} {
	truth := make(map[uint64]map[uint64]struct{})
	for _, e := range testEvents {
		if e.EventType != domain.EventAddToCart && e.EventType != domain.EventPurchase {
			continue
		}
		set, ok := truth[e.UserID]
		if !ok {
			set = make(map[uint64]struct{})
			truth[e.UserID] = set
		}
		set[e.ProductID] = struct{}{}
	}
	return truth
}

func computeMetrics(
	groundTruth map[uint64]map[uint64]struct{},
	recommendations map[uint64][]uint64,
	kValues []int,
) Metrics {

	m := Metrics{
		Recall:    make(map[int]float64, len(kValues)),
		Precision: make(map[int]float64, len(kValues)),
		HitRate:   make(map[int]float64, len(kValues)),
		NDCG:      make(map[int]float64, len(kValues)),
	}

	for _, k := range kValues {
		var recallSum, precisionSum, ndcgSum float64
		hits := 0
		users := 0

		for userID, actual := range groundTruth {
			predicted, ok := recommendations[userID]
			if !ok {
				continue
			}
			users++

			topK := predicted
			if len(topK) > k {
				topK = topK[:k]
			}

			relevant := 0
			for _, p := range topK {
				if _, ok := actual[p]; ok {
					relevant++
				}
			}

			recallSum += float64(relevant) / float64(len(actual))
			precisionSum += float64(relevant) / float64(k)
			if relevant > 0 {
				hits++
			}
			ndcgSum += ndcg(topK, actual, k)
		}

		if users > 0 {
			m.Recall[k] = recallSum / float64(users)
			m.Precision[k] = precisionSum / float64(users)
			m.HitRate[k] = float64(hits) / float64(users)
			m.NDCG[k] = ndcgSum / float64(users)
		} else {
			m.Recall[k] = 0
			m.Precision[k] = 0
			m.HitRate[k] = 0
			m.NDCG[k] = 0
		}
	}

	return m
}

// ndcg computes normalized discounted cumulative gain with binary relevance.
func ndcg(predicted []uint64, actual map[uint64]struct{}, k int) float64 {
	dcg := 0.0
	for i, p := range predicted {
		if i >= k {
			break
		}
		if _, ok := actual[p]; ok {
			dcg += 1.0 / math.Log2(float64(i)+2)
		}
	}

	n := len(actual)
	if n > k {
		n = k
	}
	ideal := 0.0
	for i := 0; i < n; i++ {
		ideal += 1.0 / math.Log2(float64(i)+2)
	}

	if ideal == 0 {
		return 0
	}
	return dcg / ideal
}

// Format renders the metric table for the CLI.
func (m Metrics) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "train events: %d, test events: %d, test users: %d\n", m.TrainEvents, m.TestEvents, m.TestUsers)

	sections := []struct {
		name   string
		values map[int]float64
	}{
		{"RECALL", m.Recall},
		{"PRECISION", m.Precision},
		{"HIT_RATE", m.HitRate},
		{"NDCG", m.NDCG},
	}

	for _, s := range sections {
		fmt.Fprintf(&b, "\n%s:\n", s.name)
		ks := make([]int, 0, len(s.values))
		for k := range s.values {
			ks = append(ks, k)
		}
		sort.Ints(ks)
		for _, k := range ks {
			fmt.Fprintf(&b, "  @%d: %.4f\n", k, s.values[k])
		}
	}

	return b.String()
}
