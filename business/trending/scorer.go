package trending

import (
	"math"
	"sort"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
)

const hoursPerDay = 24.0

// ScoringTime floors the wall clock to the hour so two runs within the same
// hour over the same event set produce identical rows.
func ScoringTime(now time.Time) time.Time {
	return now.UTC().Truncate(time.Hour)
}

type productAgg struct {
	score      float64
	eventCount int64
}

// ComputeScores aggregates time-decayed popularity per product for one
// window. Each event contributes weight * exp(-lambda * days_ago); the event
// count stays undecayed. categories maps product id to its current category.
// Malformed events (zero or future timestamp, unknown type) are skipped and
// counted, never fatal.
func ComputeScores(
	events []domain.Event,
	categories map[uint64]uint64,
	window domain.TimeWindow,
	lambda float64,
	now time.Time,
) ([]domain.TrendingScore, int) {

	now = ScoringTime(now)
	cutoff := now.AddDate(0, 0, -window.Days())

	aggs := make(map[uint64]*productAgg)
	skipped := 0

	for _, e := range events {
		weight, known := e.EventType.Weight()
		if !known || e.Timestamp.IsZero() || e.Timestamp.After(now) {
			skipped++
			continue
		}
		if e.Timestamp.Before(cutoff) {
			continue
		}

		daysAgo := now.Sub(e.Timestamp).Hours() / hoursPerDay
		decayed := weight * math.Exp(-lambda*daysAgo)

		agg, ok := aggs[e.ProductID]
		if !ok {
			agg = &productAgg{}
			aggs[e.ProductID] = agg
		}
		agg.score += decayed
		agg.eventCount++
	}

	scores := make([]domain.TrendingScore, 0, len(aggs))
	for productID, agg := range aggs {
		scores = append(scores, domain.TrendingScore{
			ProductID:  productID,
			CategoryID: categories[productID],
			TimeWindow: window,
			Score:      agg.score,
			EventCount: agg.eventCount,
			ComputedAt: now,
		})
	}

	// stable output order
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].ProductID < scores[j].ProductID
	})

	return scores, skipped
}
