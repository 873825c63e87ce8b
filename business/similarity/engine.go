package similarity

import (
	"sort"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
)

type EngineConfig struct {
	TopK            int
	MinCoOccurrence int
}

type candidate struct {
	productID uint64
	score     float64
	coCount   int64
}

// ComputeBatch computes similarity edges for the target products at column
// indices [start, end) against the full matrix.
//
// The similarity of a pair is the cosine of their weighted columns; the
// co-occurrence count is the number of users with nonzero interaction on
// both, taken from the same merged walk over the binary pattern. Pairs below
// the co-occurrence threshold and self-pairs are discarded; survivors are
// ranked by score desc, co-occurrence desc, product id asc, capped at TopK.
func ComputeBatch(m *Matrix, start, end int, cfg EngineConfig, computedAt time.Time) []domain.ItemSimilarity {
	if start < 0 {
		start = 0
	}
	if end > m.NumProducts() {
		end = m.NumProducts()
	}

	edges := make([]domain.ItemSimilarity, 0, (end-start)*cfg.TopK/2)

	for i := start; i < end; i++ {
		candidates := make([]candidate, 0, 64)

		for j := 0; j < m.NumProducts(); j++ {
			if j == i {
				continue
			}

			dot, co := dotAndCoOccurrence(m.cols[i], m.cols[j])
			if co < int64(cfg.MinCoOccurrence) {
				continue
			}

			score := cosine(dot, m.norms[i], m.norms[j])
			if score <= 0 {
				continue
			}

			candidates = append(candidates, candidate{
				productID: m.ProductIDs[j],
				score:     score,
				coCount:   co,
			})
		}

		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].score != candidates[b].score {
				return candidates[a].score > candidates[b].score
			}
			if candidates[a].coCount != candidates[b].coCount {
				return candidates[a].coCount > candidates[b].coCount
			}
			return candidates[a].productID < candidates[b].productID
		})

		if len(candidates) > cfg.TopK {
			candidates = candidates[:cfg.TopK]
		}

		for _, c := range candidates {
			edges = append(edges, domain.ItemSimilarity{
				ProductID:         m.ProductIDs[i],
				SimilarProductID:  c.productID,
				SimilarityScore:   c.score,
				CoOccurrenceCount: c.coCount,
				ComputedAt:        computedAt,
			})
		}
	}

	return edges
}

// dotAndCoOccurrence merges two sorted columns, returning the weighted dot
// product and the count of users present in both.
func dotAndCoOccurrence(a, b []cell) (float64, int64) {
	dot := 0.0
	var co int64

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].user == b[j].user:
			dot += a[i].weight * b[j].weight
			co++
			i++
			j++
		case a[i].user < b[j].user:
			i++
		default:
			j++
		}
	}

	return dot, co
}

// cosine with the zero-norm convention: an isolated product is similar to
// nothing, not NaN.
func cosine(dot, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	s := dot / (normA * normB)
	if s > 1 {
		// float round-off on identical columns
		s = 1
	}
	return s
}
