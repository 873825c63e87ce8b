package similarity

import (
	"math"
	"sort"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
)

// cell is one nonzero entry in a product column: which user interacted and
// with what accumulated weight.
type cell struct {
	user   int
	weight float64
}

// Matrix is the weighted user-product interaction matrix in product-major
// sparse form, with explicit id<->index mappings. Only users and products
// with at least one interaction in the window are present; products absent
// here get no similarity edges and fall back to trending downstream.
type Matrix struct {
	UserIDs    []uint64
	ProductIDs []uint64

	userIdx    map[uint64]int
	productIdx map[uint64]int

	// cols[p] is sorted by user index; norms[p] is the L2 norm of column p.
	cols  [][]cell
	norms []float64
}

// BuildMatrix accumulates event weights per (user, product) pair. Malformed
// events (zero or future timestamp, unknown type) are skipped and counted,
// matching the trending scorer. No time decay is applied here: similarity
// uses raw interaction strength over the lookback window.
func BuildMatrix(events []domain.Event, now time.Time) (*Matrix, int) {
	type pairKey struct {
		user    uint64
		product uint64
	}

	weights := make(map[pairKey]float64)
	skipped := 0

	for _, e := range events {
		w, known := e.EventType.Weight()
		if !known || e.Timestamp.IsZero() || e.Timestamp.After(now) {
			skipped++
			continue
		}
		weights[pairKey{user: e.UserID, product: e.ProductID}] += w
	}

	userSet := make(map[uint64]struct{})
	productSet := make(map[uint64]struct{})
	for k := range weights {
		userSet[k.user] = struct{}{}
		productSet[k.product] = struct{}{}
	}

	m := &Matrix{
		UserIDs:    sortedIDs(userSet),
		ProductIDs: sortedIDs(productSet),
	}

	m.userIdx = make(map[uint64]int, len(m.UserIDs))
	for i, id := range m.UserIDs {
		m.userIdx[id] = i
	}
	m.productIdx = make(map[uint64]int, len(m.ProductIDs))
	for i, id := range m.ProductIDs {
		m.productIdx[id] = i
	}

	m.cols = make([][]cell, len(m.ProductIDs))
	for k, w := range weights {
		p := m.productIdx[k.product]
		m.cols[p] = append(m.cols[p], cell{user: m.userIdx[k.user], weight: w})
	}

	m.norms = make([]float64, len(m.cols))
	for p, col := range m.cols {
		sort.Slice(col, func(i, j int) bool { return col[i].user < col[j].user })

		sum := 0.0
		for _, c := range col {
			sum += c.weight * c.weight
		}
		m.norms[p] = math.Sqrt(sum)
	}

	return m, skipped
}

func (m *Matrix) NumUsers() int {
	return len(m.UserIDs)
}

func (m *Matrix) NumProducts() int {
	return len(m.ProductIDs)
}

// Weight returns the accumulated interaction weight for (userID, productID),
// zero when either id is absent from the window.
func (m *Matrix) Weight(userID, productID uint64) float64 {
	p, ok := m.productIdx[productID]
	if !ok {
		return 0
	}
	u, ok := m.userIdx[userID]
	if !ok {
		return 0
	}
	for _, c := range m.cols[p] {
		if c.user == u {
			return c.weight
		}
	}
	return 0
}

func sortedIDs(set map[uint64]struct{}) []uint64 {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
