package domain

import (
	"time"
)

// ItemSimilarity is a directed similarity edge. Both directions of a pair are
// persisted so lookups by source product are a single indexed query. Edges
// for a product are fully replaced whenever its batch is reprocessed.
type ItemSimilarity struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID         uint64    `gorm:"column:product_id;not null;index" json:"product_id"`
	SimilarProductID  uint64    `gorm:"column:similar_product_id;not null" json:"similar_product_id"`
	SimilarityScore   float64   `gorm:"column:similarity_score;not null" json:"similarity_score"`
	CoOccurrenceCount int64     `gorm:"column:co_occurrence_count;not null" json:"co_occurrence_count"`
	ComputedAt        time.Time `gorm:"column:computed_at" json:"computed_at"`
}

func (ItemSimilarity) TableName() string {
	return "item_similarity"
}

// NeighborScore is an aggregated similarity candidate: the summed edge
// scores of a product across a set of source products.
type NeighborScore struct {
	ProductID uint64  `json:"product_id"`
	Score     float64 `json:"score"`
}
