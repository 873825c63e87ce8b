package domain

import (
	"time"
)

// Strategy identifies which tier of the fallback policy produced a result.
type Strategy string

const (
	StrategyPersonalized      Strategy = "personalized"
	StrategyColdStartCategory Strategy = "cold_start_category"
	StrategyTrending          Strategy = "trending"
)

// ScoredProduct is a product together with the score that ranked it.
type ScoredProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
}

// RecommendationResult is ephemeral: cached with a TTL, never persisted.
type RecommendationResult struct {
	UserID          string          `json:"user_id"`
	Recommendations []ScoredProduct `json:"recommendations"`
	Strategy        Strategy        `json:"strategy"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
