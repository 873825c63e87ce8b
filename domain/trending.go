package domain

import (
	"time"
)

// TimeWindow is a trending aggregation span.
type TimeWindow string

const (
	Window7d  TimeWindow = "7d"
	Window30d TimeWindow = "30d"
)

// Valid reports whether w is a supported window.
func (w TimeWindow) Valid() bool {
	return w == Window7d || w == Window30d
}

// Days returns the lookback span of the window.
func (w TimeWindow) Days() int {
	if w == Window30d {
		return 30
	}
	return 7
}

// TrendingScore is a derived row, fully replaced per (time_window) on every
// scorer run. One row per (product_id, time_window).
type TrendingScore struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  uint64     `gorm:"column:product_id;not null;index" json:"product_id"`
	CategoryID uint64     `gorm:"column:category_id;index" json:"category_id"`
	TimeWindow TimeWindow `gorm:"column:time_window;type:text;not null;index" json:"time_window"`
	Score      float64    `gorm:"column:score;not null" json:"score"`
	EventCount int64      `gorm:"column:event_count;not null" json:"event_count"`
	ComputedAt time.Time  `gorm:"column:computed_at" json:"computed_at"`
}

func (TrendingScore) TableName() string {
	return "trending_scores"
}
