package domain

import (
	"time"

	"gorm.io/datatypes"
)

// EventType is the closed set of interaction types the system accepts.
// Anything else is rejected at ingestion as a data fault.
type EventType string

const (
	EventView      EventType = "view"
	EventAddToCart EventType = "add_to_cart"
	EventPurchase  EventType = "purchase"
)

// EventWeights maps event types to their interaction strength. The same
// weights drive both the trending scorer and the co-occurrence matrix.
var EventWeights = map[EventType]float64{
	EventView:      1.0,
	EventAddToCart: 3.0,
	EventPurchase:  5.0,
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	_, ok := EventWeights[t]
	return ok
}

// Weight returns the interaction strength for t and whether t is known.
func (t EventType) Weight() (float64, bool) {
	w, ok := EventWeights[t]
	return w, ok
}

// CREATE TABLE public.events (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id     BIGINT NOT NULL REFERENCES users(id),
//     product_id  BIGINT NOT NULL REFERENCES products(id),
//     event_type  TEXT NOT NULL,
//     timestamp   TIMESTAMPTZ NOT NULL,
//     session_id  TEXT,
//     metadata    JSONB
// );

type Event struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64            `gorm:"column:user_id;not null;index" json:"user_id"`
	ProductID uint64            `gorm:"column:product_id;not null;index" json:"product_id"`
	EventType EventType         `gorm:"column:event_type;type:text;not null" json:"event_type"`
	Timestamp time.Time         `gorm:"column:timestamp;not null;index" json:"timestamp"`
	SessionID string            `gorm:"column:session_id;type:text" json:"session_id,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

// EventFilter narrows event queries. Nil fields are ignored.
type EventFilter struct {
	UserID *uint64
	Since  *time.Time
	Until  *time.Time
}
