package domain

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrUnknownEventType marks an event whose type is outside the closed
	// enum. Ingestion rejects it; pipelines skip and count it.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrInvalidTimeWindow marks a window other than 7d/30d.
	ErrInvalidTimeWindow = errors.New("invalid time window")

	// ErrRecommendationUnavailable is returned to the boundary when the
	// authoritative stores are unreachable and no tier can be served. It is
	// distinct from an empty result, which means "no data yet".
	ErrRecommendationUnavailable = errors.New("recommendation unavailable")
)
