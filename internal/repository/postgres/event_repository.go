package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		DB: db,
	}
}

func (r *EventRepository) Append(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

func (r *EventRepository) GetEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Event{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Since != nil {
		q = q.Where("timestamp >= ?", *filter.Since)
	}
	if filter.Until != nil {
		q = q.Where("timestamp <= ?", *filter.Until)
	}

	var events []domain.Event
	if err := q.Order("timestamp asc").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	return events, nil
}

// GetActiveProductEvents returns events since the cutoff whose product is
// still active. This is the pipeline input query: inactive products never
// enter the derived tables.
func (r *EventRepository) GetActiveProductEvents(ctx context.Context, since time.Time) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.Event
	err := r.DB.WithContext(ctx).
		Joins("JOIN products ON products.id = events.product_id").
		Where("events.timestamp >= ?", since).
		Where("products.is_active = ?", true).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query pipeline events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) GetRecentEvents(ctx context.Context, userID uint64, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.Event
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).
		Model(&domain.Event{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return count, nil
}
