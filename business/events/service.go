package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type EventRepository interface {
	Append(ctx context.Context, event *domain.Event) error
	GetRecentEvents(ctx context.Context, userID uint64, limit int) ([]domain.Event, error)
}

type UserRepository interface {
	GetOrCreate(ctx context.Context, externalID string) (*domain.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.User, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
}

type Cache interface {
	InvalidateUserRecommendations(ctx context.Context, userExternalID string) int64
}

// ---- Usecase / Service ----

type Service struct {
	eventRepo   EventRepository
	userRepo    UserRepository
	productRepo ProductRepository
	cache       Cache
}

func NewService(
	eventRepo EventRepository,
	userRepo UserRepository,
	productRepo ProductRepository,
	cache Cache,
) *Service {
	return &Service{
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		cache:       cache,
	}
}

type IngestInput struct {
	UserExternalID string
	ProductID      uint64
	EventType      domain.EventType
	Timestamp      *time.Time
	SessionID      string
	Metadata       map[string]any
}

// Ingest validates and appends one interaction event. The user row is
// created implicitly on first sight; the user's cached recommendations are
// invalidated before Ingest returns, so a read issued after the write call
// completes never sees pre-event results.
func (s *Service) Ingest(ctx context.Context, input IngestInput) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if !input.EventType.Valid() {
		metrics.MalformedEvents.Inc()
		return nil, domain.ErrUnknownEventType
	}

	// reject events for products we do not know
	if _, err := s.productRepo.FindByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetOrCreate(ctx, input.UserExternalID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	timestamp := time.Now().UTC()
	if input.Timestamp != nil && !input.Timestamp.IsZero() {
		timestamp = input.Timestamp.UTC()
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	event := &domain.Event{
		UserID:    user.ID,
		ProductID: input.ProductID,
		EventType: input.EventType,
		Timestamp: timestamp,
		SessionID: sessionID,
		Metadata:  datatypes.JSONMap(input.Metadata),
	}

	if err := s.eventRepo.Append(ctx, event); err != nil {
		return nil, err
	}

	// synchronous with ingestion, not deferred
	invalidated := s.cache.InvalidateUserRecommendations(ctx, input.UserExternalID)

	metrics.EventsIngested.WithLabelValues(string(input.EventType)).Inc()
	logger.Debug("event ingested",
		"user", input.UserExternalID,
		"product_id", input.ProductID,
		"event_type", input.EventType,
		"cache_invalidated", invalidated,
	)

	return event, nil
}

// RecentEvents returns a user's latest interactions, newest first. An unseen
// user gets an empty history, not an error, and a read never creates a row.
func (s *Service) RecentEvents(ctx context.Context, userExternalID string, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}

	user, err := s.userRepo.FindByExternalID(ctx, userExternalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return []domain.Event{}, nil
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return s.eventRepo.GetRecentEvents(ctx, user.ID, limit)
}
