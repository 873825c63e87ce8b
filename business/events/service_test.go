package events

import (
	"context"
	"testing"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
)

type fakeEventRepo struct {
	appended []domain.Event
}

func (f *fakeEventRepo) Append(_ context.Context, event *domain.Event) error {
	event.ID = uint64(len(f.appended) + 1)
	f.appended = append(f.appended, *event)
	return nil
}

func (f *fakeEventRepo) GetRecentEvents(_ context.Context, userID uint64, limit int) ([]domain.Event, error) {
	out := make([]domain.Event, 0, limit)
	for i := len(f.appended) - 1; i >= 0 && len(out) < limit; i-- {
		if f.appended[i].UserID == userID {
			out = append(out, f.appended[i])
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	nextID uint64
	users  map[string]*domain.User
}

func (f *fakeUserRepo) GetOrCreate(_ context.Context, externalID string) (*domain.User, error) {
	if u, ok := f.users[externalID]; ok {
		return u, nil
	}
	f.nextID++
	u := &domain.User{ID: f.nextID, ExternalID: externalID}
	if f.users == nil {
		f.users = make(map[string]*domain.User)
	}
	f.users[externalID] = u
	return u, nil
}

func (f *fakeUserRepo) FindByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	if u, ok := f.users[externalID]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type fakeProductRepo struct {
	known map[uint64]bool
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	if !f.known[id] {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return domain.Product{ID: id, IsActive: true}, nil
}

type fakeCache struct {
	invalidatedUsers []string
}

func (f *fakeCache) InvalidateUserRecommendations(_ context.Context, userExternalID string) int64 {
	f.invalidatedUsers = append(f.invalidatedUsers, userExternalID)
	return 1
}

func newTestService() (*Service, *fakeEventRepo, *fakeCache) {
	eventRepo := &fakeEventRepo{}
	cache := &fakeCache{}
	svc := NewService(
		eventRepo,
		&fakeUserRepo{},
		&fakeProductRepo{known: map[uint64]bool{7: true}},
		cache,
	)
	return svc, eventRepo, cache
}

func TestIngest_RejectsUnknownEventType(t *testing.T) {
	svc, eventRepo, cache := newTestService()

	_, err := svc.Ingest(context.Background(), IngestInput{
		UserExternalID: "u1",
		ProductID:      7,
		EventType:      domain.EventType("wishlist"),
	})
	if err != domain.ErrUnknownEventType {
		t.Fatalf("err = %v, want ErrUnknownEventType", err)
	}
	if len(eventRepo.appended) != 0 {
		t.Error("malformed event must not be persisted")
	}
	if len(cache.invalidatedUsers) != 0 {
		t.Error("cache must not be touched on rejection")
	}
}

func TestIngest_RejectsUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Ingest(context.Background(), IngestInput{
		UserExternalID: "u1",
		ProductID:      999,
		EventType:      domain.EventView,
	})
	if err != domain.ErrProductNotFound {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestIngest_DefaultsTimestampAndSession(t *testing.T) {
	svc, eventRepo, _ := newTestService()

	before := time.Now().UTC()
	event, err := svc.Ingest(context.Background(), IngestInput{
		UserExternalID: "u1",
		ProductID:      7,
		EventType:      domain.EventPurchase,
	})
	if err != nil {
		t.Fatal(err)
	}

	if event.Timestamp.Before(before) || event.Timestamp.After(time.Now().UTC()) {
		t.Errorf("timestamp %v not defaulted to now", event.Timestamp)
	}
	if event.SessionID == "" {
		t.Error("session id should be generated when absent")
	}
	if len(eventRepo.appended) != 1 {
		t.Fatalf("appended = %d events, want 1", len(eventRepo.appended))
	}
}

func TestIngest_HonorsProvidedTimestampAndSession(t *testing.T) {
	svc, _, _ := newTestService()

	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	event, err := svc.Ingest(context.Background(), IngestInput{
		UserExternalID: "u1",
		ProductID:      7,
		EventType:      domain.EventView,
		Timestamp:      &ts,
		SessionID:      "sess-42",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !event.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", event.Timestamp, ts)
	}
	if event.SessionID != "sess-42" {
		t.Errorf("session id = %q, want sess-42", event.SessionID)
	}
}

func TestIngest_InvalidatesUserCacheSynchronously(t *testing.T) {
	svc, _, cache := newTestService()

	_, err := svc.Ingest(context.Background(), IngestInput{
		UserExternalID: "u9",
		ProductID:      7,
		EventType:      domain.EventAddToCart,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(cache.invalidatedUsers) != 1 || cache.invalidatedUsers[0] != "u9" {
		t.Errorf("invalidated users = %v, want [u9]", cache.invalidatedUsers)
	}
}

func TestRecentEvents_ResolvesExternalID(t *testing.T) {
	svc, _, _ := newTestService()

	for i := 0; i < 3; i++ {
		if _, err := svc.Ingest(context.Background(), IngestInput{
			UserExternalID: "u1",
			ProductID:      7,
			EventType:      domain.EventView,
		}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := svc.RecentEvents(context.Background(), "u1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Errorf("len(recent) = %d, want 2 (limit applied)", len(recent))
	}
}

func TestRecentEvents_UnseenUserCreatesNoRow(t *testing.T) {
	userRepo := &fakeUserRepo{}
	svc := NewService(
		&fakeEventRepo{},
		userRepo,
		&fakeProductRepo{known: map[uint64]bool{7: true}},
		&fakeCache{},
	)

	none, err := svc.RecentEvents(context.Background(), "stranger", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("unseen user history = %v, want empty", none)
	}
	if len(userRepo.users) != 0 {
		t.Errorf("history read created user rows: %v", userRepo.users)
	}
}
