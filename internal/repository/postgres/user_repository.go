package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var user domain.User
	err := r.DB.WithContext(ctx).First(&user, "external_id = ?", externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// GetOrCreate returns the user for externalID, creating an anonymous row on
// first sight. Concurrent first events for the same id race safely via the
// unique index and do-nothing conflict handling.
func (r *UserRepository) GetOrCreate(ctx context.Context, externalID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	user := domain.User{
		ExternalID:  externalID,
		IsAnonymous: true,
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// conflict path: fetch the existing row
	if user.ID == 0 {
		return r.FindByExternalID(ctx, externalID)
	}

	return &user, nil
}
