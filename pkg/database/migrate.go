package database

import (
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrate applies all schema migrations in order.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "001_catalog",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.Category{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&domain.Product{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("products", "categories")
			},
		},
		{
			ID: "002_users_events",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.User{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&domain.Event{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("events", "users")
			},
		},
		{
			ID: "003_derived_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.TrendingScore{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&domain.ItemSimilarity{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("item_similarity", "trending_scores")
			},
		},
		{
			// Composite index for the per-source top-K similarity lookup.
			ID: "004_similarity_lookup_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(
					`CREATE INDEX IF NOT EXISTS idx_item_similarity_lookup
					 ON item_similarity (product_id, similarity_score DESC)`,
				).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_item_similarity_lookup").Error
			},
		},
	})

	return m.Migrate()
}
