package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     external_id TEXT UNIQUE,
//     name        TEXT NOT NULL,
//     description TEXT,
//     price       NUMERIC,
//     image_url   TEXT,
//     category_id BIGINT REFERENCES categories(id),
//     is_active   BOOLEAN DEFAULT TRUE,
//     created_at  TIMESTAMPTZ DEFAULT NOW(),
//     updated_at  TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID  string    `gorm:"column:external_id;type:text;uniqueIndex" json:"external_id,omitempty"`
	Name        string    `gorm:"column:name;type:text;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Price       float64   `gorm:"column:price;type:numeric" json:"price"`
	ImageURL    string    `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	CategoryID  uint64    `gorm:"column:category_id;index" json:"category_id"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

type Category struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:text;uniqueIndex;not null" json:"name"`
	ParentID  *uint64   `gorm:"column:parent_id" json:"parent_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}
