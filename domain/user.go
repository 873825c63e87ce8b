package domain

import (
	"time"
)

// User rows are created implicitly the first time an external id shows up in
// an event. There is no registration flow; everyone starts anonymous.
type User struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID  string    `gorm:"column:external_id;type:text;uniqueIndex;not null" json:"external_id"`
	IsAnonymous bool      `gorm:"column:is_anonymous;default:true" json:"is_anonymous"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
