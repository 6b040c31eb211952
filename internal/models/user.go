package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a login account for a business (owner or manager). The JWT issued
// at login carries the business id, which scopes every authenticated query.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`
	Business   Business  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"business,omitempty"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;default:'owner'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
