package models

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`

	Name   string `gorm:"size:100;not null" json:"name"`
	Email  string `gorm:"size:100" json:"email"`
	Phone  string `gorm:"size:20" json:"phone"`
	Active bool   `gorm:"default:true" json:"active"`

	// Services this staff member can perform (plain join table).
	Services []Service `gorm:"many2many:staff_services;" json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
