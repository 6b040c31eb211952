package models

import (
	"time"

	"github.com/google/uuid"
)

type Business struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	Name     string `gorm:"size:100;not null" json:"name"`
	Address  string `gorm:"size:255" json:"address"`
	Phone    string `gorm:"size:20" json:"phone"`
	Email    string `gorm:"size:100" json:"email"`
	Website  string `gorm:"size:255" json:"website"`
	Timezone string `gorm:"size:64;default:'UTC'" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
