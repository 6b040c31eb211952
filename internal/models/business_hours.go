package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessHours holds one open/close window per weekday (0 = Sunday).
// At most one row per (business, day_of_week).
type BusinessHours struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_business_day;not null" json:"business_id"`

	DayOfWeek int `gorm:"uniqueIndex:idx_business_day" json:"day_of_week"`

	OpenTime  string `gorm:"size:5" json:"open_time"`
	CloseTime string `gorm:"size:5" json:"close_time"`
	Closed    bool   `gorm:"default:false" json:"closed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
