package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffSchedule mirrors BusinessHours per staff member: one working window
// per weekday, same "HH:MM" shape.
type StaffSchedule struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StaffID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_staff_day;not null" json:"staff_id"`

	DayOfWeek int `gorm:"uniqueIndex:idx_staff_day" json:"day_of_week"`

	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`
	Working   bool   `gorm:"default:true" json:"working"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
