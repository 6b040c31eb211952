package models

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	BusinessID uuid.UUID `gorm:"type:uuid;index;not null" json:"business_id"`
	Business   Business  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ClientID uuid.UUID `gorm:"type:uuid;not null" json:"client_id"`
	Client   Client    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client,omitempty"`

	ServiceID uuid.UUID `gorm:"type:uuid;not null" json:"service_id"`
	Service   Service   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service,omitempty"`

	// Optional assignment; deleting the staff member keeps the appointment.
	StaffID *uuid.UUID `gorm:"type:uuid;index" json:"staff_id"`
	Staff   *Staff     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"staff,omitempty"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	Notes       string     `gorm:"size:500" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
