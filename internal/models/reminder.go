package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReminderTypeEmail = "email"
	ReminderTypeSMS   = "sms"
)

const (
	ReminderStatusPending = "pending"
	ReminderStatusSent    = "sent"
	ReminderStatusFailed  = "failed"
)

// AppointmentReminder is one scheduled notification for an appointment.
// The dispatch worker polls for pending rows with scheduled_time <= now.
type AppointmentReminder struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`

	AppointmentID uuid.UUID   `gorm:"type:uuid;index;not null" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ReminderType  string     `gorm:"size:10;not null" json:"reminder_type"`
	ScheduledTime time.Time  `gorm:"index" json:"scheduled_time"`
	Status        string     `gorm:"size:10;default:'pending';index" json:"status"`
	SentAt        *time.Time `json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
