package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/models"
	"github.com/appointly/appointment-scheduler/internal/timezone"
)

const lockKey = "reminders:dispatch"

// Dispatcher is the out-of-process delivery actor: it polls for pending
// reminders that are due and hands them to the channel's notifier. It
// shares nothing with the API layer beyond the persisted reminder rows;
// a Redis lock keeps multiple instances from double-sending a batch.
type Dispatcher struct {
	db        *gorm.DB
	rdb       *redis.Client
	notifiers map[string]Notifier
	interval  time.Duration
}

func NewDispatcher(
	db *gorm.DB,
	rdb *redis.Client,
	notifiers map[string]Notifier,
	interval time.Duration,
) *Dispatcher {
	return &Dispatcher{
		db:        db,
		rdb:       rdb,
		notifiers: notifiers,
		interval:  interval,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", d.interval).Msg("reminder dispatcher started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reminder dispatcher stopped")
			return
		case <-ticker.C:
			d.dispatchDue(ctx)
		}
	}
}

func (d *Dispatcher) dispatchDue(ctx context.Context) {
	if d.rdb != nil {
		// TTL outlives the poll interval so a slow batch keeps the lock
		ok, err := d.rdb.SetNX(ctx, lockKey, "1", 2*d.interval).Result()
		if err != nil {
			log.Warn().Err(err).Msg("reminder lock unavailable, dispatching anyway")
		} else if !ok {
			return
		}
	}

	var due []models.AppointmentReminder
	if err := d.db.WithContext(ctx).
		Where("status = ? AND scheduled_time <= ?", models.ReminderStatusPending, time.Now()).
		Order("scheduled_time ASC").
		Limit(100).
		Find(&due).Error; err != nil {
		log.Error().Err(err).Msg("failed to load due reminders")
		return
	}

	for _, rem := range due {
		d.deliver(ctx, rem)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, rem models.AppointmentReminder) {
	var ap models.Appointment
	if err := d.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Preload("Business").
		First(&ap, "id = ?", rem.AppointmentID).Error; err != nil {
		d.mark(ctx, rem, models.ReminderStatusFailed)
		log.Error().Err(err).Str("reminder_id", rem.ID.String()).Msg("appointment lookup failed")
		return
	}

	recipient := ap.Client.Email
	if rem.ReminderType == models.ReminderTypeSMS {
		recipient = ap.Client.Phone
	}
	if recipient == "" {
		d.mark(ctx, rem, models.ReminderStatusFailed)
		log.Warn().Str("reminder_id", rem.ID.String()).Msg("reminder has no recipient")
		return
	}

	notifier, ok := d.notifiers[rem.ReminderType]
	if !ok {
		d.mark(ctx, rem, models.ReminderStatusFailed)
		log.Error().Str("type", rem.ReminderType).Msg("no notifier for reminder type")
		return
	}

	loc := timezone.Location(ap.Business.Timezone)
	when := ap.StartTime.In(loc).Format("Mon, 02 Jan 2006 at 15:04")

	subject := fmt.Sprintf("Reminder: %s at %s", ap.Service.Name, ap.Business.Name)
	body := fmt.Sprintf(
		"Hi %s, this is a reminder of your %s appointment at %s on %s.",
		ap.Client.FirstName, ap.Service.Name, ap.Business.Name, when,
	)

	// Claim the row before sending: the conditional update loses against a
	// concurrent cancel or another dispatcher instance, and a lost claim
	// means this reminder is no longer ours to deliver.
	claim := d.db.WithContext(ctx).
		Model(&models.AppointmentReminder{}).
		Where("id = ? AND status = ?", rem.ID, models.ReminderStatusPending).
		Updates(map[string]any{
			"status":  models.ReminderStatusSent,
			"sent_at": time.Now(),
		})
	if claim.Error != nil {
		log.Error().Err(claim.Error).Str("reminder_id", rem.ID.String()).Msg("failed to claim reminder")
		return
	}
	if claim.RowsAffected == 0 {
		return
	}

	if err := notifier.Send(recipient, subject, body); err != nil {
		// roll our own claim back to failed
		if dbErr := d.db.WithContext(ctx).
			Model(&models.AppointmentReminder{}).
			Where("id = ?", rem.ID).
			Updates(map[string]any{
				"status":  models.ReminderStatusFailed,
				"sent_at": nil,
			}).Error; dbErr != nil {
			log.Error().Err(dbErr).Str("reminder_id", rem.ID.String()).Msg("failed to update reminder status")
		}
		log.Error().Err(err).
			Str("reminder_id", rem.ID.String()).
			Str("type", rem.ReminderType).
			Msg("reminder delivery failed")
		return
	}

	log.Info().
		Str("reminder_id", rem.ID.String()).
		Str("type", rem.ReminderType).
		Msg("reminder sent")
}

// mark flips a still-pending reminder; a row already claimed elsewhere is
// left alone.
func (d *Dispatcher) mark(ctx context.Context, rem models.AppointmentReminder, status string) {
	if err := d.db.WithContext(ctx).
		Model(&models.AppointmentReminder{}).
		Where("id = ? AND status = ?", rem.ID, models.ReminderStatusPending).
		Update("status", status).Error; err != nil {
		log.Error().Err(err).Str("reminder_id", rem.ID.String()).Msg("failed to update reminder status")
	}
}
