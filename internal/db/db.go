package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/config"
	"github.com/appointly/appointment-scheduler/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Business{},
		&models.User{},
		&models.BusinessHours{},
		&models.Service{},
		&models.Staff{},
		&models.StaffSchedule{},
		&models.Client{},
		&models.Appointment{},
		&models.AppointmentReminder{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	// Storage-level backstop for the availability check: two slot-blocking
	// appointments for the same staff member can never commit overlapping
	// ranges, whatever the application layer observed.
	db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`)
	db.Exec(`
        DO $$ BEGIN
            ALTER TABLE appointments
            ADD CONSTRAINT appointments_no_staff_overlap
            EXCLUDE USING gist (
                staff_id WITH =,
                tstzrange(start_time, end_time) WITH &&
            )
            WHERE (staff_id IS NOT NULL AND status IN ('scheduled', 'confirmed', 'completed'));
        EXCEPTION
            WHEN duplicate_object THEN NULL;
            WHEN duplicate_table THEN NULL;
        END $$
    `)

	return db
}
