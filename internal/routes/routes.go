package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/audit"
	"github.com/appointly/appointment-scheduler/internal/config"
	"github.com/appointly/appointment-scheduler/internal/domain/reminder"
	"github.com/appointly/appointment-scheduler/internal/handlers"
	infraRepo "github.com/appointly/appointment-scheduler/internal/infra/repository"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	ucAppointment "github.com/appointly/appointment-scheduler/internal/usecase/appointment"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	offsets := reminder.DefaultOffsets(cfg.ReminderLeads)

	// ======================================================
	// USE CASES — BOOKING
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		auditDispatcher,
		offsets,
	)

	updateStatusUC := ucAppointment.NewUpdateAppointmentStatus(
		appointmentRepo,
		auditDispatcher,
	)

	rescheduleUC := ucAppointment.NewRescheduleAppointment(
		appointmentRepo,
		auditDispatcher,
		offsets,
	)

	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	businessHandler := handlers.NewBusinessHandler(db)
	businessHoursHandler := handlers.NewBusinessHoursHandler(db)

	serviceHandler := handlers.NewServiceHandler(db, auditDispatcher)
	staffHandler := handlers.NewStaffHandler(db, auditDispatcher)
	clientHandler := handlers.NewClientHandler(db, auditDispatcher)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		appointmentRepo,
		createAppointmentUC,
		updateStatusUC,
		rescheduleUC,
	)
	availabilityHandler := handlers.NewAvailabilityHandler(db, availabilityUC)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API (tenant-scoped)
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/business", businessHandler.Get)
			secured.PATCH("/business", businessHandler.Update)

			secured.GET("/business/hours", businessHoursHandler.Get)
			secured.PUT("/business/hours", businessHoursHandler.Update)

			secured.POST("/services", serviceHandler.Create)
			secured.GET("/services", serviceHandler.List)
			secured.GET("/services/:id", serviceHandler.Get)
			secured.PATCH("/services/:id", serviceHandler.Update)
			secured.DELETE("/services/:id", serviceHandler.Delete)

			secured.POST("/staff", staffHandler.Create)
			secured.GET("/staff", staffHandler.List)
			secured.GET("/staff/:id", staffHandler.Get)
			secured.PATCH("/staff/:id", staffHandler.Update)
			secured.DELETE("/staff/:id", staffHandler.Delete)
			secured.GET("/staff/:id/schedule", staffHandler.GetSchedule)
			secured.PUT("/staff/:id/schedule", staffHandler.UpdateSchedule)
			secured.PUT("/staff/:id/services", staffHandler.UpdateServices)

			secured.POST("/clients", clientHandler.Create)
			secured.GET("/clients", clientHandler.List)
			secured.GET("/clients/:id", clientHandler.Get)
			secured.PATCH("/clients/:id", clientHandler.Update)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.List)
			secured.GET("/appointments/:id", appointmentHandler.Get)
			secured.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
			secured.PATCH("/appointments/:id/time", appointmentHandler.Reschedule)
			secured.GET("/appointments/:id/reminders", appointmentHandler.Reminders)

			secured.GET("/availability", availabilityHandler.Get)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
