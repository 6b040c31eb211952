package main

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/appointly/appointment-scheduler/internal/config"
	dbpkg "github.com/appointly/appointment-scheduler/internal/db"
	"github.com/appointly/appointment-scheduler/internal/logging"
	"github.com/appointly/appointment-scheduler/internal/reminders"
	"github.com/appointly/appointment-scheduler/internal/routes"
)

func main() {

	_ = godotenv.Load()
	logging.Init()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, dispatch locking degraded")
	}

	// ======================================================
	// REMINDER DISPATCHER
	// ======================================================
	dispatcher := reminders.NewDispatcher(db, rdb, map[string]reminders.Notifier{
		"email": reminders.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom),
		"sms":   reminders.NewWebhookSMSNotifier(cfg.SMSWebhookURL, cfg.SMSWebhookToken),
	}, cfg.DispatchInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg)

	log.Info().Str("addr", cfg.Addr()).Msg("server listening")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
