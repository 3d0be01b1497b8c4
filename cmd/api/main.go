package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dmborges/clinicagenda/cmd/mainconfig"
	"github.com/dmborges/clinicagenda/internal/accounts"
	"github.com/dmborges/clinicagenda/internal/api/router"
	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/avatars"
	"github.com/dmborges/clinicagenda/internal/clinics"
	appconfig "github.com/dmborges/clinicagenda/internal/config"
	"github.com/dmborges/clinicagenda/internal/observability/metrics"
	"github.com/dmborges/clinicagenda/internal/patients"
	"github.com/dmborges/clinicagenda/internal/realtime"
	"github.com/dmborges/clinicagenda/internal/reports"
	"github.com/dmborges/clinicagenda/internal/schedule"
	"github.com/dmborges/clinicagenda/internal/session"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinicagenda API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	redisOptions := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() { _ = redisClient.Close() }()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Repositories
	patientRepo := patients.NewRepository(pool)
	appointmentRepo := appointments.NewRepository(pool)
	clinicRepo := clinics.NewRepository(sqlDB)
	accountRepo := accounts.NewRepository(pool)
	revenueRepo := reports.NewRevenueRepository(pool)

	// Realtime push
	publisher := realtime.NewPublisher(redisClient)
	hub := realtime.NewHub(redisClient, logger)

	// Sessions, with the caches that keep a live session in step with the
	// write paths below
	sessionLoader := session.NewLoader(accountRepo, clinicRepo, patientRepo, appointmentRepo, cfg.SessionLoadTimeout, logger)
	sessionManager := session.NewManager(sessionLoader)
	appointmentCache := session.NewAppointmentCache(sessionManager)
	patientCache := session.NewPatientCache(sessionManager)

	// Services
	scheduleMetrics := metrics.NewScheduleMetrics(prometheus.DefaultRegisterer)
	accountService := accounts.NewService(accountRepo, publisher, cfg.FreeTierPatientLimit, logger)
	patientService := patients.NewService(patientRepo, accountService, patientCache, logger)
	appointmentService := appointments.NewService(appointmentRepo, appointmentCache, logger)
	reconciler := schedule.NewReconciler(appointmentRepo, patientRepo, appointmentCache, scheduleMetrics, logger)
	scheduleService := schedule.NewService(appointmentRepo, patientRepo, reconciler, scheduleMetrics, logger)

	avatarStore := avatars.NewStore(s3.NewFromConfig(awsCfg), cfg.AvatarBucket, cfg.AWSRegion, logger)
	if !avatarStore.Enabled() {
		logger.Warn("avatar storage disabled, AVATAR_BUCKET not set")
	}

	// Handlers
	routerCfg := &router.Config{
		Logger:              logger,
		ClinicsHandler:      clinics.NewHandler(clinicRepo, logger),
		PatientsHandler:     patients.NewHandler(patientService, logger),
		AppointmentsHandler: appointments.NewHandler(appointmentService, logger),
		ScheduleHandler:     schedule.NewHandler(scheduleService, logger),
		ReportsHandler:      reports.NewHandler(revenueRepo, logger),
		ProfileHandler:      accounts.NewHandler(accountService, logger),
		SessionHandler:      session.NewHandler(sessionManager, logger),
		AvatarsHandler:      avatars.NewHandler(avatarStore, patientRepo, logger),
		SnapshotHandler:     metrics.NewSnapshotHandler(prometheus.DefaultGatherer),
		RealtimeHub:         hub,
		MetricsHandler:      promhttp.Handler(),
		JWTSecret:           cfg.JWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

